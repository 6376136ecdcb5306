package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MAITENOTAS"

// Config keys. Flags are bound to these names.
const (
	KeyDataFile    = "data_file"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyBusyTimeout = "busy_timeout"
	KeySalted      = "salted"
	KeyKDF         = "kdf"
	KeyEnvFile     = "env_file"
)

// Config holds runtime settings.
//
// Salted and KDF only matter when a new store is created; an existing store
// keeps the parameters recorded in it.
type Config struct {
	DataFile    string        `mapstructure:"data_file"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	Salted      bool          `mapstructure:"salted"`
	KDF         string        `mapstructure:"kdf"`
	EnvFile     string        `mapstructure:"env_file"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DataFile = common.DataFileName
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.BusyTimeout = 5 * time.Second
	c.Salted = false
	c.KDF = string(cryptox.KDFPBKDF2)
	c.EnvFile = ".env"
}

func setDefaults(v *viper.Viper) {
	var d Config
	d.LoadDefaults()
	v.SetDefault(KeyDataFile, d.DataFile)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyBusyTimeout, d.BusyTimeout)
	v.SetDefault(KeySalted, d.Salted)
	v.SetDefault(KeyKDF, d.KDF)
	v.SetDefault(KeyEnvFile, d.EnvFile)
}

// Load resolves the configuration held by v. A config file set with
// v.SetConfigFile must exist; otherwise the standard locations are searched
// and a missing file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := loadDotEnv(v.GetString(KeyEnvFile)); err != nil {
		return nil, err
	}

	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("maitenotas")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "maitenotas"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv exports the variables of path without overriding ones already
// set. A missing file is ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.DataFile == "" {
		return errors.New("config: data_file must not be empty")
	}
	if _, err := cryptox.ParseKDF(c.KDF); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.KDF == string(cryptox.KDFArgon2id) && !c.Salted {
		return errors.New("config: kdf argon2id requires salted")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("config: negative busy_timeout %s", c.BusyTimeout)
	}
	return nil
}

// KeyDerivation returns the validated KDF.
func (c *Config) KeyDerivation() cryptox.KDF {
	kdf, _ := cryptox.ParseKDF(c.KDF)
	return kdf
}

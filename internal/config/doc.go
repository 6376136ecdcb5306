// Package config loads the runtime settings of maitenotas.
//
// Values are layered, later sources winning:
//
//  1. defaults from LoadDefaults,
//  2. a config file (JSON, YAML or TOML) given with --config, or
//     maitenotas.{json,yaml,toml} found in the working directory or the
//     user config directory,
//  3. MAITENOTAS_* environment variables, optionally read from a .env file,
//  4. command-line flags bound to the viper instance by the caller.
package config

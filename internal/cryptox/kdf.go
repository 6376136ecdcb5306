package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/maitelab/maitenotas/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	keyLength        = 32
	saltLength       = 16

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// KDF names a password-based key derivation function.
type KDF string

const (
	KDFPBKDF2   KDF = "pbkdf2-sha256"
	KDFArgon2id KDF = "argon2id"
)

// ParseKDF validates a KDF name coming from configuration or store metadata.
func ParseKDF(s string) (KDF, error) {
	switch KDF(s) {
	case KDFPBKDF2, KDFArgon2id:
		return KDF(s), nil
	case "":
		return KDFPBKDF2, nil
	}
	return "", fmt.Errorf("unsupported kdf %q", s)
}

// Key is the symmetric key derived from the user password. It is only usable
// through EncryptField and DecryptField and is never persisted.
type Key struct {
	b []byte
}

// Equal reports whether both keys hold the same bytes, in constant time.
func (k Key) Equal(o Key) bool {
	return len(k.b) == len(o.b) && subtle.ConstantTimeCompare(k.b, o.b) == 1
}

// IsZero reports whether the key was never derived or has been wiped.
func (k Key) IsZero() bool {
	for _, c := range k.b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Wipe zeroes the key material in place.
func (k Key) Wipe() {
	common.WipeByteArray(k.b)
}

// DeriveKey turns a password into a key using PBKDF2-HMAC-SHA256 with the
// password bytes doubling as the salt. The result depends on the password
// only, which is what lets an existing store be reopened without any stored
// parameters. The self-derived salt gives no protection against
// precomputation; stores created in salted mode use KeyParams instead.
func DeriveKey(password string) Key {
	p := []byte(password)
	defer common.WipeByteArray(p)
	return Key{b: pbkdf2.Key(p, p, pbkdf2Iterations, keyLength, sha256.New)}
}

// KeyParams describes how a store derives its key from the password.
// A nil Salt selects the legacy self-salted derivation.
type KeyParams struct {
	KDF  KDF
	Salt []byte
}

// LegacyKeyParams returns the parameters matching DeriveKey.
func LegacyKeyParams() KeyParams {
	return KeyParams{KDF: KDFPBKDF2}
}

// NewKeyParams returns parameters with a fresh random salt for kdf.
func NewKeyParams(kdf KDF) KeyParams {
	return KeyParams{KDF: kdf, Salt: common.GenerateRandByteArray(saltLength)}
}

// Legacy reports whether p uses the password as its own salt.
func (p KeyParams) Legacy() bool {
	return p.Salt == nil
}

// Derive returns the key for password under p. Identical inputs always give
// identical keys.
func (p KeyParams) Derive(password string) Key {
	if p.Legacy() {
		return DeriveKey(password)
	}
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	switch p.KDF {
	case KDFArgon2id:
		return Key{b: argon2.IDKey(pw, p.Salt, argon2Time, argon2Memory, argon2Threads, keyLength)}
	default:
		return Key{b: pbkdf2.Key(pw, p.Salt, pbkdf2Iterations, keyLength, sha256.New)}
	}
}

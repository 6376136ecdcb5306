package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"unicode/utf8"
)

// formatV1 prefixes every field sealed with AES-256-GCM.
const formatV1 byte = 0x01

const nonceSize = 12

var (
	// ErrAuthentication is returned when a field was sealed under another key,
	// was altered, or is not a field at all.
	ErrAuthentication = errors.New("field authentication failed")

	// ErrDataCorruption is returned when a field authenticates but its
	// plaintext is not valid UTF-8 text.
	ErrDataCorruption = errors.New("field data corrupted")

	// ErrEmptyKey is returned for a key that was never derived or was wiped.
	ErrEmptyKey = errors.New("empty key")
)

func newGCM(key Key) (cipher.AEAD, error) {
	if len(key.b) != keyLength || key.IsZero() {
		return nil, ErrEmptyKey
	}
	block, err := aes.NewCipher(key.b)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptField seals plaintext with AES-256-GCM under key.
//
// A new random 12-byte nonce is generated for every call, so encrypting the
// same text twice gives different bytes. The result is laid out as
// version(1) | nonce(12) | ciphertext+tag.
func EncryptField(plaintext string, key Key) ([]byte, error) {
	return seal([]byte(plaintext), key)
}

func seal(plaintext []byte, key Key) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	out := make([]byte, 0, 1+nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, formatV1)
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptField opens a field produced by EncryptField.
//
// It returns ErrAuthentication when the key does not match or the bytes were
// tampered with, and ErrDataCorruption when the recovered bytes are not UTF-8.
func DecryptField(ciphertext []byte, key Key) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < 1+nonceSize+aesgcm.Overhead() || ciphertext[0] != formatV1 {
		return "", ErrAuthentication
	}

	nonce := ciphertext[1 : 1+nonceSize]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext[1+nonceSize:], nil)
	if err != nil {
		return "", ErrAuthentication
	}

	if !utf8.Valid(plaintext) {
		return "", ErrDataCorruption
	}
	return string(plaintext), nil
}

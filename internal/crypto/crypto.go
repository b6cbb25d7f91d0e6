// Package crypto seals secrets, such as the Notion integration token, so they can be
// kept in a config file. Sealed values are tagged with Prefix and carry their own salt.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 100000
	keySize    = 32 // AES-256

	// Prefix marks a sealed value
	Prefix = "enc:v1:"
)

var (
	// ErrNoPassphrase is returned when a sealed value is read without a secret key.
	ErrNoPassphrase = errors.New("no passphrase configured")
	// ErrDecrypt means the passphrase is wrong or the value was tampered with.
	ErrDecrypt = errors.New("decryption failed: wrong passphrase or corrupted value")
)

// Encryptor seals and opens values with a passphrase-derived AES-GCM key.
type Encryptor struct {
	passphrase []byte
}

// NewEncryptor creates an encryptor for the passphrase. An empty passphrase returns nil.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}
	return &Encryptor{passphrase: []byte(passphrase)}
}

// IsEncrypted reports whether v was produced by Encrypt
func IsEncrypted(v string) bool {
	return strings.HasPrefix(v, Prefix)
}

func (e *Encryptor) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext as Prefix + base64(salt | nonce | ciphertext).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil {
		return "", ErrNoPassphrase
	}
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	gcm, err := e.gcm(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	out := append(salt, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt. Values without Prefix are returned
// unchanged, so plain tokens keep working.
func (e *Encryptor) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	if e == nil {
		return "", ErrNoPassphrase
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("decoding sealed value: %w", err)
	}
	if len(data) < saltSize {
		return "", errors.New("ciphertext too short")
	}

	salt, rest := data[:saltSize], data[saltSize:]
	gcm, err := e.gcm(salt)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, cipherData := rest[:nonceSize], rest[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

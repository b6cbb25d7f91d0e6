package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestNewEncryptor(t *testing.T) {
	if enc := NewEncryptor(""); enc != nil {
		t.Errorf("NewEncryptor(\"\") = %v, want nil", enc)
	}
	if enc := NewEncryptor("passphrase"); enc == nil {
		t.Error("NewEncryptor() = nil, want non-nil")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	tests := []struct {
		name      string
		plaintext string
	}{
		{"notion token", "secret_abcDEF1234567890"},
		{"unicode", "chiave segreta è ñ 日本"},
		{"special characters", "!@#$%^&*()_+-=[]{}|;:',.<>?"},
		{"long text", strings.Repeat("a", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := enc.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if !IsEncrypted(sealed) {
				t.Errorf("Encrypt() = %q, missing %q prefix", sealed, Prefix)
			}
			if strings.Contains(sealed, tt.plaintext) {
				t.Error("sealed value contains the plaintext")
			}

			opened, err := enc.Decrypt(sealed)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if opened != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestEncrypt_RandomSalt(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	a, err := enc.Encrypt("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := enc.Encrypt("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same value should differ")
	}

	// a fresh encryptor with the same passphrase must open both
	other := NewEncryptor("test-passphrase")
	for _, v := range []string{a, b} {
		got, err := other.Decrypt(v)
		if err != nil || got != "same" {
			t.Errorf("Decrypt() = %q, %v", got, err)
		}
	}
}

func TestEncrypt_Empty(t *testing.T) {
	got, err := NewEncryptor("p").Encrypt("")
	if err != nil || got != "" {
		t.Errorf("Encrypt(\"\") = %q, %v, want empty", got, err)
	}
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	sealed, err := NewEncryptor("right").Encrypt("secret")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewEncryptor("wrong").Decrypt(sealed)
	if !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() error = %v, want ErrDecrypt", err)
	}
}

func TestDecrypt_Plaintext(t *testing.T) {
	var enc *Encryptor
	got, err := enc.Decrypt("secret_plain")
	if err != nil || got != "secret_plain" {
		t.Errorf("Decrypt(plain) = %q, %v", got, err)
	}
}

func TestDecrypt_NoPassphrase(t *testing.T) {
	sealed, err := NewEncryptor("p").Encrypt("secret")
	if err != nil {
		t.Fatal(err)
	}

	var enc *Encryptor
	if _, err := enc.Decrypt(sealed); !errors.Is(err, ErrNoPassphrase) {
		t.Errorf("Decrypt() error = %v, want ErrNoPassphrase", err)
	}
	if _, err := enc.Encrypt("x"); !errors.Is(err, ErrNoPassphrase) {
		t.Errorf("Encrypt() error = %v, want ErrNoPassphrase", err)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	enc := NewEncryptor("p")

	tests := []struct {
		name  string
		value string
	}{
		{"bad base64", Prefix + "!!!"},
		{"short", Prefix + base64.StdEncoding.EncodeToString([]byte("short"))},
		{"salt only", Prefix + base64.StdEncoding.EncodeToString(make([]byte, saltSize+4))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decrypt(tt.value); err == nil {
				t.Error("Decrypt() expected error")
			}
		})
	}
}

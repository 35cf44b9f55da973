package stego

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation and sealing parameters. These are wire-format
// constants: changing them breaks compatibility with existing
// containers.
const (
	kdfIterations = 100000
	keySize       = 32
	saltSize      = 16
	nonceSize     = 12
)

// SecretBox derives an AES-256 key from a password and seals payloads
// with AES-GCM. The sealed layout is salt(16) || nonce(12) ||
// ciphertext; salt and nonce are freshly random per call, so a nonce
// is never reused for a given derived key.
type SecretBox struct {
	password []byte
}

// NewSecretBox returns a SecretBox for the given password.
func NewSecretBox(password string) (*SecretBox, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}
	return &SecretBox{password: []byte(password)}, nil
}

// deriveKey runs PBKDF2-HMAC-SHA256 over the password with the given
// salt.
func (b *SecretBox) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(b.password, salt, kdfIterations, keySize, sha256.New)
}

// Seal encrypts plaintext and returns salt || nonce || ciphertext.
func (b *SecretBox) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	gcm, err := b.aead(salt)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	return gcm.Seal(sealed, nonce, plaintext, nil), nil
}

// Open decrypts salt || nonce || ciphertext. A tag mismatch (wrong
// password or corrupted data) returns ErrAuthenticationFailed and no
// plaintext.
func (b *SecretBox) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize {
		return nil, ErrAuthenticationFailed
	}
	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+nonceSize]
	ciphertext := sealed[saltSize+nonceSize:]

	gcm, err := b.aead(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// aead builds the AES-GCM cipher for the key derived with salt.
func (b *SecretBox) aead(salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"
)

// Cipher seals TOTP seeds for storage with AES-256-GCM. The sealing key is
// derived per account from a single service key, so a ciphertext copied onto
// another account's row fails authentication instead of decrypting.
type Cipher struct {
	key []byte
}

// NewCipher returns a Cipher over the given 32-byte service key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	c := &Cipher{key: make([]byte, KeySize)}
	copy(c.key, key)
	return c, nil
}

// NewCipherFromBase64 returns a Cipher over a base64-encoded service key,
// the form the key takes in configuration.
func NewCipherFromBase64(encoded string) (*Cipher, error) {
	key, err := KeyFromBase64(encoded)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)
	return NewCipher(key)
}

// EncryptSeed seals plaintext under the account-scoped key and returns
// base64(nonce || ciphertext).
func (c *Cipher) EncryptSeed(accountID uuid.UUID, plaintext string) (string, error) {
	key, err := c.deriveKey(accountID)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	sealed := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptSeed reverses EncryptSeed for the same account. Tampered,
// truncated or cross-account ciphertexts fail with ErrDecryptionFailed or
// ErrInvalidCiphertext.
func (c *Cipher) DecryptSeed(accountID uuid.UUID, ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	key, err := c.deriveKey(accountID)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(sealed) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

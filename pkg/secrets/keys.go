package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the service key length: 256 bits for AES-256.
	KeySize = 32

	// saltInfo provides HKDF domain separation for seed sealing keys.
	saltInfo = "immigration-ai/twofactor-seed:v1"
)

// deriveKey derives the account-scoped sealing key from the service key via
// HKDF-SHA256, using the account identifier as salt. The caller must clear
// the returned key with clearBytes once done.
func (c *Cipher) deriveKey(accountID uuid.UUID) ([]byte, error) {
	reader := hkdf.New(sha256.New, c.key, accountID[:], []byte(saltInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// clearBytes zeros a byte slice holding key material.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a new random 32-byte service key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateKey, err)
	}
	return key, nil
}

// GenerateKeyString creates a new service key base64-encoded for storage in
// configuration.
func GenerateKeyString() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	defer clearBytes(key)
	return base64.StdEncoding.EncodeToString(key), nil
}

// KeyFromBase64 decodes a base64-encoded service key and checks its length.
func KeyFromBase64(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrFailedToLoadKey
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadKey, err)
	}
	if len(key) != KeySize {
		return nil, errors.Join(ErrFailedToLoadKey, ErrInvalidKeyLength)
	}
	return key, nil
}

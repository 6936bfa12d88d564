package secrets

import "errors"

var (
	ErrInvalidKeyLength    = errors.New("invalid service key: must be 32 bytes")
	ErrEncryptionFailed    = errors.New("encryption failed")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrInvalidCiphertext   = errors.New("invalid ciphertext format")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrFailedToGenerateKey = errors.New("failed to generate service key")
	ErrFailedToLoadKey     = errors.New("failed to load service key")
)

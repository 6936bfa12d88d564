// Package secrets seals TOTP seeds at rest.
//
// A single 32-byte service key (TWOFACTOR_ENCRYPTION_KEY, base64) is expanded
// per account with HKDF-SHA256 into the AES-256-GCM sealing key, binding each
// ciphertext to its owning account: a sealed seed moved to a different
// account's row fails authentication rather than decrypting.
//
// Ciphertexts are base64(nonce || sealed) strings, matching the storage
// column type. Generate a service key with GenerateKeyString or the keygen
// utility under cmd/.
package secrets

// Package backupcode generates, hashes and verifies the single-use recovery
// codes offered alongside TOTP, for use when the authenticator device is
// unavailable.
//
// Codes carry 128 bits of entropy and are stored only as SHA-256 digests of
// their normalized form. Verification compares the presented code against
// every stored digest with a constant-time scan that never exits early, so
// timing reveals nothing about which stored entry matched. Single-use
// semantics (a consumed code must not verify twice) are the caller's
// responsibility, enforced at the storage layer.
package backupcode

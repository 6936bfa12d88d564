package twofactor

import "errors"

var (
	// ErrAlreadyEnabled is returned by Setup when the account already has an
	// active credential; an enabled factor must be disabled before re-enrolling.
	ErrAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// ErrNotSetUp is returned by ConfirmAndEnable when no pending credential
	// exists for the account.
	ErrNotSetUp = errors.New("two-factor authentication is not set up")

	// ErrAlreadyVerified is returned by ConfirmAndEnable when the credential
	// was already confirmed.
	ErrAlreadyVerified = errors.New("two-factor credential is already verified")

	// ErrTooManyAttempts is returned when the account exceeded the failed
	// attempt budget inside the throttle window.
	ErrTooManyAttempts = errors.New("too many failed verification attempts")

	// ErrInvalidToken is returned by RegenerateBackupCodes when the presented
	// token did not verify.
	ErrInvalidToken = errors.New("invalid verification token")

	// ErrCredentialNotFound is returned by Storage implementations when the
	// account has no credential.
	ErrCredentialNotFound = errors.New("two-factor credential not found")

	// ErrBackupCodeAlreadyUsed is returned by Storage implementations when a
	// backup code was already consumed for the credential.
	ErrBackupCodeAlreadyUsed = errors.New("backup code has already been used")

	// ErrEncryptionKeyNotSet is returned by LoadConfig when no encryption key
	// is configured.
	ErrEncryptionKeyNotSet = errors.New("two-factor encryption key is not set")
)

package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttemptStore records verification attempts and answers the single aggregate
// the throttle needs. It is split out from Storage so the attempt trail can
// live in a different backend (e.g. Redis) than the credentials.
type AttemptStore interface {
	// RecordAttempt appends one attempt to the trail.
	RecordAttempt(ctx context.Context, attempt Attempt) error

	// CountRecentFailures returns the number of failed attempts for the
	// account recorded at or after since.
	CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}

// Storage persists credentials and backup code usage. Implementations must
// return ErrCredentialNotFound when the account has no credential, and
// ErrBackupCodeAlreadyUsed from ConsumeBackupCode when the code was consumed
// before.
type Storage interface {
	AttemptStore

	// GetCredential returns the account's credential in any state.
	GetCredential(ctx context.Context, accountID uuid.UUID) (Credential, error)

	// SavePendingCredential stores a fresh unverified credential, replacing
	// any previous credential for the account along with its recorded backup
	// code usage. The replacement must be atomic: concurrent readers see
	// either the old credential or the new one, never a mix.
	SavePendingCredential(ctx context.Context, cred Credential) error

	// ActivateCredential marks the account's credential verified and enabled
	// and stamps at as its last used time.
	ActivateCredential(ctx context.Context, accountID uuid.UUID, at time.Time) error

	// UpdateLastUsedAt records a successful verification time on the credential.
	UpdateLastUsedAt(ctx context.Context, accountID uuid.UUID, at time.Time) error

	// DeleteCredential removes the account's credential and all associated
	// backup code usage. Deleting an absent credential is not an error.
	DeleteCredential(ctx context.Context, accountID uuid.UUID) error

	// ReplaceBackupCodes swaps the credential's backup code digests for a new
	// set and clears recorded usage, atomically.
	ReplaceBackupCodes(ctx context.Context, accountID uuid.UUID, codeHashes []string) error

	// ConsumeBackupCode marks the digest as used for the account's credential.
	// The operation is first-writer-wins: exactly one of any set of concurrent
	// calls with the same digest succeeds, the rest get
	// ErrBackupCodeAlreadyUsed.
	ConsumeBackupCode(ctx context.Context, accountID uuid.UUID, codeHash string, at time.Time) error

	// CountConsumedBackupCodes returns how many of the credential's current
	// backup codes have been used.
	CountConsumedBackupCodes(ctx context.Context, accountID uuid.UUID) (int, error)
}

// SecretCipher seals TOTP seeds for storage and opens them for verification.
// The account ID binds the ciphertext to its owner so sealed seeds cannot be
// swapped between rows.
type SecretCipher interface {
	EncryptSeed(accountID uuid.UUID, seed string) (string, error)
	DecryptSeed(accountID uuid.UUID, ciphertext string) (string, error)
}

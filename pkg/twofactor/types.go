package twofactor

import (
	"time"

	"github.com/google/uuid"
)

// AttemptType distinguishes which factor a verification attempt used.
type AttemptType string

const (
	AttemptTypeTOTP       AttemptType = "totp"
	AttemptTypeBackupCode AttemptType = "backup_code"
)

// Credential is the per-account two-factor enrollment. A credential exists
// in exactly one of three states: absent, pending (Verified false) or active
// (Verified and Enabled true). Enabled implies Verified.
type Credential struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	SecretCiphertext string   // TOTP seed, sealed at rest; decrypted only transiently
	BackupCodeHashes []string // digests of issued recovery codes, never plaintext
	Verified         bool     // set by the first successful confirmation
	Enabled          bool     // set together with Verified; 2FA is enforced when both hold
	LastUsedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Active reports whether 2FA is enforced for the account.
func (c Credential) Active() bool {
	return c.Enabled && c.Verified
}

// BackupCodeUsage marks a recovery code as consumed. Append-only; the
// (CredentialID, CodeHash) pair is unique, which is what makes consumption
// single-use even under concurrent verification.
type BackupCodeUsage struct {
	CredentialID uuid.UUID
	CodeHash     string
	UsedAt       time.Time
}

// Attempt is one verification attempt, kept as an append-only trail and read
// back only in aggregate by the throttle.
type Attempt struct {
	AccountID uuid.UUID
	Type      AttemptType
	Success   bool
	CreatedAt time.Time
}

// Status is the read-only view reported to callers.
type Status struct {
	Enabled              bool
	Verified             bool
	LastUsedAt           *time.Time
	BackupCodesRemaining int
}

// SetupResult carries the plaintext material returned to the caller exactly
// once during enrollment; none of it is persisted or retrievable afterwards.
type SetupResult struct {
	Secret          string
	ProvisioningURI string
	BackupCodes     []string
}

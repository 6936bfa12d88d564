// Package twofactor implements TOTP-based two-factor authentication for user
// accounts: enrollment with authenticator apps, verification at login, backup
// codes for device loss, and an attempt throttle against online guessing.
//
// The package orchestrates three collaborators behind small interfaces so the
// flows stay testable and backend-agnostic:
//
//   - Storage persists credentials, backup code usage and the attempt trail
//   - SecretCipher seals TOTP seeds at rest (see pkg/secrets)
//   - AttemptStore optionally routes the attempt trail to a separate backend
//
// # Credential Lifecycle
//
// An account's credential moves through three states. Setup creates a pending
// credential and hands the caller the secret, the otpauth:// provisioning URI
// and the plaintext backup codes for one-time display. ConfirmAndEnable
// verifies the first code from the authenticator and activates the
// credential; from then on VerifyAtLogin enforces the second factor. Disable
// removes the credential entirely after a successful verification. Repeating
// Setup before confirmation simply reissues fresh material; once active,
// Setup refuses with ErrAlreadyEnabled.
//
// # Usage
//
// Wiring the service against Postgres storage:
//
//	cfg, err := twofactor.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cipher, err := secrets.NewCipherFromBase64(cfg.EncryptionKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc := twofactor.NewService(store, cipher,
//		twofactor.WithIssuer(cfg.Issuer),
//		twofactor.WithBackupCodeCount(cfg.BackupCodeCount),
//		twofactor.WithThrottlePolicy(cfg.MaxFailedAttempts, cfg.FailureWindow),
//	)
//
//	// Enrollment
//	setup, err := svc.Setup(ctx, accountID, "alice@example.com")
//	// show setup.ProvisioningURI as a QR code plus setup.BackupCodes, once
//
//	ok, err := svc.ConfirmAndEnable(ctx, accountID, "123456")
//
//	// Login
//	ok, err = svc.VerifyAtLogin(ctx, accountID, token)
//
// # Storage Backends
//
// Ready-made Storage implementations live in subpackages: pgstore (Postgres
// via pgx, with embedded goose migrations), mongostore (MongoDB) and memstore
// (in-memory, for tests and prototypes). redisstore implements AttemptStore
// only, for deployments that keep the throttle trail in Redis via
// WithAttemptStore.
//
// # Verification Semantics
//
// VerifyAtLogin accepts either a TOTP code (checked against the current step
// and one step on each side, so clock drift up to ~30s passes) or a backup
// code. Backup codes are single-use: consumption is first-writer-wins in
// storage, so a replayed or raced code fails cleanly. Failed attempts are
// recorded and counted over a sliding window; once the budget is exhausted
// verification refuses with ErrTooManyAttempts until the window moves on.
// Malformed tokens are ordinary failures, not errors.
package twofactor

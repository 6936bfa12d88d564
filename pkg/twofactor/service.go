package twofactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/immigration-ai/authkit/pkg/backupcode"
	"github.com/immigration-ai/authkit/pkg/logger"
	"github.com/immigration-ai/authkit/pkg/totp"
)

const (
	// DefaultMaxFailures is the number of failed attempts allowed inside the
	// throttle window before verification is refused.
	DefaultMaxFailures = 5

	// DefaultFailureWindow is the sliding window the throttle counts over.
	DefaultFailureWindow = 15 * time.Minute
)

// Service orchestrates two-factor enrollment, verification and recovery on
// top of a Storage backend and a SecretCipher.
type Service struct {
	storage  Storage
	attempts AttemptStore
	cipher   SecretCipher
	logger   *slog.Logger

	issuer          string
	backupCodeCount int
	maxFailures     int
	failureWindow   time.Duration
	now             func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithIssuer sets the issuer label embedded in provisioning URIs.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithBackupCodeCount sets how many backup codes are issued per enrollment.
func WithBackupCodeCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.backupCodeCount = count
		}
	}
}

// WithThrottlePolicy sets the failed-attempt budget and the sliding window it
// is counted over.
func WithThrottlePolicy(maxFailures int, window time.Duration) Option {
	return func(s *Service) {
		if maxFailures > 0 && window > 0 {
			s.maxFailures = maxFailures
			s.failureWindow = window
		}
	}
}

// WithAttemptStore routes the attempt trail to a dedicated backend instead of
// the credential storage.
func WithAttemptStore(attempts AttemptStore) Option {
	return func(s *Service) {
		if attempts != nil {
			s.attempts = attempts
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a two-factor service backed by the given storage and
// seed cipher. Attempts are recorded to storage unless WithAttemptStore
// routes them elsewhere.
func NewService(storage Storage, cipher SecretCipher, opts ...Option) *Service {
	s := &Service{
		storage:         storage,
		cipher:          cipher,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		issuer:          totp.DefaultIssuer,
		backupCodeCount: backupcode.DefaultCount,
		maxFailures:     DefaultMaxFailures,
		failureWindow:   DefaultFailureWindow,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.attempts == nil {
		s.attempts = storage
	}

	return s
}

// Setup begins enrollment for the account: it generates a TOTP secret and a
// set of backup codes, stores them as a pending credential and returns the
// plaintext material for one-time display. accountLabel names the account
// inside the authenticator app (typically the user's email).
//
// Calling Setup again before confirmation discards the pending credential
// and issues fresh material. Once the credential is active, Setup fails with
// ErrAlreadyEnabled.
func (s *Service) Setup(ctx context.Context, accountID uuid.UUID, accountLabel string) (SetupResult, error) {
	cred, err := s.storage.GetCredential(ctx, accountID)
	if err != nil && !errors.Is(err, ErrCredentialNotFound) {
		return SetupResult{}, fmt.Errorf("failed to load credential: %w", err)
	}
	if err == nil && cred.Active() {
		return SetupResult{}, ErrAlreadyEnabled
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return SetupResult{}, err
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Secret:      secret,
		AccountName: accountLabel,
		Issuer:      s.issuer,
	})
	if err != nil {
		return SetupResult{}, err
	}

	codes, err := backupcode.Generate(s.backupCodeCount)
	if err != nil {
		return SetupResult{}, err
	}

	ciphertext, err := s.cipher.EncryptSeed(accountID, secret)
	if err != nil {
		return SetupResult{}, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	now := s.now()
	pending := Credential{
		ID:               uuid.New(),
		AccountID:        accountID,
		SecretCiphertext: ciphertext,
		BackupCodeHashes: backupcode.HashAll(codes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.storage.SavePendingCredential(ctx, pending); err != nil {
		return SetupResult{}, fmt.Errorf("failed to save pending credential: %w", err)
	}

	return SetupResult{
		Secret:          secret,
		ProvisioningURI: uri,
		BackupCodes:     codes,
	}, nil
}

// ConfirmAndEnable verifies the first TOTP code against the pending
// credential and, on success, activates it. It returns false with a nil error
// when the code simply does not match; the failed attempt is recorded.
func (s *Service) ConfirmAndEnable(ctx context.Context, accountID uuid.UUID, token string) (bool, error) {
	if err := s.checkThrottle(ctx, accountID); err != nil {
		return false, err
	}

	cred, err := s.storage.GetCredential(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return false, ErrNotSetUp
	}
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred.Verified {
		return false, ErrAlreadyVerified
	}

	secret, err := s.cipher.DecryptSeed(accountID, cred.SecretCiphertext)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt secret: %w", err)
	}

	if !s.totpMatches(secret, token) {
		s.recordAttempt(ctx, accountID, AttemptTypeTOTP, false)
		return false, nil
	}

	if err := s.storage.ActivateCredential(ctx, accountID, s.now()); err != nil {
		return false, fmt.Errorf("failed to activate credential: %w", err)
	}

	s.recordAttempt(ctx, accountID, AttemptTypeTOTP, true)

	return true, nil
}

// VerifyAtLogin checks a token for an account at sign-in. The token may be a
// TOTP code or a backup code; backup codes are consumed on success. When the
// account has no active credential the check passes trivially false without
// recording an attempt, since there is nothing to verify against.
func (s *Service) VerifyAtLogin(ctx context.Context, accountID uuid.UUID, token string) (bool, error) {
	if err := s.checkThrottle(ctx, accountID); err != nil {
		return false, err
	}

	cred, err := s.storage.GetCredential(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	if !cred.Active() {
		return false, nil
	}

	secret, err := s.cipher.DecryptSeed(accountID, cred.SecretCiphertext)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt secret: %w", err)
	}

	if s.totpMatches(secret, token) {
		if err := s.storage.UpdateLastUsedAt(ctx, accountID, s.now()); err != nil {
			return false, fmt.Errorf("failed to update last used time: %w", err)
		}
		s.recordAttempt(ctx, accountID, AttemptTypeTOTP, true)
		return true, nil
	}

	if backupcode.Verify(token, cred.BackupCodeHashes) {
		err := s.storage.ConsumeBackupCode(ctx, accountID, backupcode.Hash(token), s.now())
		switch {
		case err == nil:
			if err := s.storage.UpdateLastUsedAt(ctx, accountID, s.now()); err != nil {
				return false, fmt.Errorf("failed to update last used time: %w", err)
			}
			s.recordAttempt(ctx, accountID, AttemptTypeBackupCode, true)
			return true, nil
		case errors.Is(err, ErrBackupCodeAlreadyUsed):
			// A consumed code never validates twice.
			s.recordAttempt(ctx, accountID, AttemptTypeBackupCode, false)
			return false, nil
		default:
			return false, fmt.Errorf("failed to consume backup code: %w", err)
		}
	}

	s.recordAttempt(ctx, accountID, attemptTypeOf(token), false)

	return false, nil
}

// Disable turns two-factor off for the account after verifying the presented
// token. The credential and its backup code usage are deleted; it returns
// false with a nil error when the token does not verify.
func (s *Service) Disable(ctx context.Context, accountID uuid.UUID, token string) (bool, error) {
	ok, err := s.VerifyAtLogin(ctx, accountID, token)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := s.storage.DeleteCredential(ctx, accountID); err != nil {
		return false, fmt.Errorf("failed to delete credential: %w", err)
	}

	return true, nil
}

// RegenerateBackupCodes replaces the account's backup codes with a fresh set
// after verifying the presented token. Previously issued codes stop working
// immediately. Returns ErrInvalidToken when the token does not verify.
func (s *Service) RegenerateBackupCodes(ctx context.Context, accountID uuid.UUID, token string) ([]string, error) {
	ok, err := s.VerifyAtLogin(ctx, accountID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	codes, err := backupcode.Generate(s.backupCodeCount)
	if err != nil {
		return nil, err
	}

	if err := s.storage.ReplaceBackupCodes(ctx, accountID, backupcode.HashAll(codes)); err != nil {
		return nil, fmt.Errorf("failed to replace backup codes: %w", err)
	}

	return codes, nil
}

// Status reports the account's two-factor state. Accounts with no credential
// get the zero Status.
func (s *Service) Status(ctx context.Context, accountID uuid.UUID) (Status, error) {
	cred, err := s.storage.GetCredential(ctx, accountID)
	if errors.Is(err, ErrCredentialNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to load credential: %w", err)
	}

	consumed, err := s.storage.CountConsumedBackupCodes(ctx, accountID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count consumed backup codes: %w", err)
	}

	remaining := len(cred.BackupCodeHashes) - consumed
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Enabled:              cred.Enabled,
		Verified:             cred.Verified,
		LastUsedAt:           cred.LastUsedAt,
		BackupCodesRemaining: remaining,
	}, nil
}

// checkThrottle refuses verification once the account's failed attempts
// inside the window reach the budget.
func (s *Service) checkThrottle(ctx context.Context, accountID uuid.UUID) error {
	since := s.now().Add(-s.failureWindow)

	failures, err := s.attempts.CountRecentFailures(ctx, accountID, since)
	if err != nil {
		return fmt.Errorf("failed to count recent failures: %w", err)
	}
	if failures >= s.maxFailures {
		return ErrTooManyAttempts
	}

	return nil
}

// totpMatches verifies a TOTP code at the service clock, treating malformed
// input as an ordinary mismatch.
func (s *Service) totpMatches(secret, token string) bool {
	ok, err := totp.VerifyAt(secret, token, s.now())
	if err != nil {
		return false
	}
	return ok
}

// recordAttempt appends to the attempt trail. Recording is best-effort: a
// trail write failure is logged, never surfaced, so the verification outcome
// stands on its own.
func (s *Service) recordAttempt(ctx context.Context, accountID uuid.UUID, attemptType AttemptType, success bool) {
	attempt := Attempt{
		AccountID: accountID,
		Type:      attemptType,
		Success:   success,
		CreatedAt: s.now(),
	}

	if err := s.attempts.RecordAttempt(ctx, attempt); err != nil {
		s.logger.Error("failed to record verification attempt",
			logger.AccountID(accountID),
			logger.AttemptType(string(attemptType)),
			logger.Error(err),
			logger.Component("twofactor"),
		)
	}
}

// attemptTypeOf classifies a failed token by shape: six digits is a TOTP
// guess, anything else is treated as a backup code guess.
func attemptTypeOf(token string) AttemptType {
	token = strings.TrimSpace(token)
	if len(token) != totp.Digits {
		return AttemptTypeBackupCode
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return AttemptTypeBackupCode
		}
	}
	return AttemptTypeTOTP
}

package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/immigration-ai/authkit/pkg/twofactor"
)

// Store implements twofactor.Storage on PostgreSQL via a pgx pool.
//
// Backup code consumption maps onto the primary key of
// twofactor_backup_code_usages: the first insert wins and any concurrent or
// repeated insert fails with a unique violation, which surfaces as
// twofactor.ErrBackupCodeAlreadyUsed. No row locks, no read-modify-write.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store on top of an established connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

var _ twofactor.Storage = (*Store)(nil)

func (s *Store) GetCredential(ctx context.Context, accountID uuid.UUID) (twofactor.Credential, error) {
	query := `
		SELECT id, account_id, secret_ciphertext, backup_code_hashes, verified, enabled, last_used_at, created_at, updated_at
		FROM twofactor_credentials
		WHERE account_id = $1`

	var cred twofactor.Credential
	err := s.db.QueryRow(ctx, query, accountID).Scan(
		&cred.ID, &cred.AccountID, &cred.SecretCiphertext, &cred.BackupCodeHashes,
		&cred.Verified, &cred.Enabled, &cred.LastUsedAt, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return twofactor.Credential{}, twofactor.ErrCredentialNotFound
		}
		return twofactor.Credential{}, fmt.Errorf("failed to load credential: %w", err)
	}
	return cred, nil
}

func (s *Store) SavePendingCredential(ctx context.Context, cred twofactor.Credential) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	// Dropping the old row cascades into its usage trail, so a re-enrollment
	// starts with a clean slate.
	if _, err := tx.Exec(ctx, `DELETE FROM twofactor_credentials WHERE account_id = $1`, cred.AccountID); err != nil {
		return fmt.Errorf("failed to delete previous credential: %w", err)
	}

	insert := `
		INSERT INTO twofactor_credentials (id, account_id, secret_ciphertext, backup_code_hashes, verified, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, insert,
		cred.ID, cred.AccountID, cred.SecretCiphertext, cred.BackupCodeHashes,
		cred.Verified, cred.Enabled, cred.CreatedAt, cred.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ActivateCredential(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	query := `
		UPDATE twofactor_credentials
		SET verified = TRUE, enabled = TRUE, last_used_at = $2, updated_at = $2
		WHERE account_id = $1`

	tag, err := s.db.Exec(ctx, query, accountID, at)
	if err != nil {
		return fmt.Errorf("failed to activate credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrCredentialNotFound
	}
	return nil
}

func (s *Store) UpdateLastUsedAt(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	query := `
		UPDATE twofactor_credentials
		SET last_used_at = $2, updated_at = $2
		WHERE account_id = $1`

	tag, err := s.db.Exec(ctx, query, accountID, at)
	if err != nil {
		return fmt.Errorf("failed to update last used time: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrCredentialNotFound
	}
	return nil
}

func (s *Store) DeleteCredential(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM twofactor_credentials WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *Store) ReplaceBackupCodes(ctx context.Context, accountID uuid.UUID, codeHashes []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	purge := `
		DELETE FROM twofactor_backup_code_usages
		WHERE credential_id = (SELECT id FROM twofactor_credentials WHERE account_id = $1)`
	if _, err := tx.Exec(ctx, purge, accountID); err != nil {
		return fmt.Errorf("failed to purge backup code usage: %w", err)
	}

	update := `
		UPDATE twofactor_credentials
		SET backup_code_hashes = $2, updated_at = now()
		WHERE account_id = $1`
	tag, err := tx.Exec(ctx, update, accountID, codeHashes)
	if err != nil {
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrCredentialNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ConsumeBackupCode(ctx context.Context, accountID uuid.UUID, codeHash string, at time.Time) error {
	// Single statement, single source of truth: the PK on
	// (credential_id, code_hash) makes the first writer win.
	query := `
		INSERT INTO twofactor_backup_code_usages (credential_id, code_hash, used_at)
		SELECT id, $2, $3 FROM twofactor_credentials WHERE account_id = $1`

	tag, err := s.db.Exec(ctx, query, accountID, codeHash, at)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return twofactor.ErrBackupCodeAlreadyUsed
		}
		return fmt.Errorf("failed to consume backup code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return twofactor.ErrCredentialNotFound
	}
	return nil
}

func (s *Store) CountConsumedBackupCodes(ctx context.Context, accountID uuid.UUID) (int, error) {
	// Only usages of the credential's current code set count; stale rows from
	// a preceding set are purged on replacement anyway.
	query := `
		SELECT count(*)
		FROM twofactor_backup_code_usages u
		JOIN twofactor_credentials c ON c.id = u.credential_id
		WHERE c.account_id = $1 AND u.code_hash = ANY(c.backup_code_hashes)`

	var count int
	if err := s.db.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count consumed backup codes: %w", err)
	}
	return count, nil
}

func (s *Store) RecordAttempt(ctx context.Context, attempt twofactor.Attempt) error {
	query := `
		INSERT INTO twofactor_attempts (account_id, attempt_type, success, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.db.Exec(ctx, query,
		attempt.AccountID, string(attempt.Type), attempt.Success, attempt.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (s *Store) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT count(*)
		FROM twofactor_attempts
		WHERE account_id = $1 AND success = FALSE AND created_at >= $2`

	var count int
	if err := s.db.QueryRow(ctx, query, accountID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}
	return count, nil
}

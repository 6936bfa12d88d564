package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/immigration-ai/authkit/pkg/twofactor"
)

const (
	credentialsCollection = "twofactor_credentials"
	usagesCollection      = "twofactor_backup_code_usages"
	attemptsCollection    = "twofactor_attempts"
)

// Store implements twofactor.Storage on MongoDB.
//
// Single-use backup codes rest on the unique index over
// (credential_id, code_hash) in the usage collection: the first insert wins
// and every other writer gets a duplicate key error, no transactions needed.
// Call EnsureIndexes once at startup before serving traffic.
type Store struct {
	credentials *mongo.Collection
	usages      *mongo.Collection
	attempts    *mongo.Collection
}

// New creates a Store over the given database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		credentials: db.Collection(credentialsCollection),
		usages:      db.Collection(usagesCollection),
		attempts:    db.Collection(attemptsCollection),
	}
}

var _ twofactor.Storage = (*Store)(nil)

// EnsureIndexes creates the indexes the storage contract depends on. It is
// idempotent and must run before the store serves writes, otherwise backup
// code consumption loses its single-use guarantee.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.credentials.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create credential index: %w", err)
	}

	_, err = s.usages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "credential_id", Value: 1}, {Key: "code_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create usage index: %w", err)
	}

	_, err = s.attempts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetPartialFilterExpression(bson.D{{Key: "success", Value: false}}),
	})
	if err != nil {
		return fmt.Errorf("failed to create attempt index: %w", err)
	}

	return nil
}

// UUIDs are stored as their canonical string form to keep documents readable
// and avoid binary subtype pitfalls across driver versions.
type credentialDoc struct {
	ID               string     `bson:"_id"`
	AccountID        string     `bson:"account_id"`
	SecretCiphertext string     `bson:"secret_ciphertext"`
	BackupCodeHashes []string   `bson:"backup_code_hashes"`
	Verified         bool       `bson:"verified"`
	Enabled          bool       `bson:"enabled"`
	LastUsedAt       *time.Time `bson:"last_used_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

type usageDoc struct {
	CredentialID string    `bson:"credential_id"`
	CodeHash     string    `bson:"code_hash"`
	UsedAt       time.Time `bson:"used_at"`
}

type attemptDoc struct {
	AccountID   string    `bson:"account_id"`
	AttemptType string    `bson:"attempt_type"`
	Success     bool      `bson:"success"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (s *Store) GetCredential(ctx context.Context, accountID uuid.UUID) (twofactor.Credential, error) {
	doc, err := s.findCredential(ctx, accountID)
	if err != nil {
		return twofactor.Credential{}, err
	}
	return toCredential(doc)
}

func (s *Store) SavePendingCredential(ctx context.Context, cred twofactor.Credential) error {
	// A replaced credential leaves its usage trail behind; purge it first so
	// re-enrollment starts clean. Orphaned usage rows written in between
	// reference the old credential ID and can never match the new one.
	old, err := s.findCredential(ctx, cred.AccountID)
	switch {
	case err == nil:
		if _, err := s.usages.DeleteMany(ctx, bson.M{"credential_id": old.ID}); err != nil {
			return fmt.Errorf("failed to purge backup code usage: %w", err)
		}
	case errors.Is(err, twofactor.ErrCredentialNotFound):
	default:
		return err
	}

	doc := credentialDoc{
		ID:               cred.ID.String(),
		AccountID:        cred.AccountID.String(),
		SecretCiphertext: cred.SecretCiphertext,
		BackupCodeHashes: append([]string(nil), cred.BackupCodeHashes...),
		Verified:         cred.Verified,
		Enabled:          cred.Enabled,
		LastUsedAt:       cred.LastUsedAt,
		CreatedAt:        cred.CreatedAt,
		UpdatedAt:        cred.UpdatedAt,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.credentials.ReplaceOne(ctx, bson.M{"account_id": doc.AccountID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save pending credential: %w", err)
	}
	return nil
}

func (s *Store) ActivateCredential(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"verified":     true,
		"enabled":      true,
		"last_used_at": at,
		"updated_at":   at,
	}}

	res, err := s.credentials.UpdateOne(ctx, bson.M{"account_id": accountID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to activate credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return twofactor.ErrCredentialNotFound
	}
	return nil
}

func (s *Store) UpdateLastUsedAt(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"last_used_at": at,
		"updated_at":   at,
	}}

	res, err := s.credentials.UpdateOne(ctx, bson.M{"account_id": accountID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update last used time: %w", err)
	}
	if res.MatchedCount == 0 {
		return twofactor.ErrCredentialNotFound
	}
	return nil
}

func (s *Store) DeleteCredential(ctx context.Context, accountID uuid.UUID) error {
	old, err := s.findCredential(ctx, accountID)
	if errors.Is(err, twofactor.ErrCredentialNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.usages.DeleteMany(ctx, bson.M{"credential_id": old.ID}); err != nil {
		return fmt.Errorf("failed to purge backup code usage: %w", err)
	}
	if _, err := s.credentials.DeleteOne(ctx, bson.M{"_id": old.ID}); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *Store) ReplaceBackupCodes(ctx context.Context, accountID uuid.UUID, codeHashes []string) error {
	old, err := s.findCredential(ctx, accountID)
	if err != nil {
		return err
	}

	if _, err := s.usages.DeleteMany(ctx, bson.M{"credential_id": old.ID}); err != nil {
		return fmt.Errorf("failed to purge backup code usage: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"backup_code_hashes": codeHashes,
		"updated_at":         time.Now(),
	}}
	if _, err := s.credentials.UpdateOne(ctx, bson.M{"_id": old.ID}, update); err != nil {
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	return nil
}

func (s *Store) ConsumeBackupCode(ctx context.Context, accountID uuid.UUID, codeHash string, at time.Time) error {
	old, err := s.findCredential(ctx, accountID)
	if err != nil {
		return err
	}

	_, err = s.usages.InsertOne(ctx, usageDoc{
		CredentialID: old.ID,
		CodeHash:     codeHash,
		UsedAt:       at,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return twofactor.ErrBackupCodeAlreadyUsed
		}
		return fmt.Errorf("failed to consume backup code: %w", err)
	}
	return nil
}

func (s *Store) CountConsumedBackupCodes(ctx context.Context, accountID uuid.UUID) (int, error) {
	old, err := s.findCredential(ctx, accountID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{
		"credential_id": old.ID,
		"code_hash":     bson.M{"$in": old.BackupCodeHashes},
	}
	count, err := s.usages.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count consumed backup codes: %w", err)
	}
	return int(count), nil
}

func (s *Store) RecordAttempt(ctx context.Context, attempt twofactor.Attempt) error {
	_, err := s.attempts.InsertOne(ctx, attemptDoc{
		AccountID:   attempt.AccountID.String(),
		AttemptType: string(attempt.Type),
		Success:     attempt.Success,
		CreatedAt:   attempt.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (s *Store) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	filter := bson.M{
		"account_id": accountID.String(),
		"success":    false,
		"created_at": bson.M{"$gte": since},
	}

	count, err := s.attempts.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}
	return int(count), nil
}

func (s *Store) findCredential(ctx context.Context, accountID uuid.UUID) (credentialDoc, error) {
	var doc credentialDoc
	err := s.credentials.FindOne(ctx, bson.M{"account_id": accountID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return credentialDoc{}, twofactor.ErrCredentialNotFound
		}
		return credentialDoc{}, fmt.Errorf("failed to load credential: %w", err)
	}
	return doc, nil
}

func toCredential(doc credentialDoc) (twofactor.Credential, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return twofactor.Credential{}, fmt.Errorf("failed to parse stored credential id: %w", err)
	}
	accountID, err := uuid.Parse(doc.AccountID)
	if err != nil {
		return twofactor.Credential{}, fmt.Errorf("failed to parse stored account id: %w", err)
	}

	return twofactor.Credential{
		ID:               id,
		AccountID:        accountID,
		SecretCiphertext: doc.SecretCiphertext,
		BackupCodeHashes: doc.BackupCodeHashes,
		Verified:         doc.Verified,
		Enabled:          doc.Enabled,
		LastUsedAt:       doc.LastUsedAt,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

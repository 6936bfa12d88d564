package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetCredential(ctx context.Context, accountID uuid.UUID) (Credential, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return Credential{}, args.Error(1)
	}
	return args.Get(0).(Credential), args.Error(1)
}

func (m *MockStorage) SavePendingCredential(ctx context.Context, cred Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockStorage) ActivateCredential(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, accountID, at)
	return args.Error(0)
}

func (m *MockStorage) UpdateLastUsedAt(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, accountID, at)
	return args.Error(0)
}

func (m *MockStorage) DeleteCredential(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockStorage) ReplaceBackupCodes(ctx context.Context, accountID uuid.UUID, codeHashes []string) error {
	args := m.Called(ctx, accountID, codeHashes)
	return args.Error(0)
}

func (m *MockStorage) ConsumeBackupCode(ctx context.Context, accountID uuid.UUID, codeHash string, at time.Time) error {
	args := m.Called(ctx, accountID, codeHash, at)
	return args.Error(0)
}

func (m *MockStorage) CountConsumedBackupCodes(ctx context.Context, accountID uuid.UUID) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) RecordAttempt(ctx context.Context, attempt Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockStorage) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, accountID, since)
	return args.Int(0), args.Error(1)
}

// MockAttemptStore is a mock implementation of AttemptStore.
type MockAttemptStore struct {
	mock.Mock
}

func (m *MockAttemptStore) RecordAttempt(ctx context.Context, attempt Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptStore) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, accountID, since)
	return args.Int(0), args.Error(1)
}

// MockSecretCipher is a mock implementation of SecretCipher.
type MockSecretCipher struct {
	mock.Mock
}

func (m *MockSecretCipher) EncryptSeed(accountID uuid.UUID, seed string) (string, error) {
	args := m.Called(accountID, seed)
	return args.String(0), args.Error(1)
}

func (m *MockSecretCipher) DecryptSeed(accountID uuid.UUID, ciphertext string) (string, error) {
	args := m.Called(accountID, ciphertext)
	return args.String(0), args.Error(1)
}

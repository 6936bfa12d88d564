// Package memstore provides an in-memory twofactor.Storage implementation
// for tests and prototypes. All state is process-local and guarded by a
// single mutex; returned credentials are deep copies so callers cannot
// mutate stored state.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/immigration-ai/authkit/pkg/twofactor"
)

// Store implements twofactor.Storage in memory.
type Store struct {
	mu       sync.Mutex
	creds    map[uuid.UUID]twofactor.Credential                 // keyed by account ID
	usages   map[uuid.UUID]map[string]twofactor.BackupCodeUsage // keyed by credential ID, then code hash
	attempts map[uuid.UUID][]twofactor.Attempt
}

// New creates an empty store.
func New() *Store {
	return &Store{
		creds:    make(map[uuid.UUID]twofactor.Credential),
		usages:   make(map[uuid.UUID]map[string]twofactor.BackupCodeUsage),
		attempts: make(map[uuid.UUID][]twofactor.Attempt),
	}
}

var _ twofactor.Storage = (*Store)(nil)

func (s *Store) GetCredential(_ context.Context, accountID uuid.UUID) (twofactor.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return twofactor.Credential{}, twofactor.ErrCredentialNotFound
	}
	return cloneCredential(cred), nil
}

func (s *Store) SavePendingCredential(_ context.Context, cred twofactor.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replacing an enrollment drops the usage trail of the old credential.
	if old, ok := s.creds[cred.AccountID]; ok {
		delete(s.usages, old.ID)
	}
	s.creds[cred.AccountID] = cloneCredential(cred)
	return nil
}

func (s *Store) ActivateCredential(_ context.Context, accountID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return twofactor.ErrCredentialNotFound
	}
	cred.Verified = true
	cred.Enabled = true
	cred.LastUsedAt = &at
	cred.UpdatedAt = at
	s.creds[accountID] = cred
	return nil
}

func (s *Store) UpdateLastUsedAt(_ context.Context, accountID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return twofactor.ErrCredentialNotFound
	}
	cred.LastUsedAt = &at
	cred.UpdatedAt = at
	s.creds[accountID] = cred
	return nil
}

func (s *Store) DeleteCredential(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cred, ok := s.creds[accountID]; ok {
		delete(s.usages, cred.ID)
		delete(s.creds, accountID)
	}
	return nil
}

func (s *Store) ReplaceBackupCodes(_ context.Context, accountID uuid.UUID, codeHashes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return twofactor.ErrCredentialNotFound
	}
	cred.BackupCodeHashes = append([]string(nil), codeHashes...)
	cred.UpdatedAt = time.Now()
	s.creds[accountID] = cred
	delete(s.usages, cred.ID)
	return nil
}

func (s *Store) ConsumeBackupCode(_ context.Context, accountID uuid.UUID, codeHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return twofactor.ErrCredentialNotFound
	}

	used, ok := s.usages[cred.ID]
	if !ok {
		used = make(map[string]twofactor.BackupCodeUsage)
		s.usages[cred.ID] = used
	}
	if _, consumed := used[codeHash]; consumed {
		return twofactor.ErrBackupCodeAlreadyUsed
	}
	used[codeHash] = twofactor.BackupCodeUsage{
		CredentialID: cred.ID,
		CodeHash:     codeHash,
		UsedAt:       at,
	}
	return nil
}

func (s *Store) CountConsumedBackupCodes(_ context.Context, accountID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[accountID]
	if !ok {
		return 0, twofactor.ErrCredentialNotFound
	}

	used := s.usages[cred.ID]
	count := 0
	for _, hash := range cred.BackupCodeHashes {
		if _, consumed := used[hash]; consumed {
			count++
		}
	}
	return count, nil
}

func (s *Store) RecordAttempt(_ context.Context, attempt twofactor.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[attempt.AccountID] = append(s.attempts[attempt.AccountID], attempt)
	return nil
}

func (s *Store) CountRecentFailures(_ context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, a := range s.attempts[accountID] {
		if !a.Success && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func cloneCredential(cred twofactor.Credential) twofactor.Credential {
	out := cred
	out.BackupCodeHashes = append([]string(nil), cred.BackupCodeHashes...)
	if cred.LastUsedAt != nil {
		t := *cred.LastUsedAt
		out.LastUsedAt = &t
	}
	return out
}

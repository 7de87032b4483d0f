package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/eka-dev/ftracker/db"
	"github.com/rs/zerolog/log"
)

// PersistentStore is a CredentialStore backed by the sqlite token table.
// Reads are served from a cache that is loaded once and updated only after a
// write has been persisted.
type PersistentStore struct {
	repo db.TokenRepository

	mu     sync.RWMutex
	loaded bool
	cached Credential
}

var (
	_ CredentialStore = (*PersistentStore)(nil)
	_ Reloader        = (*PersistentStore)(nil)
)

// NewPersistentStore creates a store over the given repository.
func NewPersistentStore(repo db.TokenRepository) *PersistentStore {
	return &PersistentStore{repo: repo}
}

// Get returns the stored credential, loading it from the database on first use.
func (s *PersistentStore) Get(ctx context.Context) (Credential, error) {
	s.mu.RLock()
	if s.loaded {
		cred := s.cached
		s.mu.RUnlock()
		return cred, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}

	record, err := s.repo.Get(ctx)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to retrieve token record: %w", err)
	}
	if record != nil {
		s.cached = Credential{AccessToken: record.AccessToken, RefreshToken: record.RefreshToken}
	}
	s.loaded = true
	return s.cached, nil
}

// Reload reads the pair from the database and replaces the cached copy. It
// picks up pairs written by other processes sharing the database file.
func (s *PersistentStore) Reload(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.Get(ctx)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to reload token record: %w", err)
	}
	s.cached = Credential{}
	if record != nil {
		s.cached = Credential{AccessToken: record.AccessToken, RefreshToken: record.RefreshToken}
	}
	s.loaded = true
	return s.cached, nil
}

// Save persists the pair and then publishes it to readers.
func (s *PersistentStore) Save(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Upsert(ctx, &db.Token{AccessToken: accessToken, RefreshToken: refreshToken}); err != nil {
		return fmt.Errorf("failed to save token record: %w", err)
	}
	s.cached = Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	s.loaded = true
	log.Debug().Msg("Credential saved")
	return nil
}

// Clear deletes the stored pair.
func (s *PersistentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear token record: %w", err)
	}
	s.cached = Credential{}
	s.loaded = true
	log.Debug().Msg("Credential cleared")
	return nil
}

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding the given credential.
func NewMemoryStore(cred Credential) *MemoryStore {
	return &MemoryStore{cred: cred}
}

func (s *MemoryStore) Get(context.Context) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, nil
}

func (s *MemoryStore) Save(_ context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	return nil
}

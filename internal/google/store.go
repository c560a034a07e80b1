package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// CredentialStore persists the credential between runs.
// Load returns (nil, nil) when nothing is stored.
type CredentialStore interface {
	Load() (*Credential, error)
	Save(*Credential) error
	Clear() error
}

// DefaultTokenPath returns the XDG data path of the token cache.
func DefaultTokenPath() string {
	return filepath.Join(xdg.DataHome, "calexport", "token.json")
}

// FileStore keeps the credential as a JSON file readable only by the user.
type FileStore struct {
	Path string
}

// NewFileStore returns a store at path, or at DefaultTokenPath when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileStore{Path: path}
}

// Load reads the cached credential.
func (s *FileStore) Load() (*Credential, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cred Credential
	if err := json.NewDecoder(f).Decode(&cred); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", s.Path, err)
	}
	return &cred, nil
}

// Save writes the credential, creating the parent directory if needed.
func (s *FileStore) Save(cred *Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(cred); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return f.Close()
}

// Clear removes the token file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in memory. Useful for tests and for
// runs that must not touch the disk.
type MemoryStore struct {
	mu    sync.Mutex
	cred  *Credential
	saves int
}

// NewMemoryStore returns a store seeded with cred, which may be nil.
func NewMemoryStore(cred *Credential) *MemoryStore {
	return &MemoryStore{cred: cred}
}

func (s *MemoryStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *MemoryStore) Save(cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	s.cred = &c
	s.saves++
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultTokenFile is the file name used under the user config directory.
const DefaultTokenFile = "token"

// FileStore persists the token in a file readable only by the owner.
// A missing file means "no token".
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &FileStore{path: path}, nil
}

// DefaultFilePath returns <user config dir>/hagel/token.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("auth: locate config dir: %w", err)
	}
	return filepath.Join(dir, "hagel", DefaultTokenFile), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Token implements TokenSource.
func (s *FileStore) Token(ctx context.Context) (string, error) {
	return s.Load(ctx)
}

// Load reads the stored token.
func (s *FileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("auth: read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save writes token with mode 0600, creating parent directories.
func (s *FileStore) Save(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("auth: create token dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("auth: write token: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("auth: write token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing a missing file is a no-op.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("auth: remove token: %w", err)
	}
	return nil
}

var _ TokenSource = (*FileStore)(nil)

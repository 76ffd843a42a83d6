package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/smartbin/portal/internal/cryptoutil"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// FileStore persists the session record as one JSON document. Writes go to a
// temporary file that is renamed over the target so readers never observe a
// partial record.
type FileStore struct {
	path   string
	sealer cryptoutil.Sealer
	mu     sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithSealer encrypts the record before it is written. Plain records written
// before a sealer was configured remain readable.
func WithSealer(s cryptoutil.Sealer) FileOption {
	return func(fs *FileStore) { fs.sealer = s }
}

// NewFileStore returns a store backed by path. The parent directory is
// created on first save.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultFilePath returns the per-user session file location.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "smartbin", "session.json"), nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (domainauth.Session, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainauth.Session{}, domainauth.ErrNoSession
		}
		return domainauth.Session{}, fmt.Errorf("read session file: %w", err)
	}
	var sess domainauth.Session
	if err := cryptoutil.OpenJSON(s.sealer, data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session file: %w", err)
	}
	return sess, nil
}

func (s *FileStore) Save(ctx context.Context, sess domainauth.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := cryptoutil.SealJSON(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write session file: %w", err), tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Chmod(0o600); err != nil {
		return errors.Join(fmt.Errorf("chmod session file: %w", err), tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close session file: %w", err), os.Remove(tmpName))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Join(fmt.Errorf("replace session file: %w", err), os.Remove(tmpName))
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

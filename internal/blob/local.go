package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/timecamphq/peoplesync/internal/logging"
)

// LocalStore keeps artifacts as files under a working directory.
// Writes go through a temp file and a rename so readers never observe
// a torn artifact.
type LocalStore struct {
	fs  afero.Fs
	dir string
}

// NewLocalStore returns a store rooted at dir on the OS filesystem.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{fs: afero.NewOsFs(), dir: dir}
}

// NewLocalStoreFS returns a store rooted at dir on the given
// filesystem. Tests use an in-memory Fs.
func NewLocalStoreFS(fs afero.Fs, dir string) *LocalStore {
	return &LocalStore{fs: fs, dir: dir}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *LocalStore) GetJSON(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalStore) PutJSON(_ context.Context, key string, data []byte) error {
	path := s.path(key)
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", key, err)
		}
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}

	logging.S.Debugf("wrote %d bytes to %s", len(data), path)

	return nil
}

func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	return afero.Exists(s.fs, s.path(key))
}

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pageza/dininghall/backend/internal/model"
)

// FileStore keeps snapshots as JSON files in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, snap *model.MenuSnapshot) (string, error) {
	key := KeyFor(snap)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, snap); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	// rename so readers never see a partial document
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return key, nil
}

func (s *FileStore) Load(ctx context.Context, key string) (*model.MenuSnapshot, error) {
	if !IsKey(key) || filepath.Base(key) != key {
		return nil, fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func (s *FileStore) Latest(ctx context.Context) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if !e.IsDir() && IsKey(e.Name()) {
			keys = append(keys, e.Name())
		}
	}
	if len(keys) == 0 {
		return "", ErrNotFound
	}
	sort.Strings(keys)
	return keys[len(keys)-1], nil
}

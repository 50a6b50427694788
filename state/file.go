package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultDirPerm  = os.FileMode(0o755)
	defaultFilePerm = os.FileMode(0o644)
)

// FileStorage persists one JSON file per key under a base directory. Writes
// are atomic (temp file + rename) and serialized by a store-wide mutex, so
// the etag check and the write happen under one critical section.
type FileStorage struct {
	mu  sync.Mutex
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("state: storage dir is required")
	}
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("state: ensure storage dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	// Keys contain '/' separators; escape so each key maps to one flat file.
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileStorage) Read(ctx context.Context, keys []string) (map[string]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Item, len(keys))
	for _, key := range keys {
		item, found, err := f.readItem(key)
		if err != nil {
			return nil, err
		}
		if found {
			out[key] = item
		}
	}
	return out, nil
}

func (f *FileStorage) readItem(key string) (Item, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Item{}, false, nil
		}
		return Item{}, false, fmt.Errorf("state: read %s: %w", key, err)
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, false, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return item, true, nil
}

func (f *FileStorage) Write(ctx context.Context, changes map[string]Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, change := range changes {
		existing, found, err := f.readItem(key)
		if err != nil {
			return err
		}
		if err := checkWrite(existing, found, change); err != nil {
			return err
		}
		etag, err := computeETag(change.Value)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(Item{Value: change.Value, ETag: etag}, "", "  ")
		if err != nil {
			return fmt.Errorf("state: encode %s: %w", key, err)
		}
		data = append(data, '\n')
		if err := f.writeAtomic(f.path(key), data); err != nil {
			return fmt.Errorf("state: write %s: %w", key, err)
		}
	}
	return nil
}

func (f *FileStorage) writeAtomic(path string, content []byte) error {
	parent := filepath.Dir(path)
	tmp, err := os.CreateTemp(parent, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(content); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Chmod(defaultFilePerm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (f *FileStorage) Delete(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("state: delete %s: %w", key, err)
		}
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps one entry file per key under a local directory. It is the
// CLI's default element cache.
//
// Entries record the key they were written for and a checksum of the
// payload. An entry that fails either check, or does not decode, is removed
// and reported as ErrCorrupt so the caller rebuilds instead of loading a
// truncated element list.
type FileCache struct {
	dir string
}

var _ Cache = (*FileCache)(nil)

// NewFileCache opens (creating if needed) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk form of one cached payload.
type fileEntry struct {
	Key       string    `json:"key"`
	Sum       string    `json:"sum"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Data      []byte    `json:"data"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get implements Cache. Expired entries are removed and reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	switch {
	case json.Unmarshal(raw, &e) != nil:
		err = fmt.Errorf("%w: %s does not decode", ErrCorrupt, path)
	case e.Key != key:
		err = fmt.Errorf("%w: %s holds key %q", ErrCorrupt, path, e.Key)
	case e.Sum != Hash(e.Data):
		err = fmt.Errorf("%w: %s checksum mismatch", ErrCorrupt, path)
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, false, err
	}

	if e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements Cache. A zero ttl never expires. The entry is written to a
// temporary file and renamed into place so readers never see a partial file.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Sum: Hash(data), Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete implements Cache. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry and leaves an empty cache directory.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

// path fans entries out over 256 subdirectories by key hash.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

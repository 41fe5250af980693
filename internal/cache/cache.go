package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys mirrored from the remote store. The cache is read once at
// startup and rewritten on every local mutation and every successful
// remote reload; it is never trusted over a successful remote read.
const (
	KeyCurrentUser = "flatmate_current_user"
	KeyTheme       = "flatmate_theme"
	KeyColors      = "flatmate_colors"
	KeyProgress    = "cleaning_progress_v2"
)

// Cache is a flat key→JSON snapshot persisted to a single file. It
// stands in for browser local storage: app-wide, survives restarts,
// and holds only data that also lives remotely.
type Cache struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// Open loads the cache file at path, creating an empty cache when the
// file does not exist yet. A corrupt file is discarded rather than
// wedging startup.
func Open(path string) (*Cache, error) {
	c := &Cache{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	if err := json.Unmarshal(raw, &c.data); err != nil {
		c.data = make(map[string]json.RawMessage)
	}
	return c, nil
}

// Get unmarshals the value under key into out. ok is false when the
// key is absent or undecodable.
func (c *Cache) Get(key string, out any) bool {
	c.mu.Lock()
	raw, found := c.data[key]
	c.mu.Unlock()

	if !found {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Set stores the value under key and rewrites the cache file.
func (c *Cache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return c.flushLocked()
}

// Delete removes key and rewrites the cache file.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return c.flushLocked()
}

func (c *Cache) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

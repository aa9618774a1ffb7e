package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileSuffix = ".json"

// FileCache keeps one JSON file per key. Writes go through a temp file and a
// rename, so concurrent readers only ever see complete entries.
type FileCache struct {
	dir  string
	opts Options
}

func NewFileCache(dir string, opts Options) (*FileCache, error) {
	if dir == "" {
		dir = "./.cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, opts: opts.normalize()}, nil
}

func (c *FileCache) Get(_ context.Context, key string) (string, bool) {
	path, ok := c.path(key)
	if !ok {
		return "", false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.opts.Logger.Warn("llm_cache_read_failed", "key", key, "error", err)
		}
		return "", false
	}

	storedAt, payload, err := decodeEntry(raw)
	if err != nil {
		c.opts.Logger.Warn("llm_cache_entry_malformed", "key", key, "error", err)
		c.remove(path)
		return "", false
	}
	if c.opts.expired(storedAt) {
		c.opts.Logger.Debug("llm_cache_entry_expired", "key", key)
		c.remove(path)
		return "", false
	}
	return payload, true
}

func (c *FileCache) Set(_ context.Context, key, payload string) error {
	path, ok := c.path(key)
	if !ok {
		return fmt.Errorf("invalid cache key %q", key)
	}

	data, err := encodeEntry(c.opts.Now(), payload)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit cache file: %w", err)
	}
	return nil
}

// Prune removes expired and unreadable entries.
func (c *FileCache) Prune(_ context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}

	removed := 0
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileSuffix) {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			c.remove(path)
			removed++
			continue
		}
		storedAt, _, err := decodeEntry(raw)
		if err != nil || c.opts.expired(storedAt) {
			c.remove(path)
			removed++
		}
	}
	c.opts.Logger.Info("llm_cache_pruned", "backend", "file", "removed", removed)
	return nil
}

func (c *FileCache) Clear(_ context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !(strings.HasSuffix(name, fileSuffix) || strings.HasSuffix(name, ".tmp")) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cache file: %w", err)
		}
	}
	return nil
}

func (c *FileCache) path(key string) (string, bool) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", false
	}
	return filepath.Join(c.dir, key+fileSuffix), true
}

func (c *FileCache) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.opts.Logger.Warn("llm_cache_remove_failed", "path", path, "error", err)
	}
}

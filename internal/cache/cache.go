// Package cache implements the file-backed response cache shared by the
// geocoding and weather resolvers. Entries are addressed by an MD5 hash of a
// normalized key and judged fresh lazily, at read time, from file mtime.
package cache

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no cache file exists at the given path.
	ErrNotFound = errors.New("cache entry not found")
	// ErrCorrupt is returned when a cache file exists but does not hold
	// valid JSON. Callers treat it as a miss, never as a fatal error.
	ErrCorrupt = errors.New("cache entry corrupt")
)

// NormalizeKey canonicalizes a raw lookup key: ASCII letters are lowercased,
// runs of space/tab/plus/underscore collapse into a single underscore, and
// leading/trailing underscores are trimmed. The function is idempotent, so
// "Stockholm", "stockholm " and "Stockholm_Sweden"'s city token all map to
// the same key.
func NormalizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	prevSep := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '+' || c == '_':
			if b.Len() == 0 || prevSep {
				continue
			}
			b.WriteByte('_')
			prevSep = true
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c - 'A' + 'a')
			prevSep = false
		default:
			b.WriteByte(c)
			prevSep = false
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}

// Store reads and writes JSON payloads under a single cache directory.
type Store struct {
	dir string
}

// New creates the cache directory (recursively, idempotent) and returns a
// Store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory the store was created with.
func (s *Store) Dir() string {
	return s.dir
}

// Path maps a normalized key to its on-disk address. Same key, same path.
// MD5 is used for collision avoidance in filenames, not for security.
func (s *Store) Path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

// Fresh reports whether the file at path exists and was written within ttl.
// Freshness is a read-time judgment; nothing sweeps expired entries.
func (s *Store) Fresh(path string, ttl time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= ttl
}

// Load reads the payload at path. A missing file yields ErrNotFound; a file
// that is not valid JSON yields ErrCorrupt.
func (s *Store) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, ErrCorrupt
	}
	return data, nil
}

// Save validates that payload is well-formed JSON, pretty-prints it and
// writes it to path, overwriting any previous entry. The write goes through
// a temp file plus rename so a concurrent reader never observes a
// half-written entry.
func (s *Store) Save(path string, payload []byte) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		return fmt.Errorf("refusing to cache invalid JSON: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(pretty.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache file %s: %w", path, err)
	}
	return nil
}

// Clear removes every cache entry in the directory. Not selective.
func (s *Store) Clear() error {
	// ".cache-*" catches temp files orphaned by an interrupted Save.
	for _, pattern := range []string{"*.json", ".cache-*"} {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return fmt.Errorf("list cache files: %w", err)
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove cache file %s: %w", m, err)
			}
		}
	}
	return nil
}

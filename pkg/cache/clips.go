// Package cache stores synthesized announcement clips on disk, one file per key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"draftreveal/pkg/tracker"
	"draftreveal/pkg/tts"
)

const lockFile = ".draftreveal.lock"

// ErrLocked is returned by Lock when another process holds the cache.
var ErrLocked = errors.New("cache directory is in use by another run")

// SynthesisError reports that a clip could not be produced. No entry is
// left behind for Key.
type SynthesisError struct {
	Key Key
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize %s: %v", e.Key, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Entry describes one cached clip.
type Entry struct {
	Key  Key
	Path string
	Size int64
}

// Clips is a file-backed clip cache. A hit is any regular file at the
// key's path; writes land there only by rename.
type Clips struct {
	dir      string
	provider tts.Provider
	voice    string
	tracker  *tracker.Tracker

	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a cache rooted at dir. provider may be nil for read-only use
// (listing, reset); Ensure then fails on every miss.
func New(dir string, provider tts.Provider, voice string, t *tracker.Tracker) *Clips {
	return &Clips{
		dir:      dir,
		provider: provider,
		voice:    voice,
		tracker:  t,
		lock:     flock.New(filepath.Join(dir, lockFile)),
	}
}

// Dir returns the cache root.
func (c *Clips) Dir() string { return c.dir }

// Path returns where the clip for k lives, whether or not it exists.
func (c *Clips) Path(k Key) string {
	return filepath.Join(c.dir, k.FileName())
}

// Exists reports whether k is cached.
func (c *Clips) Exists(k Key) bool {
	info, err := os.Stat(c.Path(k))
	return err == nil && info.Mode().IsRegular()
}

// Ensure returns the path of the clip for k, synthesizing text on a miss.
func (c *Clips) Ensure(ctx context.Context, k Key, text string) (string, error) {
	if !k.Valid() {
		return "", fmt.Errorf("invalid clip key %q", k)
	}
	if k == KeyInterlude {
		return "", &SynthesisError{Key: k, Err: errors.New("interlude is a fixed asset")}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.Path(k)
	if c.Exists(k) {
		c.tracker.TrackCacheHit(tracker.ComponentClips)
		slog.Debug("Clips: cache hit", "key", k)
		return path, nil
	}
	c.tracker.TrackCacheMiss(tracker.ComponentClips)

	if c.provider == nil {
		return "", &SynthesisError{Key: k, Err: errors.New("no synthesis provider configured")}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &SynthesisError{Key: k, Err: err}
	}

	tmp := path + partExt
	if err := c.provider.Synthesize(ctx, text, c.voice, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", &SynthesisError{Key: k, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &SynthesisError{Key: k, Err: fmt.Errorf("commit clip: %w", err)}
	}

	slog.Debug("Clips: stored", "key", k, "path", path)
	return path, nil
}

// Reset deletes every cached clip whose key is not preserved, together with
// any leftover partial writes. KeyInterlude is always preserved. Files that
// do not map to a key are left alone.
func (c *Clips) Reset(preserve ...Key) error {
	keep := map[Key]bool{KeyInterlude: true}
	for _, k := range preserve {
		keep[k] = true
	}

	var errs []error
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.dir, path)
		if err != nil {
			return err
		}

		if !strings.HasSuffix(rel, partExt) {
			k, ok := ParseKey(rel)
			if !ok || keep[k] {
				return nil
			}
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	slog.Info("Clips: reset", "dir", c.dir, "removed", removed)
	if len(errs) > 0 {
		return fmt.Errorf("reset clip cache: %w", errors.Join(errs...))
	}
	return nil
}

// List returns the cached clips ordered intro, interlude, then by pick.
func (c *Clips) List() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(c.dir, path)
		if err != nil {
			return err
		}
		k, ok := ParseKey(rel)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Key: k, Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list clip cache: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return rank(entries[i].Key) < rank(entries[j].Key)
	})
	return entries, nil
}

func rank(k Key) int {
	switch k {
	case KeyIntro:
		return -2
	case KeyInterlude:
		return -1
	}
	n, _ := k.Pick()
	return n
}

// Lock takes an exclusive, non-blocking lock on the cache directory.
func (c *Clips) Lock() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	ok, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (c *Clips) Unlock() error {
	return c.lock.Unlock()
}

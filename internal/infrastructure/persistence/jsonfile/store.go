// Package jsonfile provides a profile store backed by a single JSON
// document on disk. Writes replace the file atomically; an fsnotify
// watcher surfaces changes made by other processes sharing the profile.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/featgate/internal/logging"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Store persists string values keyed by string in one JSON file.
// Safe for concurrent use within a process; cross-process writers are
// reconciled through Watch.
type Store struct {
	path string

	mu sync.Mutex
	// seen holds the last value observed per key, written or read, so the
	// watcher can skip this process's own writes and unchanged events.
	seen map[string]string
}

// NewStore creates a store over path. The file is created on first Set.
func NewStore(path string) *Store {
	return &Store{path: path, seen: make(map[string]string)}
}

// Path returns the backing file location, for user-facing messages.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := doc[key]
	if ok {
		s.seen[key] = value
	}
	return value, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked(ctx)
	if err != nil {
		return err
	}
	doc[key] = value

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	// Write-then-rename so concurrent readers never see a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, filePerm); err != nil {
		return fmt.Errorf("write profile file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace profile file: %w", err)
	}

	s.seen[key] = value
	return nil
}

// Watch observes the backing file and invokes fn whenever the value
// under key differs from the last one this process saw. Returns a stop
// function releasing the watcher.
func (s *Store) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create profile watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	// Watch the directory: atomic renames replace the file inode, so a
	// watch on the file itself would go stale after the first write.
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch profile directory: %w", err)
	}

	log := logging.FromContext(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if s.keyChanged(ctx, key) {
					fn()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(werr).Str("path", s.path).Msg("profile watcher error")
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() { _ = watcher.Close() })
	}
	return stop, nil
}

// keyChanged re-reads the file and reports whether key now holds a value
// this process has not seen, recording it as seen either way.
func (s *Store) keyChanged(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked(ctx)
	if err != nil {
		return false
	}
	value := doc[key]
	if s.seen[key] == value {
		return false
	}
	s.seen[key] = value
	return true
}

// readLocked loads the whole document. A missing or unreadable file
// loads as empty. Caller holds the lock.
func (s *Store) readLocked(ctx context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	doc := make(map[string]string)
	if err := json.Unmarshal(raw, &doc); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("path", s.path).Msg("profile file corrupt, starting empty")
		return make(map[string]string), nil
	}
	return doc, nil
}

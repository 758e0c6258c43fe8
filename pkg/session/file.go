package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const recordExt = ".json"

// FileStore keeps one JSON file per session under a directory, so an
// explore or serve process can pick up where a previous one stopped.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens dir, creating it when missing. An empty dir selects
// ~/.config/orgtower/sessions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home: %w", err)
		}
		dir = filepath.Join(home, ".config", "orgtower", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("prepare %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// recordPath strips any directory part from id so callers cannot address
// files outside the store.
func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+recordExt)
}

// readRecord returns (nil, nil) for a missing file.
func readRecord(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := new(Record)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.recordPath(id)
	rec, err := readRecord(path)
	switch {
	case err != nil:
		return nil, err
	case rec == nil:
		return nil, nil
	case rec.IsExpired():
		_ = os.Remove(path)
		return nil, nil
	}
	return rec, nil
}

// Set replaces the record atomically: a crash mid-write leaves the old file.
func (s *FileStore) Set(_ context.Context, rec *Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".rec-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.recordPath(rec.ID))
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup drops expired records. Files it cannot decode are left alone.
func (s *FileStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), recordExt) {
			return nil
		}
		rec, rerr := readRecord(path)
		if rerr == nil && rec != nil && now.After(rec.ExpiresAt) {
			_ = os.Remove(path)
		}
		return nil
	})
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

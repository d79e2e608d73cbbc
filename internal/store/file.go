package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"SketchBoard/internal/persist"
)

// FileStore keeps one JSON file per user in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore creates dir if needed. A leading "~" expands to the home directory.
func NewFileStore(dir string) (*FileStore, error) {
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", dir, err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(userID string) string {
	return filepath.Join(f.dir, url.PathEscape(userID)+".json")
}

func (f *FileStore) Upsert(ctx context.Context, userID string, snap persist.Snapshot) (bool, error) {
	if userID == "" {
		return false, ErrNoUser
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now().UTC()
	rec, err := f.read(userID)
	created := errors.Is(err, persist.ErrNotFound)
	switch {
	case created:
		rec = Record{UserID: userID, CreatedAt: now}
	case err != nil:
		return false, err
	default:
		logOverwrite(userID, rec.Snapshot, snap)
	}
	rec.Snapshot = snap
	rec.UpdatedAt = now

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode record: %w", err)
	}
	// readers only ever see a complete record
	tmp, err := os.CreateTemp(f.dir, ".save-*")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(userID)); err != nil {
		os.Remove(tmp.Name())
		return false, fmt.Errorf("store record: %w", err)
	}
	log.Printf("[STORE] Wrote %s (%d bytes)", f.path(userID), len(data))
	return created, nil
}

func (f *FileStore) Get(ctx context.Context, userID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(userID)
}

func (f *FileStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(userID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete drawing: %w", err)
	}
	return nil
}

func (f *FileStore) read(userID string) (Record, error) {
	data, err := os.ReadFile(f.path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, persist.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read drawing: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", persist.ErrMalformed, f.path(userID), err)
	}
	return rec, nil
}

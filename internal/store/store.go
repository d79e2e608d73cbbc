// Package store keeps one drawing per user on the server side.
package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"SketchBoard/internal/persist"
)

// Record is a stored drawing plus bookkeeping.
type Record struct {
	UserID    string           `json:"userId"`
	Snapshot  persist.Snapshot `json:"snapshot"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// DocumentStore is the storage behind the drawing server.
type DocumentStore interface {
	// Upsert creates the user's drawing or overwrites it, reporting which.
	Upsert(ctx context.Context, userID string, snap persist.Snapshot) (created bool, err error)
	// Get returns persist.ErrNotFound when the user has no drawing.
	Get(ctx context.Context, userID string) (Record, error)
	// Delete is a no-op for unknown users.
	Delete(ctx context.Context, userID string) error
}

var ErrNoUser = errors.New("missing user id")

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	writes  int
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) Upsert(ctx context.Context, userID string, snap persist.Snapshot) (bool, error) {
	if userID == "" {
		return false, ErrNoUser
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	rec, exists := m.records[userID]
	if exists {
		logOverwrite(userID, rec.Snapshot, snap)
	} else {
		rec = Record{UserID: userID, CreatedAt: now}
	}
	rec.Snapshot = snap
	rec.UpdatedAt = now
	m.records[userID] = rec
	m.writes++
	return !exists, nil
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[userID]
	if !ok {
		return Record{}, persist.ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[userID]; ok {
		delete(m.records, userID)
		log.Printf("[STORE] Deleted drawing of %s", userID)
	}
	return nil
}

// WriteCount returns the number of upserts processed.
func (m *MemoryStore) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// logOverwrite records last-write-wins overwrites that arrived out of order
// from the same site. The write still goes through.
func logOverwrite(userID string, prev, next persist.Snapshot) {
	if prev.Site != "" && prev.Site == next.Site && next.Revision < prev.Revision {
		log.Printf("[STORE] Out-of-order save for %s from site %s: rev %d overwrites rev %d",
			userID, next.Site, next.Revision, prev.Revision)
		return
	}
	log.Printf("[STORE] Overwriting drawing of %s (rev %d)", userID, next.Revision)
}

// Local adapts a DocumentStore to persist.RemoteStore for in-process use.
type Local struct {
	Store DocumentStore
}

func (l Local) Save(ctx context.Context, userID string, snap persist.Snapshot) error {
	_, err := l.Store.Upsert(ctx, userID, snap)
	return err
}

func (l Local) Load(ctx context.Context, userID string) (persist.Snapshot, error) {
	rec, err := l.Store.Get(ctx, userID)
	if err != nil {
		return persist.Snapshot{}, err
	}
	return rec.Snapshot, nil
}

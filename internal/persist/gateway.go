package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"SketchBoard/internal/state"
)

// ErrNotFound is returned by RemoteStore.Load when the user has never saved.
var ErrNotFound = errors.New("drawing not found")

// Snapshot is one saved drawing as it travels to and from the store.
// Site and Revision identify the writer so the store can log saves that
// overtake each other; the store itself is last-write-wins.
type Snapshot struct {
	Drawing   Blob         `json:"drawing"`
	TextItems []TextRecord `json:"textItems"`
	Site      string       `json:"site,omitempty"`
	Revision  uint64       `json:"revision,omitempty"`
	SavedAt   time.Time    `json:"savedAt"`
}

// RemoteStore is the request/response contract of the drawing store.
// Save upserts: the first save creates the user's drawing, later ones
// overwrite it.
type RemoteStore interface {
	Save(ctx context.Context, userID string, snap Snapshot) error
	Load(ctx context.Context, userID string) (Snapshot, error)
}

// Gateway serializes documents for a RemoteStore.
type Gateway struct {
	store RemoteStore
	newID func() string
}

func NewGateway(store RemoteStore) *Gateway {
	return &Gateway{store: store, newID: state.NewID}
}

// Save serializes doc and hands it to the store. No retry.
func (g *Gateway) Save(ctx context.Context, userID string, doc state.Document) error {
	blob, texts, err := Serialize(doc)
	if err != nil {
		return err
	}
	snap := Snapshot{
		Drawing:   blob,
		TextItems: texts,
		Site:      state.SiteID(),
		Revision:  state.NextRevision(),
		SavedAt:   time.Now().UTC(),
	}
	if err := g.store.Save(ctx, userID, snap); err != nil {
		return fmt.Errorf("save drawing for %s: %w", userID, err)
	}
	log.Printf("[PERSIST] Saved %d elements and %d text items for %s (rev %d)",
		len(doc.Elements), len(doc.TextItems), userID, snap.Revision)
	return nil
}

// Load fetches and decodes the user's drawing. found is false, with a nil
// error, when nothing was saved yet.
func (g *Gateway) Load(ctx context.Context, userID string) (doc state.Document, found bool, err error) {
	snap, err := g.store.Load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return state.Document{}, false, nil
	}
	if err != nil {
		return state.Document{}, false, fmt.Errorf("load drawing for %s: %w", userID, err)
	}
	doc, err = Deserialize(snap.Drawing, snap.TextItems, g.newID)
	if err != nil {
		return state.Document{}, false, err
	}
	return doc, true, nil
}

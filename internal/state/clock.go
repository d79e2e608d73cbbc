package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	siteID   = uuid.NewString()
	revision uint64
)

// NewID returns a fresh entity identity.
func NewID() string {
	return uuid.NewString()
}

// SiteID identifies this process when it writes to the store.
func SiteID() string { return siteID }

// NextRevision is a per-process counter stamped on every save so the store
// can tell when two saves from one site arrive out of order.
func NextRevision() uint64 {
	return atomic.AddUint64(&revision, 1)
}

// Package store defines the document store the draft core runs against:
// versioned documents with compare-and-swap writes, child collections, and
// a change-notification stream. Optimistic concurrency on the draft summary
// document is the core's only mutual-exclusion mechanism, so every
// implementation must guarantee that Put with a stale version fails.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists under a key.
	ErrNotFound = errors.New("store: document not found")
	// ErrVersionConflict is returned when a Put loses a compare-and-swap
	// race, or when a create (expected version 0) hits an existing key.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Document is a stored value together with its concurrency version.
type Document struct {
	Key     string
	Data    []byte
	Version int64
}

// Store is a transactional key-value document store.
type Store interface {
	// Get returns the document at key, or ErrNotFound.
	Get(ctx context.Context, key string) (Document, error)

	// Put writes data at key if the stored version still equals
	// expectedVersion and returns the new version. expectedVersion 0
	// creates the document and fails if the key already exists.
	Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)

	// Append creates a new child document under parentKey and returns its
	// key. Children are regular documents: they can be read and updated
	// through Get/Put like any other.
	Append(ctx context.Context, parentKey string, data []byte) (string, error)

	// List returns all children of parentKey in insertion order.
	List(ctx context.Context, parentKey string) ([]Document, error)

	// Subscribe streams documents whose key starts with keyPrefix as they
	// are written, until ctx is cancelled. Delivery is best-effort; slow
	// consumers may miss intermediate versions but always converge on the
	// last committed write.
	Subscribe(ctx context.Context, keyPrefix string) (<-chan Document, error)
}

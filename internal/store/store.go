package store

import (
	"context"
	"errors"
	"sync"
)

// ErrCollectionNotFound is returned when upserting into or querying a
// collection that was never created or has been deleted.
var ErrCollectionNotFound = errors.New("collection not found")

// Record is one embedded chunk as stored in a collection. The ID is
// derived deterministically from (document, page, paragraph), so
// re-ingesting a file overwrites rather than duplicates.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Result is one similarity match, highest score first.
type Result struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float32
}

// Store holds one embedding-addressable collection per session. Queries
// never cross collection boundaries.
type Store interface {
	Exists(ctx context.Context, collection string) (bool, error)
	// Create is a no-op when the collection already exists.
	Create(ctx context.Context, collection string, dimension int) error
	Upsert(ctx context.Context, collection string, records []Record) error
	// Query returns up to topK matches by cosine similarity. Fewer
	// records than topK is not an error.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Result, error)
	// Delete irreversibly removes the collection and all its records.
	// Deleting a missing collection is a no-op.
	Delete(ctx context.Context, collection string) error
}

// collectionLocks serializes Delete against in-flight Query/Upsert on
// the same collection. Readers on different collections never contend.
type collectionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newCollectionLocks() *collectionLocks {
	return &collectionLocks{locks: make(map[string]*sync.RWMutex)}
}

func (l *collectionLocks) get(collection string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[collection]
	if !ok {
		lock = &sync.RWMutex{}
		l.locks[collection] = lock
	}
	return lock
}

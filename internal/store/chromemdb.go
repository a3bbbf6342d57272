package store

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/philippgille/chromem-go"
)

const compress = false

// ChromemStore backs collections with an embedded chromem-go database,
// either in-memory or persisted under dbPath. chromem similarity is
// cosine over normalized vectors.
type ChromemStore struct {
	db    *chromem.DB
	locks *collectionLocks
}

var _ Store = (*ChromemStore)(nil)

func NewChromemStore(dbPath string, inMemory bool) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	return &ChromemStore{db: db, locks: newCollectionLocks()}, nil
}

func (s *ChromemStore) Exists(ctx context.Context, collection string) (bool, error) {
	return s.db.GetCollection(collection, nil) != nil, nil
}

func (s *ChromemStore) Create(ctx context.Context, collection string, dimension int) error {
	// chromem derives the dimension from the first vector it sees.
	if _, err := s.db.GetOrCreateCollection(collection, nil, nil); err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, collection string, records []Record) error {
	lock := s.locks.get(collection)
	lock.RLock()
	defer lock.RUnlock()

	c := s.db.GetCollection(collection, nil)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Content,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
		}
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Result, error) {
	lock := s.locks.get(collection)
	lock.RLock()
	defer lock.RUnlock()

	c := s.db.GetCollection(collection, nil)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	// chromem rejects nResults greater than the collection size.
	if count := c.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	matches, err := c.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			ID:       m.ID,
			Content:  m.Content,
			Metadata: m.Metadata,
			Score:    m.Similarity,
		}
	}
	// chromem's ordering is arbitrary for equal similarities; break
	// ties by id so repeated queries rank the same way.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (s *ChromemStore) Delete(ctx context.Context, collection string) error {
	lock := s.locks.get(collection)
	lock.Lock()
	defer lock.Unlock()

	if s.db.GetCollection(collection, nil) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(collection); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}

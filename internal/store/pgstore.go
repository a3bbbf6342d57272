package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// ChunkRow is one embedded chunk in the hosted backend. All collections
// share the table; the collection column scopes every query. The table
// is created by Init, not from this model, because the vector column
// dimension comes from config.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ChunkID    string          `bun:"chunk_id,pk"`
	Collection string          `bun:"collection,notnull"`
	DocID      string          `bun:"doc_id,notnull"`
	DocName    string          `bun:"doc_name,notnull"`
	Page       int             `bun:"page,notnull"`
	Para       int             `bun:"para,notnull"`
	Content    string          `bun:"content,notnull"`
	Embedding  pgvector.Vector `bun:"embedding,notnull"`

	Seq   int64   `bun:"seq,scanonly"`
	Score float32 `bun:"score,scanonly"`
}

type CollectionRow struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	Name      string `bun:"name,pk"`
	Dimension int    `bun:"dimension,notnull"`
}

// PGStore backs collections with Postgres + pgvector, for deployments
// where the index outlives the process. Requires the vector extension.
// All collections share one chunks table, so every collection uses the
// store's configured embedding dimension.
type PGStore struct {
	db        *bun.DB
	dimension int
	locks     *collectionLocks
}

var _ Store = (*PGStore)(nil)

func NewPGStore(dsn string, dimension int, debug bool) (*PGStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PGStore{db: db, dimension: dimension, locks: newCollectionLocks()}, nil
}

// chunksTableDDL sizes the vector column from config. seq records
// first-insertion order; conflict updates leave it alone, so equal
// distances resolve to the oldest chunk first.
func chunksTableDDL(dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
	chunk_id TEXT PRIMARY KEY,
	seq BIGSERIAL,
	collection TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	doc_name TEXT NOT NULL,
	page INTEGER NOT NULL,
	para INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding vector(%d) NOT NULL
)`, dimension)
}

func (s *PGStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*CollectionRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, chunksTableDDL(s.dimension)); err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}
	return nil
}

func (s *PGStore) Close() error {
	return s.db.Close()
}

func (s *PGStore) Exists(ctx context.Context, collection string) (bool, error) {
	return s.db.NewSelect().
		Model((*CollectionRow)(nil)).
		Where("name = ?", collection).
		Exists(ctx)
}

func (s *PGStore) Create(ctx context.Context, collection string, dimension int) error {
	if dimension != s.dimension {
		return fmt.Errorf("collection dimension %d does not match store dimension %d", dimension, s.dimension)
	}
	row := &CollectionRow{Name: collection, Dimension: dimension}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *PGStore) Upsert(ctx context.Context, collection string, records []Record) error {
	lock := s.locks.get(collection)
	lock.RLock()
	defer lock.RUnlock()

	exists, err := s.Exists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	rows := make([]ChunkRow, len(records))
	for i, rec := range records {
		page, _ := strconv.Atoi(rec.Metadata["page"])
		para, _ := strconv.Atoi(rec.Metadata["para"])
		rows[i] = ChunkRow{
			ChunkID:    rec.ID,
			Collection: collection,
			DocID:      rec.Metadata["doc_id"],
			DocName:    rec.Metadata["doc_name"],
			Page:       page,
			Para:       para,
			Content:    rec.Content,
			Embedding:  pgvector.NewVector(rec.Embedding),
		}
	}

	// Single statement, so a failed upload commits nothing.
	_, err = s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (chunk_id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("embedding = EXCLUDED.embedding").
		Set("doc_name = EXCLUDED.doc_name").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

func (s *PGStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Result, error) {
	lock := s.locks.get(collection)
	lock.RLock()
	defer lock.RUnlock()

	exists, err := s.Exists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	vec := pgvector.NewVector(embedding)
	var rows []ChunkRow
	err = s.db.NewSelect().
		Model(&rows).
		ColumnExpr("c.*").
		ColumnExpr("1 - (embedding <=> ?) AS score", vec).
		Where("collection = ?", collection).
		OrderExpr("embedding <=> ?", vec).
		// Equal distances keep insertion order.
		OrderExpr("seq").
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{
			ID:      row.ChunkID,
			Content: row.Content,
			Metadata: map[string]string{
				"doc_id":   row.DocID,
				"doc_name": row.DocName,
				"page":     strconv.Itoa(row.Page),
				"para":     strconv.Itoa(row.Para),
			},
			Score: row.Score,
		}
	}
	return results, nil
}

func (s *PGStore) Delete(ctx context.Context, collection string) error {
	lock := s.locks.get(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ChunkRow)(nil)).
			Where("collection = ?", collection).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete chunks: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*CollectionRow)(nil)).
			Where("name = ?", collection).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
		return nil
	})
}

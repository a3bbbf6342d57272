package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"document-themes/internal/embedding"
	"document-themes/internal/models"
	"document-themes/internal/store"
)

// Engine embeds a query and turns similarity matches into
// citation-ready records. No re-ranking beyond the store's order.
type Engine struct {
	store    store.Store
	embedder embedding.Embedder
}

func NewEngine(s store.Store, e embedding.Embedder) *Engine {
	return &Engine{store: s, embedder: e}
}

// Retrieve returns up to topK candidate chunks for the query. A missing
// collection yields an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, query, collection string, topK int) ([]models.CitationRecord, error) {
	vec, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := e.store.Query(ctx, collection, vec, topK)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	records := make([]models.CitationRecord, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		para, _ := strconv.Atoi(r.Metadata["para"])
		records = append(records, models.CitationRecord{
			DocID:   r.Metadata["doc_id"],
			DocName: r.Metadata["doc_name"],
			Page:    page,
			Para:    para,
			Text:    r.Content,
			Score:   r.Score,
		})
	}
	return records, nil
}

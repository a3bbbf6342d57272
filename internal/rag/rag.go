package rag

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"document-themes/internal/answers"
	"document-themes/internal/config"
	"document-themes/internal/embedding"
	"document-themes/internal/extractor"
	"document-themes/internal/helper"
	"document-themes/internal/llm"
	"document-themes/internal/models"
	"document-themes/internal/retrieval"
	"document-themes/internal/store"
	"document-themes/internal/themes"
)

const defaultTemperature = 0.2

// Pipeline wires the retrieval-and-citation stages together. Each
// upload or query is one sequential unit of work; the store is the only
// shared state between requests.
type Pipeline struct {
	store     store.Store
	embedder  embedding.Embedder
	extractor *extractor.Extractor
	retriever *retrieval.Engine
	answerer  *answers.Extractor
	themer    *themes.Synthesizer
	cfg       *config.Config
}

func NewPipeline(s store.Store, e embedding.Embedder, client llm.Client, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:     s,
		embedder:  e,
		extractor: extractor.New(),
		retriever: retrieval.NewEngine(s, e),
		answerer:  answers.NewExtractor(client, defaultTemperature),
		themer:    themes.NewSynthesizer(client, defaultTemperature),
		cfg:       cfg,
	}
}

// IndexName maps a session to its collection. One collection per
// session; queries never cross that boundary.
func (p *Pipeline) IndexName(sessionID string) string {
	return p.cfg.Store.IndexPrefix + sessionID
}

type UploadResult struct {
	SessionID string
	Index     string
	NChunks   int
}

// Upload extracts, embeds and indexes one file. All chunks are embedded
// before anything is upserted, so a failed upload commits nothing.
func (p *Pipeline) Upload(ctx context.Context, filePath, fileName, sessionID string) (*UploadResult, error) {
	index := p.IndexName(sessionID)

	exists, err := p.store.Exists(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := p.store.Create(ctx, index, p.cfg.RAG.VectorSize); err != nil {
			return nil, err
		}
	}

	chunks, err := p.extractor.Extract(filePath, filepath.Ext(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", fileName, err)
	}

	docID := helper.DocumentID(sessionID, fileName)
	records := make([]store.Record, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := p.embedder.EmbedQuery(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed page %d para %d: %w", chunk.Page, chunk.Para, err)
		}
		records = append(records, store.Record{
			ID:        fmt.Sprintf("%s_p%d_para%d", docID, chunk.Page, chunk.Para),
			Content:   chunk.Text,
			Embedding: vec,
			Metadata: map[string]string{
				"doc_id":   docID,
				"doc_name": fileName,
				"page":     strconv.Itoa(chunk.Page),
				"para":     strconv.Itoa(chunk.Para),
			},
		})
	}

	if len(records) > 0 {
		if err := p.store.Upsert(ctx, index, records); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", fileName, err)
		}
	}

	log.Info().Str("file", fileName).Str("index", index).Int("n_chunks", len(chunks)).
		Msg("Indexed document")

	return &UploadResult{SessionID: sessionID, Index: index, NChunks: len(chunks)}, nil
}

// Query runs retrieve -> answer -> dedupe -> synthesize. It is best
// effort by design: retrieval failures degrade to an empty answer list
// and the insufficient-context theme instead of an error.
func (p *Pipeline) Query(ctx context.Context, userQuery, sessionID string) *models.QueryResponse {
	index := p.IndexName(sessionID)

	candidates, err := p.retriever.Retrieve(ctx, userQuery, index, p.cfg.RAG.TopK)
	if err != nil {
		log.Error().Err(err).Str("index", index).Msg("Retrieval failed")
		candidates = nil
	}

	records := p.answerer.Extract(ctx, userQuery, candidates)
	records = answers.Dedupe(records)
	themeText := p.themer.Synthesize(ctx, userQuery, records)

	if records == nil {
		records = []models.AnswerRecord{}
	}
	return &models.QueryResponse{Answers: records, Themes: themeText}
}

// Delete irreversibly removes the session's collection. A missing
// collection is a no-op.
func (p *Pipeline) Delete(ctx context.Context, sessionID string) (string, error) {
	index := p.IndexName(sessionID)
	if err := p.store.Delete(ctx, index); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return fmt.Sprintf("Index %s deleted.", index), nil
		}
		return "", fmt.Errorf("failed to delete index %s: %w", index, err)
	}
	return fmt.Sprintf("Index %s deleted.", index), nil
}

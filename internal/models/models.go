package models

import "fmt"

// Chunk is the atomic retrievable unit produced by extraction.
// Page and Para are 1-based; Para restarts at 1 on every page.
type Chunk struct {
	Page int
	Para int
	Text string
}

// CitationRecord carries a retrieved chunk together with the locator
// needed to cite it. It is passed unchanged through answer extraction
// and deduplication.
type CitationRecord struct {
	DocID   string
	DocName string
	Page    int
	Para    int
	Text    string
	Score   float32
}

// Citation renders the human-readable locator for this record.
func (c CitationRecord) Citation() string {
	return fmt.Sprintf("Page %d, Para %d", c.Page, c.Para)
}

// AnswerRecord is one per-chunk answer. Created per query, never persisted.
type AnswerRecord struct {
	DocID    string `json:"doc_id"`
	DocName  string `json:"doc_name"`
	Answer   string `json:"answer"`
	Citation string `json:"citation"`
}

type UploadResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Index     string `json:"index,omitempty"`
	NChunks   int    `json:"n_chunks"`
	Error     string `json:"error,omitempty"`
}

type QueryResponse struct {
	Answers []AnswerRecord `json:"answers"`
	Themes  string         `json:"themes"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

package answers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"document-themes/internal/llm"
	"document-themes/internal/models"
)

// Extractor asks the model for a concise, citation-qualified answer per
// candidate chunk, filtering out non-answers.
type Extractor struct {
	llm         llm.Client
	temperature float64
}

func NewExtractor(client llm.Client, temperature float64) *Extractor {
	return &Extractor{llm: client, temperature: temperature}
}

// Extract processes candidates in order. A failed model call or a
// non-informative response drops that chunk; the rest still go through.
func (x *Extractor) Extract(ctx context.Context, query string, candidates []models.CitationRecord) []models.AnswerRecord {
	var records []models.AnswerRecord
	for _, c := range candidates {
		prompt := fmt.Sprintf(models.AnswerPromptTemplate, c.DocName, c.Page, c.Para, c.Text, query)
		answer, err := x.llm.Generate(ctx, prompt, x.temperature)
		if err != nil {
			log.Warn().Err(err).Str("doc", c.DocName).Int("page", c.Page).Int("para", c.Para).
				Msg("Model call failed, skipping chunk")
			continue
		}
		if isNonAnswer(answer) {
			log.Debug().Str("doc", c.DocName).Int("page", c.Page).Int("para", c.Para).
				Msg("Non-informative answer, skipping chunk")
			continue
		}
		records = append(records, models.AnswerRecord{
			DocID:    c.DocID,
			DocName:  c.DocName,
			Answer:   answer,
			Citation: c.Citation(),
		})
	}
	return records
}

func isNonAnswer(answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return true
	}
	lower := strings.ToLower(answer)
	for _, phrase := range models.NegativeSignals {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Dedupe collapses answers that are textually identical within the same
// document. First occurrence wins, relative order is preserved.
func Dedupe(records []models.AnswerRecord) []models.AnswerRecord {
	type key struct {
		doc    string
		answer string
	}

	seen := make(map[key]struct{}, len(records))
	deduped := make([]models.AnswerRecord, 0, len(records))
	for _, rec := range records {
		doc := rec.DocName
		if doc == "" {
			doc = rec.DocID
		}
		k := key{doc: doc, answer: strings.ToLower(strings.TrimSpace(rec.Answer))}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, rec)
	}
	return deduped
}

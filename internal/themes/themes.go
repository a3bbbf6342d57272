package themes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"document-themes/internal/llm"
	"document-themes/internal/models"
)

// Synthesizer aggregates deduplicated per-document answers into 1-4
// thematic summaries with supporting citations.
type Synthesizer struct {
	llm         llm.Client
	temperature float64
}

func NewSynthesizer(client llm.Client, temperature float64) *Synthesizer {
	return &Synthesizer{llm: client, temperature: temperature}
}

// Synthesize returns the theme text for the given answers. With no
// answers the fixed insufficient-context message is returned without a
// model call. A failed model call yields an error message as the theme
// text; it never fails the query.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, records []models.AnswerRecord) string {
	if len(records) == 0 {
		return models.NoContextMessage
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = fmt.Sprintf("Document %s (%s): %s", rec.DocName, rec.Citation, rec.Answer)
	}

	prompt := fmt.Sprintf(models.ThemePromptTemplate, query, strings.Join(lines, "\n"))
	response, err := s.llm.Generate(ctx, prompt, s.temperature)
	if err != nil {
		log.Warn().Err(err).Msg("Theme synthesis model call failed")
		return fmt.Sprintf("Theme synthesis failed: %v", err)
	}
	return response
}

package extractor

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"document-themes/internal/models"
)

var (
	slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	drawTextRe  = regexp.MustCompile(`(?s)<a:t[^>]*>(.*?)</a:t>`)
)

// extractPPTX reads the slide XML parts out of the package zip. Each
// slide is a page, in slide order rather than zip entry order; a slide
// that cannot be read is logged and skipped.
func (e *Extractor) extractPPTX(filePath string) ([]models.Chunk, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PPTX: %w", err)
	}
	defer zr.Close()

	type slide struct {
		num int
		xml string
	}
	var slides []slide
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			log.Warn().Err(err).Str("slide", f.Name).Msg("Failed to open slide, skipping")
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warn().Err(err).Str("slide", f.Name).Msg("Failed to read slide, skipping")
			continue
		}
		slides = append(slides, slide{num: num, xml: string(data)})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var chunks []models.Chunk
	for _, s := range slides {
		chunks = append(chunks, slideChunks(s.xml, s.num)...)
	}
	return chunks, nil
}

// slideChunks turns each drawing paragraph of one slide into a chunk.
// Paragraph numbering restarts at 1 on every slide, matching the other
// paged formats.
func slideChunks(slideXML string, page int) []models.Chunk {
	var chunks []models.Chunk
	para := 0
	for _, paraXML := range strings.Split(slideXML, "</a:p>") {
		var text strings.Builder
		for _, m := range drawTextRe.FindAllStringSubmatch(paraXML, -1) {
			text.WriteString(m[1])
		}
		block := strings.TrimSpace(text.String())
		if block == "" {
			continue
		}
		para++
		chunks = append(chunks, models.Chunk{Page: page, Para: para, Text: block})
	}
	return chunks
}

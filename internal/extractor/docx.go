package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"document-themes/internal/models"
)

var runTextRe = regexp.MustCompile(`(?s)<w:t[^>]*>(.*?)</w:t>`)

func (e *Extractor) extractDOCX(filePath string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer r.Close()

	return docxChunks(r.Editable().GetContent()), nil
}

// docxChunks walks the document.xml paragraphs in order, accumulating
// text into a page buffer. A paragraph carrying a page-break signal
// flushes the buffer as the current page and starts the next one.
func docxChunks(content string) []models.Chunk {
	var chunks []models.Chunk
	page := 1
	var buf strings.Builder

	flush := func() {
		chunks = append(chunks, paragraphChunks(buf.String(), page)...)
		buf.Reset()
	}

	for _, paraXML := range strings.Split(content, "</w:p>") {
		if hasPageBreak(paraXML) {
			flush()
			page++
		}
		text := strings.TrimSpace(runText(paraXML))
		if text != "" {
			buf.WriteString(text)
			buf.WriteString("\n\n")
		}
	}
	flush()

	return chunks
}

// hasPageBreak reports whether a paragraph carries a manual page-break
// signal. This is the only place that knows the OOXML markup for it.
func hasPageBreak(paraXML string) bool {
	return strings.Contains(paraXML, `w:type="page"`) ||
		strings.Contains(paraXML, "lastRenderedPageBreak")
}

// runText concatenates the <w:t> runs of one paragraph.
func runText(paraXML string) string {
	var text strings.Builder
	for _, m := range runTextRe.FindAllStringSubmatch(paraXML, -1) {
		text.WriteString(m[1])
	}
	return text.String()
}

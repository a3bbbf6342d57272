package extractor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"

	"document-themes/internal/models"
)

// ErrUnsupportedFileType is returned when the file format cannot be
// determined and the OCR fallback also fails.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Extractor converts a raw file into an ordered sequence of
// (page, paragraph, text) chunks. Pages ascend, paragraphs ascend
// within a page and restart at 1 on each page.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the declared extension. A readable file that
// yields no text returns zero chunks without an error; only an unknown
// format that the OCR fallback cannot handle is reported as
// ErrUnsupportedFileType.
func (e *Extractor) Extract(filePath, ext string) ([]models.Chunk, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return e.extractPDF(filePath)
	case ".docx":
		return e.extractDOCX(filePath)
	case ".pptx":
		return e.extractPPTX(filePath)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return e.extractImage(filePath)
	case ".txt", ".text", ".log":
		return e.extractText(filePath)
	case ".md", ".markdown":
		return e.extractMarkdown(filePath)
	case ".xlsx":
		return e.extractXLSX(filePath)
	case ".xlsm", ".ods":
		return e.extractODS(filePath)
	default:
		return e.extractFallback(filePath, ext)
	}
}

// extractPDF walks pages in order. A page whose text extraction fails is
// logged and skipped; the rest of the document still goes through.
func (e *Extractor) extractPDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			log.Warn().Int("page", i).Msg("Null PDF page, skipping")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("Failed to extract PDF page, skipping")
			continue
		}
		chunks = append(chunks, paragraphChunks(pageText, i)...)
	}
	return chunks, nil
}

func (e *Extractor) extractText(filePath string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return paragraphChunks(string(data), 1), nil
}

// extractMarkdown parses with goldmark and emits one paragraph per
// top-level block, so headings and list blocks become separate chunks.
func (e *Extractor) extractMarkdown(filePath string) ([]models.Chunk, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(gtext.NewReader(src))

	var chunks []models.Chunk
	para := 0
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		txt := strings.TrimSpace(string(node.Text(src)))
		if txt == "" {
			continue
		}
		para++
		chunks = append(chunks, models.Chunk{Page: 1, Para: para, Text: txt})
	}
	return chunks, nil
}

// paragraphChunks splits a page's text on blank-line boundaries and
// numbers the surviving paragraphs from 1. Whitespace-only paragraphs
// are discarded and do not consume a paragraph number.
func paragraphChunks(text string, page int) []models.Chunk {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []models.Chunk
	para := 0
	for _, block := range strings.Split(normalized, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		para++
		chunks = append(chunks, models.Chunk{Page: page, Para: para, Text: block})
	}
	return chunks
}

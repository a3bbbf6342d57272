package extractor

import (
	"fmt"

	"code.sajari.com/docconv/v2"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"

	"document-themes/internal/models"
)

// extractImage runs tesseract over the image and treats the result as
// page 1. gosseract links libtesseract directly, so image uploads work
// in a stock build wherever tesseract is installed.
func (e *Extractor) extractImage(filePath string) ([]models.Chunk, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(filePath); err != nil {
		return nil, fmt.Errorf("failed to OCR image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to OCR image: %w", err)
	}
	return paragraphChunks(text, 1), nil
}

// extractFallback handles unknown extensions by letting docconv sniff
// and convert the file. A failed or empty conversion is surfaced as
// ErrUnsupportedFileType so the caller never gets zero chunks silently.
func (e *Extractor) extractFallback(filePath, ext string) ([]models.Chunk, error) {
	res, err := docconv.ConvertPath(filePath)
	if err != nil {
		log.Warn().Err(err).Str("ext", ext).Msg("Fallback conversion failed")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	chunks := paragraphChunks(res.Body, 1)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	return chunks, nil
}

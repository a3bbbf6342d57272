package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "Revenue grew 10%.\n\nCosts fell.\n\n   \n\nOutlook is positive.\n")

	chunks, err := New().Extract(path, ".txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Page != 1 {
			t.Errorf("Chunk %d: expected page 1, got %d", i, chunk.Page)
		}
		if chunk.Para != i+1 {
			t.Errorf("Chunk %d: expected para %d, got %d", i, i+1, chunk.Para)
		}
	}
	if chunks[2].Text != "Outlook is positive." {
		t.Errorf("Unexpected last chunk text: %q", chunks[2].Text)
	}
}

func TestExtractPlainTextCRLF(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "First para.\r\n\r\nSecond para.\r\n")

	chunks, err := New().Extract(path, ".txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
}

func TestExtractEmptyFileYieldsNoChunks(t *testing.T) {
	path := writeTestFile(t, "empty.txt", "   \n\n \t \n")

	chunks, err := New().Extract(path, ".txt")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Expected 0 chunks, got %d", len(chunks))
	}
}

func TestExtractMarkdown(t *testing.T) {
	path := writeTestFile(t, "report.md", "# Quarterly Report\n\nRevenue grew 10%.\n\nCosts fell.\n")

	chunks, err := New().Extract(path, ".md")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "Quarterly Report" {
		t.Errorf("Expected heading text first, got %q", chunks[0].Text)
	}
	for i, chunk := range chunks {
		if chunk.Para != i+1 {
			t.Errorf("Chunk %d: expected para %d, got %d", i, i+1, chunk.Para)
		}
	}
}

func TestExtractUnknownTypeFails(t *testing.T) {
	path := writeTestFile(t, "blob.zzz", "\x00\x01\x02 not really text")

	_, err := New().Extract(path, ".zzz")
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("Expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestParagraphChunks(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		page  int
		want  int
		first string
	}{
		{name: "single paragraph", text: "one block", page: 2, want: 1, first: "one block"},
		{name: "trims whitespace", text: "  padded  \n\nnext", page: 1, want: 2, first: "padded"},
		{name: "skips blank blocks", text: "a\n\n\n\n\t \n\nb", page: 1, want: 2, first: "a"},
		{name: "empty input", text: "", page: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := paragraphChunks(tt.text, tt.page)
			if len(chunks) != tt.want {
				t.Fatalf("Expected %d chunks, got %d", tt.want, len(chunks))
			}
			if tt.want == 0 {
				return
			}
			if chunks[0].Text != tt.first {
				t.Errorf("Expected first chunk %q, got %q", tt.first, chunks[0].Text)
			}
			if chunks[0].Page != tt.page || chunks[0].Para != 1 {
				t.Errorf("Expected page %d para 1, got page %d para %d", tt.page, chunks[0].Page, chunks[0].Para)
			}
		})
	}
}

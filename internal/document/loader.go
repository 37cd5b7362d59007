// Package document loads extracted document text from disk. It deliberately
// handles only plain text: PDF or other format parsing belongs to an external
// extractor whose output (one form feed per page break, as pdftotext emits)
// this loader understands.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dochat/internal/domain"
)

// Load reads a text file into a Document. Form feeds (\f) mark page breaks;
// a file without form feeds becomes a single page. Page numbers are 1-based.
// Pages whose text is empty after trimming trailing whitespace are kept (they
// simply produce no chunks), preserving the page numbering of the source.
func Load(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	return FromText(filepath.Base(path), string(data)), nil
}

// FromText builds a Document from already extracted text.
func FromText(title, text string) domain.Document {
	raw := strings.Split(text, "\f")
	pages := make([]domain.Page, len(raw))
	for i, t := range raw {
		pages[i] = domain.Page{Number: i + 1, Text: strings.TrimRight(t, "\r\n")}
	}
	return domain.Document{
		ID:    uuid.NewString(),
		Title: title,
		Pages: pages,
	}
}

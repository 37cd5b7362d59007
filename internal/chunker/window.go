package chunker

import (
	"fmt"
	"strconv"

	"dochat/internal/domain"
)

// WindowChunker slides a fixed-size character window across each page of a
// document with a configurable overlap between consecutive windows. Windows
// never cross a page boundary, so every chunk carries a single page number.
type WindowChunker struct {
	size    int
	overlap int
}

// New creates a window chunker. size is the window length in runes and
// overlap the number of runes shared by consecutive windows on a page;
// 0 <= overlap < size is required.
func New(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", domain.ErrInvalidConfiguration, overlap, size)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk emits one chunk per window position for every page of the document.
// The final window of a page is shortened to the page's text length rather
// than padded, and is emitted even when shorter than the window size. Pages
// with empty text produce no chunks. Every rune of every page ends up in at
// least one chunk.
func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	idx := 0
	step := c.size - c.overlap
	for _, page := range doc.Pages {
		runes := []rune(page.Text)
		if len(runes) == 0 {
			continue
		}
		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, domain.Chunk{
				ID:          doc.ID + ":" + strconv.Itoa(idx),
				DocumentID:  doc.ID,
				PageNumber:  page.Number,
				StartOffset: start,
				EndOffset:   end,
				Text:        string(runes[start:end]),
			})
			idx++
			if end == len(runes) {
				break
			}
		}
	}
	return chunks, nil
}

// Size returns the configured window length in runes.
func (c *WindowChunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *WindowChunker) Overlap() int { return c.overlap }

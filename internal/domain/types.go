package domain

import "time"

// Page is one page of extracted document text. Numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is an immutable, ordered set of pages. Exactly one document is
// active per pipeline session; a new ingest replaces it entirely.
type Document struct {
	ID    string
	Title string
	Pages []Page
}

// PageCount returns the number of pages in the document.
func (d Document) PageCount() int { return len(d.Pages) }

// Chunk is a contiguous window of a single page's text, the atomic unit of
// retrieval. StartOffset and EndOffset are rune positions into the page text,
// with EndOffset > StartOffset. Chunks never cross page boundaries.
type Chunk struct {
	ID          string
	DocumentID  string
	PageNumber  int
	StartOffset int
	EndOffset   int
	Text        string
}

// EmbeddedChunk pairs a chunk with its embedding vector. Created once at
// ingest and never mutated afterwards.
type EmbeddedChunk struct {
	Chunk
	Vector []float64
}

// ScoredChunk is a retrieval candidate with its cosine similarity to the
// query vector.
type ScoredChunk struct {
	Chunk EmbeddedChunk
	Score float64
}

// RetrievalResult is the ordered outcome of one query: passages most relevant
// (and diverse) first, length at most the configured k.
type RetrievalResult struct {
	Query    string
	Passages []ScoredChunk
}

// Pages returns the distinct page numbers cited by the result, in selection order.
func (r RetrievalResult) Pages() []int {
	seen := make(map[int]struct{}, len(r.Passages))
	var pages []int
	for _, p := range r.Passages {
		if _, ok := seen[p.Chunk.PageNumber]; ok {
			continue
		}
		seen[p.Chunk.PageNumber] = struct{}{}
		pages = append(pages, p.Chunk.PageNumber)
	}
	return pages
}

// TurnKind distinguishes question turns from whole-document summaries.
type TurnKind string

const (
	TurnAsk       TurnKind = "ask"
	TurnSummarize TurnKind = "summarize"
)

// Turn is one completed exchange recorded in the conversation ledger.
type Turn struct {
	ID        string
	Kind      TurnKind
	Query     string
	Result    RetrievalResult
	Answer    string
	Timestamp time.Time
}

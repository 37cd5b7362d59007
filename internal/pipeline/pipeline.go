// Package pipeline composes the chunker, embedding collaborator, vector
// index, diversity selector, generation collaborator, and conversation ledger
// into the document question-answering core. One pipeline serves one logical
// session with at most one active document; ingesting a new document replaces
// the previous one entirely.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"dochat/internal/domain"
	"dochat/internal/selector"
)

// Options are the retrieval parameters consumed by the pipeline.
type Options struct {
	// K is the number of passages handed to the generator per query.
	K int
	// FetchK is the candidate pool size searched before diversity selection.
	FetchK int
	// Lambda is the MMR relevance/diversity trade-off in [0, 1].
	Lambda float64
	// SummaryChunkCap bounds how many chunks Summarize samples from large
	// documents. 0 means the default of 6.
	SummaryChunkCap int
}

func (o Options) validate() error {
	if o.K <= 0 {
		return fmt.Errorf("%w: retrieval k %d must be positive", domain.ErrInvalidConfiguration, o.K)
	}
	if o.FetchK < o.K {
		return fmt.Errorf("%w: fetch_k %d must be >= k %d", domain.ErrInvalidConfiguration, o.FetchK, o.K)
	}
	if o.Lambda < 0 || o.Lambda > 1 {
		return fmt.Errorf("%w: mmr_lambda %v must be in [0, 1]", domain.ErrInvalidConfiguration, o.Lambda)
	}
	return nil
}

// Pipeline is the retrieval core. The zero state is Empty; Ingest moves it to
// Ready. Query, Ask, and Summarize are read-only against a stable snapshot
// and safe to run concurrently with each other; Ingest is the only mutator.
type Pipeline struct {
	chunker   domain.Chunker
	embedder  domain.Embedder
	generator domain.Generator
	index     domain.VectorIndex
	ledger    domain.Ledger
	opts      Options
	log       *log.Logger

	mu     sync.RWMutex
	doc    *domain.Document
	chunks []domain.EmbeddedChunk // document position order
}

// New assembles a pipeline. Options are validated up front; bad retrieval
// parameters never reach the index.
func New(chunker domain.Chunker, embedder domain.Embedder, generator domain.Generator, index domain.VectorIndex, ledger domain.Ledger, opts Options, logger *log.Logger) (*Pipeline, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SummaryChunkCap <= 0 {
		opts.SummaryChunkCap = 6
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		chunker:   chunker,
		embedder:  embedder,
		generator: generator,
		index:     index,
		ledger:    ledger,
		opts:      opts,
		log:       logger,
	}, nil
}

// Ready reports whether a document has been ingested.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc != nil
}

// Document returns the active document, if any.
func (p *Pipeline) Document() (domain.Document, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.doc == nil {
		return domain.Document{}, false
	}
	return *p.doc, true
}

// Ingest chunks and embeds the document, builds the vector index, and clears
// the conversation ledger. It is all-or-nothing: an embedding failure leaves
// the prior Ready state (or Empty state) untouched, and in-flight queries
// complete against the old index.
func (p *Pipeline) Ingest(ctx context.Context, doc domain.Document) error {
	chunks, err := p.chunker.Chunk(doc)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %q has no extractable text", doc.Title)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if preparer, ok := p.embedder.(domain.CorpusPreparer); ok {
		if err := preparer.Prepare(texts); err != nil {
			return fmt.Errorf("%w: prepare corpus: %v", domain.ErrEmbeddingFailure, err)
		}
	}

	start := time.Now()
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("ingest %q: %w", doc.Title, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedded %d of %d chunks", domain.ErrIndexCorruption, len(vectors), len(chunks))
	}
	embedded := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = domain.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.index.Build(ctx, embedded); err != nil {
		// The backend may be left empty; drop the session rather than
		// pretend a partial index is Ready.
		p.doc = nil
		p.chunks = nil
		return fmt.Errorf("build index for %q: %w", doc.Title, err)
	}
	p.doc = &doc
	p.chunks = embedded
	if err := p.ledger.Reset(); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	p.log.Info("document ingested",
		"title", doc.Title,
		"pages", doc.PageCount(),
		"chunks", len(chunks),
		"embedder", p.embedder.Name(),
		"took", time.Since(start))
	return nil
}

// Query embeds the query text, searches the index for the fetch_k nearest
// chunks, and MMR-selects k of them. It does not call the generator.
func (p *Pipeline) Query(ctx context.Context, text string) (domain.RetrievalResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.RetrievalResult{}, domain.ErrEmptyQuery
	}
	_, err := p.snapshot()
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}
	candidates, err := p.index.Search(ctx, vector, p.opts.FetchK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("search index: %w", err)
	}
	selected, err := selector.Select(vector, candidates, p.opts.K, p.opts.Lambda)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	p.log.Debug("query retrieved", "candidates", len(candidates), "selected", len(selected))
	return domain.RetrievalResult{Query: text, Passages: selected}, nil
}

// Ask runs Query, builds the answer prompt from the selected passages, calls
// the generator, and records the completed turn. The ledger is appended only
// after generation succeeds, so a failed or cancelled Ask leaves no trace.
func (p *Pipeline) Ask(ctx context.Context, text string) (domain.Turn, error) {
	result, err := p.Query(ctx, text)
	if err != nil {
		return domain.Turn{}, err
	}
	prompt := buildAnswerPrompt(text, result.Passages)
	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("answer %q: %w", text, err)
	}
	turn := domain.Turn{
		ID:        uuid.NewString(),
		Kind:      domain.TurnAsk,
		Query:     text,
		Result:    result,
		Answer:    answer,
		Timestamp: time.Now(),
	}
	if err := p.ledger.Append(turn); err != nil {
		return domain.Turn{}, fmt.Errorf("record turn: %w", err)
	}
	return turn, nil
}

// Summarize hands a sample of the document's own chunks to the generator,
// bypassing query-similarity ranking. Passages are ordered by document
// position; large documents are capped by sampling evenly across that order.
func (p *Pipeline) Summarize(ctx context.Context) (domain.Turn, error) {
	chunks, err := p.snapshot()
	if err != nil {
		return domain.Turn{}, err
	}
	sample := sampleEvenly(chunks, p.opts.SummaryChunkCap)
	passages := make([]domain.ScoredChunk, len(sample))
	for i, ch := range sample {
		// Position-ordered, not ranked; scores carry no meaning here.
		passages[i] = domain.ScoredChunk{Chunk: ch}
	}
	prompt := buildSummaryPrompt(passages)
	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("summarize: %w", err)
	}
	turn := domain.Turn{
		ID:        uuid.NewString(),
		Kind:      domain.TurnSummarize,
		Result:    domain.RetrievalResult{Passages: passages},
		Answer:    answer,
		Timestamp: time.Now(),
	}
	if err := p.ledger.Append(turn); err != nil {
		return domain.Turn{}, fmt.Errorf("record turn: %w", err)
	}
	return turn, nil
}

// Export writes the conversation ledger to w.
func (p *Pipeline) Export(w io.Writer) error {
	return p.ledger.Export(w)
}

// snapshot returns the embedded chunks of the active session, or ErrNotReady.
// The returned slice is immutable once published, so callers may read it
// without holding the lock even across a concurrent re-ingest. The index size
// is checked here, under the same lock that serializes Ingest, so a mismatch
// can only mean the backend lost or gained points out of band; an index
// swapped by a re-ingest after this returns is a newer valid session, not
// corruption.
func (p *Pipeline) snapshot() ([]domain.EmbeddedChunk, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.doc == nil {
		return nil, domain.ErrNotReady
	}
	if n := p.index.Len(); n != len(p.chunks) {
		return nil, fmt.Errorf("%w: index holds %d chunks, document has %d", domain.ErrIndexCorruption, n, len(p.chunks))
	}
	return p.chunks, nil
}

// sampleEvenly picks at most limit chunks spread evenly across the slice,
// preserving order. The first and last region of the document are always
// represented.
func sampleEvenly(chunks []domain.EmbeddedChunk, limit int) []domain.EmbeddedChunk {
	if len(chunks) <= limit {
		return chunks
	}
	sample := make([]domain.EmbeddedChunk, limit)
	for i := 0; i < limit; i++ {
		sample[i] = chunks[i*len(chunks)/limit]
	}
	return sample
}

func buildAnswerPrompt(query string, passages []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Use the following document passages to answer the question. ")
	b.WriteString("If the passages do not contain the answer, say so.\n\n")
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "[page %d] %s\n", p.Chunk.PageNumber, p.Chunk.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:", query)
	return b.String()
}

func buildSummaryPrompt(passages []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Please provide a comprehensive summary of this document in 3-4 sentences, highlighting the main points and key information:\n\n")
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Chunk.Text)
	}
	b.WriteString("\n\nSummary:")
	return b.String()
}

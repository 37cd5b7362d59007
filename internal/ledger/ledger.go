// Package ledger records completed conversation turns in order. The ledger is
// append-only for the lifetime of one document session and is reset when a new
// document is ingested.
package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"dochat/internal/domain"
)

var _ domain.Ledger = (*Memory)(nil)

// Memory is the in-process ledger implementation.
type Memory struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory { return &Memory{} }

// Append records a completed turn. Append never fails for the memory ledger.
func (l *Memory) Append(turn domain.Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return nil
}

// Turns returns all recorded turns in chronological order.
func (l *Memory) Turns() ([]domain.Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Turn, len(l.turns))
	copy(out, l.turns)
	return out, nil
}

// Reset discards all recorded turns.
func (l *Memory) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
	return nil
}

// Export renders the conversation in chronological order.
func (l *Memory) Export(w io.Writer) error {
	turns, err := l.Turns()
	if err != nil {
		return err
	}
	return Render(w, turns)
}

// Render writes turns as the plain-text export format: a header followed by
// numbered entries with the question, cited page numbers, and the answer.
func Render(w io.Writer, turns []domain.Turn) error {
	var b strings.Builder
	b.WriteString("dochat - Conversation Export\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Total Turns: %d\n", len(turns))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for i, turn := range turns {
		fmt.Fprintf(&b, "Entry %d (%s):\n", i+1, turn.Timestamp.Format("2006-01-02 15:04:05"))
		query := turn.Query
		if turn.Kind == domain.TurnSummarize {
			query = "[Document Summary]"
		}
		fmt.Fprintf(&b, "Q: %s\n", query)
		if pages := turn.Result.Pages(); len(pages) > 0 {
			fmt.Fprintf(&b, "Pages: %s\n", formatPages(pages))
		}
		fmt.Fprintf(&b, "A: %s\n", turn.Answer)
		b.WriteString(strings.Repeat("-", 30) + "\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatPages(pages []int) string {
	sorted := make([]int, len(pages))
	copy(sorted, pages)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}

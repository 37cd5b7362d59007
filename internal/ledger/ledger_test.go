package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochat/internal/domain"
)

func turn(id, query, answer string, pages ...int) domain.Turn {
	t := domain.Turn{
		ID:        id,
		Kind:      domain.TurnAsk,
		Query:     query,
		Answer:    answer,
		Timestamp: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	for i, p := range pages {
		t.Result.Passages = append(t.Result.Passages, domain.ScoredChunk{
			Chunk: domain.EmbeddedChunk{
				Chunk: domain.Chunk{ID: "c", PageNumber: p, StartOffset: i * 10, EndOffset: i*10 + 10},
			},
		})
	}
	return t
}

func TestMemoryAppendAndTurns(t *testing.T) {
	l := NewMemory()

	turns, err := l.Turns()
	require.NoError(t, err)
	assert.Empty(t, turns)

	require.NoError(t, l.Append(turn("t1", "first?", "one", 1)))
	require.NoError(t, l.Append(turn("t2", "second?", "two", 2)))

	turns, err = l.Turns()
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "t1", turns[0].ID)
	assert.Equal(t, "t2", turns[1].ID)
}

func TestMemoryReset(t *testing.T) {
	l := NewMemory()
	require.NoError(t, l.Append(turn("t1", "q", "a", 1)))
	require.NoError(t, l.Reset())

	turns, err := l.Turns()
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryTurnsReturnsCopy(t *testing.T) {
	l := NewMemory()
	require.NoError(t, l.Append(turn("t1", "q", "a", 1)))

	turns, err := l.Turns()
	require.NoError(t, err)
	turns[0].ID = "mutated"

	again, err := l.Turns()
	require.NoError(t, err)
	assert.Equal(t, "t1", again[0].ID)
}

func TestExportFormat(t *testing.T) {
	l := NewMemory()
	require.NoError(t, l.Append(turn("t1", "what is the revenue?", "It grew 12%.", 3, 1, 3)))

	summary := turn("t2", "", "The document covers revenue.", 1, 2)
	summary.Kind = domain.TurnSummarize
	require.NoError(t, l.Append(summary))

	var buf strings.Builder
	require.NoError(t, l.Export(&buf))
	out := buf.String()

	assert.Contains(t, out, "Total Turns: 2")
	assert.Contains(t, out, "Entry 1 (2025-03-14 10:30:00):")
	assert.Contains(t, out, "Q: what is the revenue?")
	// Distinct pages, ascending.
	assert.Contains(t, out, "Pages: 1, 3")
	assert.Contains(t, out, "A: It grew 12%.")
	assert.Contains(t, out, "Entry 2 (2025-03-14 10:30:00):")
	assert.Contains(t, out, "Q: [Document Summary]")
	assert.Contains(t, out, "Pages: 1, 2")
}

func TestExportEmptyLedger(t *testing.T) {
	l := NewMemory()
	var buf strings.Builder
	require.NoError(t, l.Export(&buf))
	assert.Contains(t, buf.String(), "Total Turns: 0")
}

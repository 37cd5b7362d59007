package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCapsSentenceCount(t *testing.T) {
	s := New()
	text := "Revenue grew this quarter. Engineering shipped releases. Hiring slowed down. Marketing launched a campaign. Support tickets dropped."

	got := s.Summarize(text, 2)
	assert.Equal(t, 2, strings.Count(got, "."))
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := New()
	text := "Alpha revenue revenue revenue. Beta filler sentence here. Gamma revenue revenue growth."

	got := s.Summarize(text, 2)
	alpha := strings.Index(got, "Alpha")
	gamma := strings.Index(got, "Gamma")
	assert.GreaterOrEqual(t, alpha, 0)
	assert.Greater(t, gamma, alpha)
}

func TestSummarizeShortTextReturnedWhole(t *testing.T) {
	s := New()
	assert.Equal(t, "no terminal punctuation here", s.Summarize("  no terminal punctuation here  ", 3))

	got := s.Summarize("One sentence only.", 5)
	assert.Equal(t, "One sentence only.", got)
}

func TestSummarizeEmptyText(t *testing.T) {
	s := New()
	assert.Empty(t, s.Summarize("", 3))
	assert.Empty(t, s.Summarize("   \n ", 3))
}

func TestSummarizeZeroMaxUsesDefault(t *testing.T) {
	s := New()
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("Sentence with shared words appears here. ")
	}
	got := s.Summarize(b.String(), 0)
	assert.Equal(t, 5, strings.Count(got, "."))
}

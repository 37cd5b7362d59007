package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTextSinglePage(t *testing.T) {
	doc := FromText("notes.txt", "just one page of text\n")
	assert.Equal(t, "notes.txt", doc.Title)
	assert.NotEmpty(t, doc.ID)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "just one page of text", doc.Pages[0].Text)
}

func TestFromTextFormFeedPageBreaks(t *testing.T) {
	doc := FromText("report.txt", "page one\n\fpage two\r\n\fpage three")
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "page one", doc.Pages[0].Text)
	assert.Equal(t, "page two", doc.Pages[1].Text)
	assert.Equal(t, "page three", doc.Pages[2].Text)
	for i, p := range doc.Pages {
		assert.Equal(t, i+1, p.Number)
	}
}

func TestFromTextKeepsEmptyPagesNumbered(t *testing.T) {
	doc := FromText("sparse.txt", "first\f\fthird")
	require.Len(t, doc.Pages, 3)
	assert.Empty(t, doc.Pages[1].Text)
	assert.Equal(t, 3, doc.Pages[2].Number)
	assert.Equal(t, 3, doc.PageCount())
}

func TestFromTextFreshIDPerDocument(t *testing.T) {
	a := FromText("a.txt", "same text")
	b := FromText("b.txt", "same text")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\fbeta"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "doc.txt", doc.Title)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "alpha", doc.Pages[0].Text)
	assert.Equal(t, "beta", doc.Pages[1].Text)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

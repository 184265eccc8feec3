//go:build unit

package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/core"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBooksFromJSON(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"x1","title":"One","author":"A","pages":120,"preview":"Once upon a time."},
		{"id":"x2","title":"Two","author":"B","pages":80}
	]`)

	books, err := LoadBooksFromJSON(path)
	require.NoError(t, err)
	require.Len(t, books, 2)
	// preview expands into readable content, sized for the reader
	assert.GreaterOrEqual(t, len(books[0].Content), 6*core.DefaultPageSize)
	assert.True(t, strings.HasPrefix(books[0].Content, "Once upon a time."))
	assert.Empty(t, books[1].Content) // no preview, nothing to expand
}

func TestLoadBooksFromJSON_RejectsZeroPages(t *testing.T) {
	path := writeCatalog(t, `[{"id":"bad","title":"Broken","author":"A","pages":0}]`)

	_, err := LoadBooksFromJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)

	path = writeCatalog(t, `[{"id":"neg","title":"Broken","author":"A","pages":-3}]`)
	_, err = LoadBooksFromJSON(path)
	assert.Error(t, err)
}

func TestLoadBooksFromJSON_BadInput(t *testing.T) {
	_, err := LoadBooksFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeCatalog(t, `{"not":"an array"}`)
	_, err = LoadBooksFromJSON(path)
	assert.Error(t, err)
}

func TestSeedBooksHaveValidPages(t *testing.T) {
	for _, b := range SeedBooks() {
		assert.GreaterOrEqual(t, b.Pages, 1, "book %s", b.ID)
		assert.NotEmpty(t, b.Content, "book %s", b.ID)
	}
}

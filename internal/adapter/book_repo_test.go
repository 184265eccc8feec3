//go:build unit

package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/core/model"
	"bookify/pkg/util"
)

func TestGetByID(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	b, err := r.GetByID(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)

	_, err = r.GetByID(ctx, "999")
	assert.ErrorIs(t, err, errNotFound)
}

func TestSearchQueryMatchesSubstring(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	res, err := r.Search(ctx, "dune", model.FilterOptions{}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "5", res.Books[0].ID)
	assert.False(t, res.HasNextPage)

	// author and genre text are searched too
	res, err = r.Search(ctx, "tolkien", model.FilterOptions{}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestSearchGenreFilter(t *testing.T) {
	r := NewBookRepo(SeedBooks())

	res, err := r.Search(context.Background(), "", model.FilterOptions{Genres: []string{"Fantasy"}}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	for _, b := range res.Books {
		assert.Contains(t, b.Genres, "Fantasy")
	}
}

func TestSearchFiltersAreANDed(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	f := model.FilterOptions{
		Genres:    []string{"Science Fiction"},
		MinRating: 4.6,
	}
	res, err := r.Search(ctx, "", f, 1, 12)
	require.NoError(t, err)
	for _, b := range res.Books {
		assert.GreaterOrEqual(t, b.Rating, 4.6)
		assert.Contains(t, b.Genres, "Science Fiction")
	}
	assert.Equal(t, 2, res.Total) // 1984 and Dune

	f.Authors = []string{"Frank Herbert"}
	res, err = r.Search(ctx, "", f, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Dune", res.Books[0].Title)
}

func TestSearchPublishedRange(t *testing.T) {
	r := NewBookRepo(SeedBooks())

	f := model.FilterOptions{
		PublishedAfter:  util.GetPtr(1950),
		PublishedBefore: util.GetPtr(1970),
	}
	res, err := r.Search(context.Background(), "", f, 1, 100)
	require.NoError(t, err)
	for _, b := range res.Books {
		assert.GreaterOrEqual(t, b.PublishedYear, 1950)
		assert.LessOrEqual(t, b.PublishedYear, 1970)
	}
	assert.Equal(t, 4, res.Total) // Mockingbird, LotR, Dune, Catcher
}

func TestSearchLanguageFilter(t *testing.T) {
	r := NewBookRepo(SeedBooks())

	res, err := r.Search(context.Background(), "", model.FilterOptions{Languages: []string{"Portuguese"}}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "The Alchemist", res.Books[0].Title)
}

func TestSearchSortStable(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	res, err := r.Search(ctx, "", model.FilterOptions{SortBy: model.SortByRating, SortOrder: model.SortDesc}, 1, 100)
	require.NoError(t, err)
	require.NotEmpty(t, res.Books)
	assert.Equal(t, "The Lord of the Rings", res.Books[0].Title)
	for i := 1; i < len(res.Books); i++ {
		assert.GreaterOrEqual(t, res.Books[i-1].Rating, res.Books[i].Rating)
	}

	// equal keys keep catalog order: Mockingbird (1) before Philosopher's
	// Stone (6), both rated 4.8
	idx := map[string]int{}
	for i, b := range res.Books {
		idx[b.ID] = i
	}
	assert.Less(t, idx["1"], idx["6"])

	res, err = r.Search(ctx, "", model.FilterOptions{SortBy: model.SortByPublished, SortOrder: model.SortAsc}, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "Pride and Prejudice", res.Books[0].Title)
}

func TestSearchNoSortKeepsCatalogOrder(t *testing.T) {
	r := NewBookRepo(SeedBooks())

	res, err := r.Search(context.Background(), "", model.FilterOptions{}, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 14, res.Total)
	assert.Equal(t, "1", res.Books[0].ID)
	assert.Equal(t, "14", res.Books[13].ID)
}

func TestSearchPagination(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	var all []string
	for page := 1; page <= 3; page++ {
		res, err := r.Search(ctx, "", model.FilterOptions{}, page, 5)
		require.NoError(t, err)
		assert.Equal(t, 14, res.Total)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, page < 3, res.HasNextPage)
		for _, b := range res.Books {
			all = append(all, b.ID)
		}
	}
	// pages concatenate to the full result set, no gaps or repeats
	require.Len(t, all, 14)
	seen := map[string]bool{}
	for _, id := range all {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	// past the end: empty page, total preserved
	res, err := r.Search(ctx, "", model.FilterOptions{}, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Books)
	assert.Equal(t, 14, res.Total)
	assert.False(t, res.HasNextPage)
}

func TestFeaturedAndByGenre(t *testing.T) {
	r := NewBookRepo(SeedBooks())
	ctx := context.Background()

	featured, err := r.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 4)
	for _, b := range featured {
		assert.True(t, b.Featured)
	}

	fantasy, err := r.ByGenre(ctx, "fantasy") // case-insensitive
	require.NoError(t, err)
	assert.Len(t, fantasy, 3)
}

func TestRefs(t *testing.T) {
	r := NewBookRepo(SeedBooks())

	refs, err := r.Refs(context.Background())
	require.NoError(t, err)
	assert.Contains(t, refs.Genres, "Fantasy")
	assert.Contains(t, refs.Languages, "Portuguese")
	assert.Contains(t, refs.Authors, "J.R.R. Tolkien")
	assert.IsIncreasing(t, refs.Genres)
	assert.IsIncreasing(t, refs.Authors)

	// distinct: Tolkien appears once despite two books
	count := 0
	for _, a := range refs.Authors {
		if a == "J.R.R. Tolkien" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

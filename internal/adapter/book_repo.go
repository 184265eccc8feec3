package adapter

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"bookify/internal/core/model"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

// BookRepo is the in-memory book catalog. Books are reference data loaded at
// construction time; the lock exists because the HTTP server reads
// concurrently and Reload can swap the catalog at runtime.
type BookRepo struct {
	mu    sync.RWMutex
	books []model.Book          // catalog order, used when no sort is requested
	byID  map[string]model.Book // id -> Book
}

func NewBookRepo(books []model.Book) *BookRepo {
	r := &BookRepo{}
	r.Reload(books)
	return r
}

// Reload replaces the whole catalog.
func (r *BookRepo) Reload(books []model.Book) {
	byID := make(map[string]model.Book, len(books))
	copied := make([]model.Book, 0, len(books))
	for _, b := range books {
		b = copyBook(b)
		byID[b.ID] = b
		copied = append(copied, b)
	}
	r.mu.Lock()
	r.books = copied
	r.byID = byID
	r.mu.Unlock()
}

func (r *BookRepo) GetByID(_ context.Context, id string) (model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return model.Book{}, errNotFound
	}
	return copyBook(b), nil
}

func (r *BookRepo) Featured(_ context.Context) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Book
	for _, b := range r.books {
		if b.Featured {
			out = append(out, copyBook(b))
		}
	}
	return out, nil
}

func (r *BookRepo) ByGenre(_ context.Context, genre string) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Book
	for _, b := range r.books {
		if containsFold(b.Genres, genre) {
			out = append(out, copyBook(b))
		}
	}
	return out, nil
}

// Refs collects the distinct genres, languages and authors of the catalog,
// each list sorted for stable output.
func (r *BookRepo) Refs(_ context.Context) (model.CatalogRefs, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	genres := map[string]struct{}{}
	languages := map[string]struct{}{}
	authors := map[string]struct{}{}
	for _, b := range r.books {
		for _, g := range b.Genres {
			genres[g] = struct{}{}
		}
		languages[b.Language] = struct{}{}
		authors[b.Author] = struct{}{}
	}
	return model.CatalogRefs{
		Genres:    sortedKeys(genres),
		Languages: sortedKeys(languages),
		Authors:   sortedKeys(authors),
	}, nil
}

// Search returns one page of the catalog matching query and filters.
// The flow is:
//
//  1. Snapshot the catalog (thread-safe copy).
//  2. Boolean text match against title/author/description/genres, then the
//     ANDed filter predicates. No relevance scoring.
//  3. Stable sort keyed by SortBy; SortOrder negates the comparator. When no
//     sort is requested the catalog order is kept.
//  4. Slice out the requested page.
func (r *BookRepo) Search(_ context.Context, query string, f model.FilterOptions, page, limit int) (model.SearchResult, error) {
	r.mu.RLock()
	items := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		items = append(items, copyBook(b))
	}
	r.mu.RUnlock()

	out := items[:0]
	needle := strings.ToLower(strings.TrimSpace(query))
	for _, b := range items {
		if needle != "" && !matchQuery(b, needle) {
			continue
		}
		if !matchFilters(b, f) {
			continue
		}
		out = append(out, b)
	}

	sortBooks(out, f.SortBy, f.SortOrder)

	total := len(out)
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	paged := make([]model.Book, end-start)
	copy(paged, out[start:end])

	return model.SearchResult{
		Books:       paged,
		Total:       total,
		Page:        page,
		HasNextPage: page*limit < total,
	}, nil
}

func copyBook(b model.Book) model.Book {
	b.Genres = append([]string(nil), b.Genres...)
	b.Tags = append([]string(nil), b.Tags...)
	return b
}

// matchQuery is a case-insensitive substring match against title, author,
// description, or any genre tag.
func matchQuery(b model.Book, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Author), needle) ||
		strings.Contains(strings.ToLower(b.Description), needle) {
		return true
	}
	for _, g := range b.Genres {
		if strings.Contains(strings.ToLower(g), needle) {
			return true
		}
	}
	return false
}

// matchFilters ANDs every active predicate.
func matchFilters(b model.Book, f model.FilterOptions) bool {
	// genres: book matches if ANY of its genres is in the requested set
	if len(f.Genres) > 0 {
		found := false
		for _, g := range b.Genres {
			if containsString(f.Genres, g) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Authors) > 0 && !containsString(f.Authors, b.Author) {
		return false
	}

	if len(f.Languages) > 0 && !containsString(f.Languages, b.Language) {
		return false
	}

	if f.MinRating > 0 && b.Rating < f.MinRating {
		return false
	}

	if f.PublishedAfter != nil && b.PublishedYear < *f.PublishedAfter {
		return false
	}
	if f.PublishedBefore != nil && b.PublishedYear > *f.PublishedBefore {
		return false
	}
	return true
}

// sortBooks sorts in place by the requested field. The sort is stable so that
// equal keys keep catalog order regardless of direction.
func sortBooks(bs []model.Book, field model.SortField, order model.SortOrder) {
	if field == "" {
		return
	}

	cmp := func(a, b model.Book) int { return 0 }
	switch field {
	case model.SortByTitle:
		cmp = func(a, b model.Book) int { return compareFold(a.Title, b.Title) }
	case model.SortByAuthor:
		cmp = func(a, b model.Book) int { return compareFold(a.Author, b.Author) }
	case model.SortByRating:
		cmp = func(a, b model.Book) int { return compareFloat(a.Rating, b.Rating) }
	case model.SortByPublished:
		cmp = func(a, b model.Book) int { return a.PublishedYear - b.PublishedYear }
	case model.SortByPopularity:
		// review count stands in for popularity
		cmp = func(a, b model.Book) int { return a.TotalReviews - b.TotalReviews }
	}

	desc := order == model.SortDesc
	sort.SliceStable(bs, func(i, j int) bool {
		c := cmp(bs[i], bs[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

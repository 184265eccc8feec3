package core

import (
	"context"
	"errors"

	"bookify/internal/core/model"
)

var (
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not_found")
	ErrUpstream   = errors.New("upstream")
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// BookSource is the read-only catalog the service queries.
type BookSource interface {
	Search(ctx context.Context, query string, f model.FilterOptions, page, limit int) (model.SearchResult, error)
	GetByID(ctx context.Context, id string) (model.Book, error)
	Featured(ctx context.Context) ([]model.Book, error)
	ByGenre(ctx context.Context, genre string) ([]model.Book, error)
	Refs(ctx context.Context) (model.CatalogRefs, error)
}

type CatalogService struct {
	Books BookSource
}

func NewCatalogService(books BookSource) *CatalogService {
	return &CatalogService{Books: books}
}

// Search clamps paging inputs and validates the sort before delegating.
// An empty query is the browse case: the full catalog, post-filter.
func (s *CatalogService) Search(ctx context.Context, query string, f model.FilterOptions, page, limit int) (model.SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if !validSort(f.SortBy) {
		return model.SearchResult{}, ErrValidation
	}
	if f.SortOrder != "" && f.SortOrder != model.SortAsc && f.SortOrder != model.SortDesc {
		return model.SearchResult{}, ErrValidation
	}
	return s.Books.Search(ctx, query, f, page, limit)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (model.Book, error) {
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		return model.Book{}, ErrNotFound
	}
	return b, nil
}

func (s *CatalogService) FeaturedBooks(ctx context.Context) ([]model.Book, error) {
	return s.Books.Featured(ctx)
}

func (s *CatalogService) BooksByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	return s.Books.ByGenre(ctx, genre)
}

func (s *CatalogService) FilterRefs(ctx context.Context) (model.CatalogRefs, error) {
	return s.Books.Refs(ctx)
}

func validSort(f model.SortField) bool {
	switch f {
	case "", model.SortByTitle, model.SortByAuthor, model.SortByRating, model.SortByPublished, model.SortByPopularity:
		return true
	}
	return false
}

package core

import (
	"context"

	"bookify/internal/core/model"
)

// DefaultPageSize is the number of characters shown per reader page.
const DefaultPageSize = 1000

// Session paginates one book's text for the in-browser reader. It is transient
// view state: position lives in the session, persistence goes through the
// library service (bookmarks, progress).
type Session struct {
	book     model.Book
	userID   string
	library  *LibraryService
	pageSize int
	page     int
	total    int
}

// NewSession opens a reading session at page 1. Books without content cannot
// be read, only browsed.
func NewSession(book model.Book, userID string, library *LibraryService, pageSize int) (*Session, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if len(book.Content) == 0 {
		return nil, ErrValidation
	}
	total := (len(book.Content) + pageSize - 1) / pageSize
	return &Session{
		book:     book,
		userID:   userID,
		library:  library,
		pageSize: pageSize,
		page:     1,
		total:    total,
	}, nil
}

func (s *Session) Page() int       { return s.page }
func (s *Session) TotalPages() int { return s.total }

// Progress is the position as a percentage of total pages.
func (s *Session) Progress() float64 {
	return float64(s.page) / float64(s.total) * 100
}

// PageContent returns the text of page n without moving the session.
func (s *Session) PageContent(n int) (string, error) {
	if n < 1 || n > s.total {
		return "", ErrValidation
	}
	start := (n - 1) * s.pageSize
	end := n * s.pageSize
	if end > len(s.book.Content) {
		end = len(s.book.Content)
	}
	return s.book.Content[start:end], nil
}

// Content returns the text of the current page.
func (s *Session) Content() string {
	c, _ := s.PageContent(s.page)
	return c
}

// Next and Previous clamp at the first and last page.
func (s *Session) Next() {
	if s.page < s.total {
		s.page++
	}
}

func (s *Session) Previous() {
	if s.page > 1 {
		s.page--
	}
}

// GoTo jumps to page n; out-of-range values are ignored.
func (s *Session) GoTo(n int) {
	if n >= 1 && n <= s.total {
		s.page = n
	}
}

// ToggleBookmark flips the bookmark on the current page and reports whether
// the page is bookmarked afterwards.
func (s *Session) ToggleBookmark(ctx context.Context) (bool, error) {
	return s.library.ToggleBookmark(ctx, s.userID, s.book.ID, s.page)
}

// Bookmarked reports whether the current page has a bookmark.
func (s *Session) Bookmarked(ctx context.Context) (bool, error) {
	marks, err := s.library.Bookmarks(ctx, s.userID, s.book.ID)
	if err != nil {
		return false, err
	}
	for _, b := range marks {
		if b.Page == s.page {
			return true, nil
		}
	}
	return false, nil
}

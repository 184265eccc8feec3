package adapter

import (
	"context"
	"sync"

	"bookify/internal/core/model"
)

// LibraryStore keeps the per-user mutable entities in memory. Favorites live
// in sqlite instead (see FavoritesRepo); everything here is session-lifetime
// state, lost on restart.
type LibraryStore struct {
	mu          sync.RWMutex
	progress    map[string]model.ReadingProgress // userID+"/"+bookID
	bookmarks   map[string]model.Bookmark        // id
	highlights  map[string]model.Highlight       // id
	reviews     map[string]model.Review          // id
	lists       map[string]model.ReadingList     // id
	preferences map[string]model.ReaderPreferences

	// insertion order for stable listings
	bookmarkOrder  []string
	highlightOrder []string
	reviewOrder    []string
	listOrder      []string
}

func NewLibraryStore() *LibraryStore {
	return &LibraryStore{
		progress:    make(map[string]model.ReadingProgress),
		bookmarks:   make(map[string]model.Bookmark),
		highlights:  make(map[string]model.Highlight),
		reviews:     make(map[string]model.Review),
		lists:       make(map[string]model.ReadingList),
		preferences: make(map[string]model.ReaderPreferences),
	}
}

func progressKey(userID, bookID string) string { return userID + "/" + bookID }

func (s *LibraryStore) GetProgress(_ context.Context, userID, bookID string) (model.ReadingProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[progressKey(userID, bookID)]
	if !ok {
		return model.ReadingProgress{}, errNotFound
	}
	return p, nil
}

func (s *LibraryStore) ListProgress(_ context.Context, userID string) ([]model.ReadingProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ReadingProgress
	for _, p := range s.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *LibraryStore) SaveProgress(_ context.Context, p model.ReadingProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progressKey(p.UserID, p.BookID)] = p
	return nil
}

func (s *LibraryStore) ListBookmarks(_ context.Context, userID, bookID string) ([]model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Bookmark
	for _, id := range s.bookmarkOrder {
		b, ok := s.bookmarks[id]
		if !ok || b.UserID != userID {
			continue
		}
		if bookID != "" && b.BookID != bookID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *LibraryStore) AddBookmark(_ context.Context, b model.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookmarks[b.ID]; ok {
		return errConflict
	}
	s.bookmarks[b.ID] = b
	s.bookmarkOrder = append(s.bookmarkOrder, b.ID)
	return nil
}

func (s *LibraryStore) RemoveBookmark(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookmarks[id]
	if !ok || b.UserID != userID {
		return errNotFound
	}
	delete(s.bookmarks, id)
	return nil
}

func (s *LibraryStore) ListHighlights(_ context.Context, userID, bookID string) ([]model.Highlight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Highlight
	for _, id := range s.highlightOrder {
		h, ok := s.highlights[id]
		if !ok || h.UserID != userID {
			continue
		}
		if bookID != "" && h.BookID != bookID {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *LibraryStore) AddHighlight(_ context.Context, h model.Highlight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.highlights[h.ID]; ok {
		return errConflict
	}
	s.highlights[h.ID] = h
	s.highlightOrder = append(s.highlightOrder, h.ID)
	return nil
}

func (s *LibraryStore) ListReviews(_ context.Context, bookID string) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Review
	for _, id := range s.reviewOrder {
		r, ok := s.reviews[id]
		if !ok {
			continue
		}
		if bookID != "" && r.BookID != bookID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *LibraryStore) ListUserReviews(_ context.Context, userID string) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Review
	for _, id := range s.reviewOrder {
		r, ok := s.reviews[id]
		if !ok || r.UserID != userID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *LibraryStore) GetReview(_ context.Context, id string) (model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return model.Review{}, errNotFound
	}
	return r, nil
}

func (s *LibraryStore) SaveReview(_ context.Context, r model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; !ok {
		s.reviewOrder = append(s.reviewOrder, r.ID)
	}
	s.reviews[r.ID] = r
	return nil
}

func (s *LibraryStore) ListLists(_ context.Context, userID string) ([]model.ReadingList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ReadingList
	for _, id := range s.listOrder {
		l, ok := s.lists[id]
		if !ok || l.UserID != userID {
			continue
		}
		out = append(out, copyList(l))
	}
	return out, nil
}

func (s *LibraryStore) GetList(_ context.Context, userID, id string) (model.ReadingList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[id]
	if !ok || l.UserID != userID {
		return model.ReadingList{}, errNotFound
	}
	return copyList(l), nil
}

func (s *LibraryStore) SaveList(_ context.Context, l model.ReadingList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[l.ID]; !ok {
		s.listOrder = append(s.listOrder, l.ID)
	}
	s.lists[l.ID] = copyList(l)
	return nil
}

func (s *LibraryStore) GetPreferences(_ context.Context, userID string) (model.ReaderPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preferences[userID]
	if !ok {
		return model.ReaderPreferences{}, errNotFound
	}
	return p, nil
}

func (s *LibraryStore) SavePreferences(_ context.Context, userID string, p model.ReaderPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[userID] = p
	return nil
}

func copyList(l model.ReadingList) model.ReadingList {
	l.BookIDs = append([]string(nil), l.BookIDs...)
	return l
}

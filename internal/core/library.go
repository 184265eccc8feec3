package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookify/internal/core/model"
)

// LibraryRepo stores the per-user mutable entities. The current implementation
// is in-memory; favorites are split out because they are the one durable set.
type LibraryRepo interface {
	GetProgress(ctx context.Context, userID, bookID string) (model.ReadingProgress, error)
	ListProgress(ctx context.Context, userID string) ([]model.ReadingProgress, error)
	SaveProgress(ctx context.Context, p model.ReadingProgress) error

	ListBookmarks(ctx context.Context, userID, bookID string) ([]model.Bookmark, error)
	AddBookmark(ctx context.Context, b model.Bookmark) error
	RemoveBookmark(ctx context.Context, userID, id string) error

	ListHighlights(ctx context.Context, userID, bookID string) ([]model.Highlight, error)
	AddHighlight(ctx context.Context, h model.Highlight) error

	ListReviews(ctx context.Context, bookID string) ([]model.Review, error)
	ListUserReviews(ctx context.Context, userID string) ([]model.Review, error)
	GetReview(ctx context.Context, id string) (model.Review, error)
	SaveReview(ctx context.Context, r model.Review) error

	ListLists(ctx context.Context, userID string) ([]model.ReadingList, error)
	GetList(ctx context.Context, userID, id string) (model.ReadingList, error)
	SaveList(ctx context.Context, l model.ReadingList) error

	GetPreferences(ctx context.Context, userID string) (model.ReaderPreferences, error)
	SavePreferences(ctx context.Context, userID string, p model.ReaderPreferences) error
}

type FavoritesRepo interface {
	List(ctx context.Context, userID string) ([]string, error)
	Contains(ctx context.Context, userID, bookID string) (bool, error)
	Add(ctx context.Context, userID, bookID string) error
	Remove(ctx context.Context, userID, bookID string) error
}

// Observer receives library change events. Observers are called synchronously
// in registration order; a slow observer should hand off to its own goroutine.
type Observer func(e model.LibraryEvent)

type LibraryService struct {
	Repo      LibraryRepo
	Favorites FavoritesRepo
	Books     BookSource

	mu        sync.Mutex
	observers []Observer
}

func NewLibraryService(repo LibraryRepo, favorites FavoritesRepo, books BookSource) *LibraryService {
	return &LibraryService{Repo: repo, Favorites: favorites, Books: books}
}

// OnChange registers an observer for library events.
func (s *LibraryService) OnChange(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *LibraryService) notify(e model.LibraryEvent) {
	s.mu.Lock()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, fn := range obs {
		fn(e)
	}
}

// UpsertProgress records a reading position. It creates the record on first
// call for (user, book), recomputes the percentage, accumulates time spent
// (never decreasing), and flips the record to completed exactly when the page
// reaches the book's page count.
func (s *LibraryService) UpsertProgress(ctx context.Context, userID, bookID string, page, timeSpentDelta int) (model.ReadingProgress, error) {
	if page < 0 {
		return model.ReadingProgress{}, ErrValidation
	}
	if timeSpentDelta < 0 {
		timeSpentDelta = 0
	}
	book, err := s.Books.GetByID(ctx, bookID)
	if err != nil {
		return model.ReadingProgress{}, ErrNotFound
	}

	now := time.Now()
	p, err := s.Repo.GetProgress(ctx, userID, bookID)
	if err != nil {
		p = model.ReadingProgress{
			ID:          uuid.NewString(),
			UserID:      userID,
			BookID:      bookID,
			TotalPages:  book.Pages,
			StartedDate: now,
			Status:      model.StatusReading,
		}
	}

	p.CurrentPage = page
	p.Percentage = float64(page) / float64(book.Pages) * 100
	p.TimeSpent += timeSpentDelta
	p.LastReadDate = now
	if page >= book.Pages {
		p.Status = model.StatusCompleted
		if p.FinishedDate == nil {
			p.FinishedDate = &now
		}
	}

	if err := s.Repo.SaveProgress(ctx, p); err != nil {
		return model.ReadingProgress{}, err
	}
	s.notify(model.LibraryEvent{
		Type: "progress", UserID: userID, BookID: bookID, Page: page, Timestamp: now.Unix(),
	})
	return p, nil
}

func (s *LibraryService) Progress(ctx context.Context, userID, bookID string) (model.ReadingProgress, error) {
	p, err := s.Repo.GetProgress(ctx, userID, bookID)
	if err != nil {
		return model.ReadingProgress{}, ErrNotFound
	}
	return p, nil
}

func (s *LibraryService) AllProgress(ctx context.Context, userID string) ([]model.ReadingProgress, error) {
	return s.Repo.ListProgress(ctx, userID)
}

// ToggleFavorite flips the book's membership in the user's favorites set and
// reports the new state. Observers are notified so other open views re-read.
func (s *LibraryService) ToggleFavorite(ctx context.Context, userID, bookID string) (bool, error) {
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return false, ErrNotFound
	}
	has, err := s.Favorites.Contains(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	if has {
		err = s.Favorites.Remove(ctx, userID, bookID)
	} else {
		err = s.Favorites.Add(ctx, userID, bookID)
	}
	if err != nil {
		return has, err
	}
	s.notify(model.LibraryEvent{
		Type: "favorites", UserID: userID, BookID: bookID, Favorite: !has, Timestamp: time.Now().Unix(),
	})
	return !has, nil
}

func (s *LibraryService) FavoriteBookIDs(ctx context.Context, userID string) ([]string, error) {
	return s.Favorites.List(ctx, userID)
}

func (s *LibraryService) AddBookmark(ctx context.Context, userID, bookID string, page int, chapter, note string) (model.Bookmark, error) {
	if page < 1 {
		return model.Bookmark{}, ErrValidation
	}
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return model.Bookmark{}, ErrNotFound
	}
	b := model.Bookmark{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		Page:      page,
		Chapter:   chapter,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.AddBookmark(ctx, b); err != nil {
		return model.Bookmark{}, err
	}
	return b, nil
}

func (s *LibraryService) RemoveBookmark(ctx context.Context, userID, id string) error {
	if err := s.Repo.RemoveBookmark(ctx, userID, id); err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *LibraryService) Bookmarks(ctx context.Context, userID, bookID string) ([]model.Bookmark, error) {
	return s.Repo.ListBookmarks(ctx, userID, bookID)
}

// ToggleBookmark is the reading-session convenience: remove the bookmark on
// this page if one exists, otherwise create one. Returns whether a bookmark
// exists on the page after the call.
func (s *LibraryService) ToggleBookmark(ctx context.Context, userID, bookID string, page int) (bool, error) {
	existing, err := s.Repo.ListBookmarks(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.Page == page {
			return false, s.RemoveBookmark(ctx, userID, b.ID)
		}
	}
	_, err = s.AddBookmark(ctx, userID, bookID, page, "", "")
	return err == nil, err
}

func (s *LibraryService) AddHighlight(ctx context.Context, userID, bookID, text string, page int, color model.HighlightColor, note string) (model.Highlight, error) {
	if strings.TrimSpace(text) == "" || page < 1 {
		return model.Highlight{}, ErrValidation
	}
	switch color {
	case model.ColorYellow, model.ColorBlue, model.ColorGreen, model.ColorPink:
	default:
		return model.Highlight{}, ErrValidation
	}
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return model.Highlight{}, ErrNotFound
	}
	h := model.Highlight{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		Text:      text,
		Page:      page,
		Color:     color,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.AddHighlight(ctx, h); err != nil {
		return model.Highlight{}, err
	}
	return h, nil
}

func (s *LibraryService) Highlights(ctx context.Context, userID, bookID string) ([]model.Highlight, error) {
	return s.Repo.ListHighlights(ctx, userID, bookID)
}

func (s *LibraryService) AddReview(ctx context.Context, userID, bookID string, rating int, title, content string) (model.Review, error) {
	if rating < 1 || rating > 5 || strings.TrimSpace(title) == "" {
		return model.Review{}, ErrValidation
	}
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return model.Review{}, ErrNotFound
	}
	now := time.Now()
	r := model.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.SaveReview(ctx, r); err != nil {
		return model.Review{}, err
	}
	return r, nil
}

func (s *LibraryService) Reviews(ctx context.Context, bookID string) ([]model.Review, error) {
	return s.Repo.ListReviews(ctx, bookID)
}

// LikeReview and MarkReviewHelpful are the only paths that move the counters,
// so they only ever increase.
func (s *LibraryService) LikeReview(ctx context.Context, id string) (model.Review, error) {
	return s.bumpReview(ctx, id, func(r *model.Review) { r.Likes++ })
}

func (s *LibraryService) MarkReviewHelpful(ctx context.Context, id string) (model.Review, error) {
	return s.bumpReview(ctx, id, func(r *model.Review) { r.Helpful++ })
}

func (s *LibraryService) bumpReview(ctx context.Context, id string, bump func(*model.Review)) (model.Review, error) {
	r, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return model.Review{}, ErrNotFound
	}
	bump(&r)
	r.UpdatedAt = time.Now()
	if err := s.Repo.SaveReview(ctx, r); err != nil {
		return model.Review{}, err
	}
	return r, nil
}

func (s *LibraryService) CreateReadingList(ctx context.Context, userID, name, description string, isPublic bool) (model.ReadingList, error) {
	if strings.TrimSpace(name) == "" {
		return model.ReadingList{}, ErrValidation
	}
	now := time.Now()
	l := model.ReadingList{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		BookIDs:     []string{},
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.SaveList(ctx, l); err != nil {
		return model.ReadingList{}, err
	}
	return l, nil
}

func (s *LibraryService) ReadingLists(ctx context.Context, userID string) ([]model.ReadingList, error) {
	return s.Repo.ListLists(ctx, userID)
}

// AddBookToList appends the book to the list; inserting an id already present
// is a no-op, so the list never holds duplicates.
func (s *LibraryService) AddBookToList(ctx context.Context, userID, listID, bookID string) (model.ReadingList, error) {
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return model.ReadingList{}, ErrNotFound
	}
	l, err := s.Repo.GetList(ctx, userID, listID)
	if err != nil {
		return model.ReadingList{}, ErrNotFound
	}
	for _, id := range l.BookIDs {
		if id == bookID {
			return l, nil
		}
	}
	l.BookIDs = append(l.BookIDs, bookID)
	l.UpdatedAt = time.Now()
	if err := s.Repo.SaveList(ctx, l); err != nil {
		return model.ReadingList{}, err
	}
	return l, nil
}

// DefaultPreferences are used until the user saves their own.
func DefaultPreferences() model.ReaderPreferences {
	return model.ReaderPreferences{
		FontSize:   "medium",
		FontFamily: "serif",
		LineHeight: "normal",
		Theme:      "light",
		Alignment:  "left",
		Margin:     "normal",
	}
}

var legalPreferenceValues = map[string][]string{
	"fontSize":   {"small", "medium", "large", "xl"},
	"fontFamily": {"serif", "sans-serif", "mono"},
	"lineHeight": {"compact", "normal", "relaxed"},
	"theme":      {"light", "sepia", "dark"},
	"alignment":  {"left", "justify"},
	"margin":     {"narrow", "normal", "wide"},
}

func ValidatePreferences(p model.ReaderPreferences) error {
	fields := map[string]string{
		"fontSize":   p.FontSize,
		"fontFamily": p.FontFamily,
		"lineHeight": p.LineHeight,
		"theme":      p.Theme,
		"alignment":  p.Alignment,
		"margin":     p.Margin,
	}
	for name, v := range fields {
		if !containsValue(legalPreferenceValues[name], v) {
			return ErrValidation
		}
	}
	return nil
}

func (s *LibraryService) Preferences(ctx context.Context, userID string) (model.ReaderPreferences, error) {
	p, err := s.Repo.GetPreferences(ctx, userID)
	if err != nil {
		return DefaultPreferences(), nil
	}
	return p, nil
}

// SavePreferences is idempotent: saving the same value twice reads back the
// same value.
func (s *LibraryService) SavePreferences(ctx context.Context, userID string, p model.ReaderPreferences) error {
	if err := ValidatePreferences(p); err != nil {
		return err
	}
	return s.Repo.SavePreferences(ctx, userID, p)
}

func containsValue(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

package adapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"

	"bookify/internal/auth"
	"bookify/internal/core"
	"bookify/internal/core/model"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	Catalog   *core.CatalogService
	Library   *core.LibraryService
	Assistant *core.AssistantService
	Users     *UserRepo
	Events    http.HandlerFunc

	jwtSecret []byte
	log       *slog.Logger
}

func NewHandler(catalog *core.CatalogService, library *core.LibraryService, assistant *core.AssistantService, users *UserRepo, events http.HandlerFunc, jwtSecret []byte, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Catalog:   catalog,
		Library:   library,
		Assistant: assistant,
		Users:     users,
		Events:    events,
		jwtSecret: jwtSecret,
		log:       logger,
	}
}

// Routes builds the full router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Post("/chat", h.Chat)
	if h.Events != nil {
		r.Get("/ws", h.Events)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/books", h.SearchBooks)
		r.Get("/books/featured", h.FeaturedBooks)
		r.Get("/books/genre/{genre}", h.BooksByGenre)
		r.Get("/books/{id}", h.GetBook)
		r.Get("/books/{id}/pages/{page}", h.BookPage)
		r.Get("/books/{id}/reviews", h.ListReviews)
		r.Get("/filters", h.FilterRefs)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireToken(h.jwtSecret))

			r.Post("/books/{id}/reviews", h.AddReview)
			r.Post("/reviews/{id}/like", h.LikeReview)
			r.Post("/reviews/{id}/helpful", h.MarkReviewHelpful)

			r.Get("/me/favorites", h.ListFavorites)
			r.Post("/me/favorites/{bookID}/toggle", h.ToggleFavorite)

			r.Get("/me/progress", h.ListProgress)
			r.Patch("/me/progress", h.UpdateProgress)

			r.Get("/me/bookmarks", h.ListBookmarks)
			r.Post("/me/bookmarks", h.AddBookmark)
			r.Delete("/me/bookmarks/{id}", h.RemoveBookmark)
			r.Post("/me/reader/{bookID}/bookmark", h.ToggleReaderBookmark)

			r.Get("/me/highlights", h.ListHighlights)
			r.Post("/me/highlights", h.AddHighlight)

			r.Get("/me/lists", h.ListReadingLists)
			r.Post("/me/lists", h.CreateReadingList)
			r.Post("/me/lists/{id}/books", h.AddBookToList)

			r.Get("/me/stats", h.ReadingStats)

			r.Get("/me/preferences", h.GetPreferences)
			r.Put("/me/preferences", h.PutPreferences)
		})
	})

	return r
}

type httpError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	var e httpError
	e.Error.Code = code
	e.Error.Message = msg
	writeJSON(w, status, e)
}

func (h *Handler) writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid input")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, core.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "resource already exists")
	default:
		h.log.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// ---- auth ----

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decodeBody(r, &body); err != nil || body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "username and password required")
		return
	}
	u, err := h.Users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "could not create user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "username": u.Username})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
		return
	}
	u, err := h.Users.VerifyLogin(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	token, err := auth.SignToken(h.jwtSecret, u.ID, u.Username, tokenTTL)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ---- catalog ----

// SearchBooks handles GET /api/v1/books with query, filter, sort and paging
// parameters bound from the query string.
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		query   string
		f       model.FilterOptions
		page    = 1
		limit   = core.DefaultPageLimit
		sortBy  string
		sortOrd string
	)
	params := []struct {
		name string
		dst  any
	}{
		{"q", &query},
		{"genre", &f.Genres},
		{"language", &f.Languages},
		{"author", &f.Authors},
		{"min_rating", &f.MinRating},
		{"published_after", &f.PublishedAfter},
		{"published_before", &f.PublishedBefore},
		{"sort_by", &sortBy},
		{"sort_order", &sortOrd},
		{"page", &page},
		{"limit", &limit},
	}
	for _, p := range params {
		if !q.Has(p.name) {
			continue
		}
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dst); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid parameter "+p.name)
			return
		}
	}
	f.SortBy = model.SortField(sortBy)
	f.SortOrder = model.SortOrder(sortOrd)

	res, err := h.Catalog.Search(r.Context(), query, f, page, limit)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) FeaturedBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.FeaturedBooks(r.Context())
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (h *Handler) BooksByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.BooksByGenre(r.Context(), chi.URLParam(r, "genre"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}

	out := map[string]any{"book": book}
	// best effort: include the caller's progress when a valid token is sent
	if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
		if claims, err := auth.ParseToken(h.jwtSecret, strings.TrimPrefix(bearer, "Bearer ")); err == nil {
			if p, err := h.Library.Progress(r.Context(), claims.UserID, book.ID); err == nil {
				out["progress"] = p
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// BookPage serves one reader page of a book's content.
func (h *Handler) BookPage(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid page")
		return
	}

	session, err := core.NewSession(book, auth.UserID(r.Context()), h.Library, core.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusNotFound, "NO_CONTENT", "book has no readable content")
		return
	}
	content, err := session.PageContent(page)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	session.GoTo(page)
	writeJSON(w, http.StatusOK, map[string]any{
		"bookId":     book.ID,
		"page":       page,
		"totalPages": session.TotalPages(),
		"progress":   session.Progress(),
		"content":    content,
	})
}

func (h *Handler) FilterRefs(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Catalog.FilterRefs(r.Context())
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// ---- chat ----

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "message required")
		return
	}

	reply, err := h.Assistant.Respond(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, core.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIAL", "Invalid Gemini API key")
	case errors.Is(err, core.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Please try again later.")
	case errors.Is(err, core.ErrContentBlocked):
		writeError(w, http.StatusBadRequest, "CONTENT_BLOCKED", "Content blocked by safety filters. Please rephrase your question.")
	default:
		h.writeCoreError(w, err)
	}
}

// ---- favorites ----

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Library.FavoriteBookIDs(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookIds": ids})
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	fav, err := h.Library.ToggleFavorite(r.Context(), auth.UserID(r.Context()), bookID)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookId": bookID, "favorite": fav})
}

// ---- progress ----

func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	out, err := h.Library.AllProgress(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": out})
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID    string `json:"bookId"`
		Page      int    `json:"page"`
		TimeSpent int    `json:"timeSpent"`
	}
	if err := decodeBody(r, &body); err != nil || body.BookID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "bookId required")
		return
	}
	p, err := h.Library.UpsertProgress(r.Context(), auth.UserID(r.Context()), body.BookID, body.Page, body.TimeSpent)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- bookmarks ----

func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	marks, err := h.Library.Bookmarks(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("bookId"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": marks})
}

func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID  string `json:"bookId"`
		Page    int    `json:"page"`
		Chapter string `json:"chapter"`
		Note    string `json:"note"`
	}
	if err := decodeBody(r, &body); err != nil || body.BookID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "bookId required")
		return
	}
	b, err := h.Library.AddBookmark(r.Context(), auth.UserID(r.Context()), body.BookID, body.Page, body.Chapter, body.Note)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.Library.RemoveBookmark(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleReaderBookmark(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Page int `json:"page"`
	}
	if err := decodeBody(r, &body); err != nil || body.Page < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "page required")
		return
	}
	bookID := chi.URLParam(r, "bookID")
	marked, err := h.Library.ToggleBookmark(r.Context(), auth.UserID(r.Context()), bookID, body.Page)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookId": bookID, "page": body.Page, "bookmarked": marked})
}

// ---- highlights ----

func (h *Handler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Library.Highlights(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("bookId"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"highlights": hs})
}

func (h *Handler) AddHighlight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID string `json:"bookId"`
		Text   string `json:"text"`
		Page   int    `json:"page"`
		Color  string `json:"color"`
		Note   string `json:"note"`
	}
	if err := decodeBody(r, &body); err != nil || body.BookID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "bookId required")
		return
	}
	hl, err := h.Library.AddHighlight(r.Context(), auth.UserID(r.Context()), body.BookID, body.Text, body.Page, model.HighlightColor(body.Color), body.Note)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hl)
}

// ---- reviews ----

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Library.Reviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": rs})
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating  int    `json:"rating"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
		return
	}
	rev, err := h.Library.AddReview(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), body.Rating, body.Title, body.Content)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *Handler) LikeReview(w http.ResponseWriter, r *http.Request) {
	rev, err := h.Library.LikeReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *Handler) MarkReviewHelpful(w http.ResponseWriter, r *http.Request) {
	rev, err := h.Library.MarkReviewHelpful(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

// ---- reading lists ----

func (h *Handler) ListReadingLists(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Library.ReadingLists(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": ls})
}

func (h *Handler) CreateReadingList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
		return
	}
	l, err := h.Library.CreateReadingList(r.Context(), auth.UserID(r.Context()), body.Name, body.Description, body.IsPublic)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) AddBookToList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID string `json:"bookId"`
	}
	if err := decodeBody(r, &body); err != nil || body.BookID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "bookId required")
		return
	}
	l, err := h.Library.AddBookToList(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), body.BookID)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ---- stats ----

func (h *Handler) ReadingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Library.Stats(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ---- preferences ----

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.Library.Preferences(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var p model.ReaderPreferences
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
		return
	}
	if err := h.Library.SavePreferences(r.Context(), auth.UserID(r.Context()), p); err != nil {
		h.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

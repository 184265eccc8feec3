package model

import "time"

// All core models live here together for simplicity.

type SortField string

const (
	SortByTitle      SortField = "title"
	SortByAuthor     SortField = "author"
	SortByRating     SortField = "rating"
	SortByPublished  SortField = "published"
	SortByPopularity SortField = "popularity"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Book is immutable reference data: loaded once at startup, never mutated.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	CoverImage    string   `json:"coverImage"`
	Genres        []string `json:"genre"`
	Language      string   `json:"language"`
	PublishedYear int      `json:"publishedYear"`
	Pages         int      `json:"pages"`
	Rating        float64  `json:"rating"`
	TotalReviews  int      `json:"totalReviews"`
	ISBN          string   `json:"isbn"`
	Publisher     string   `json:"publisher"`
	Content       string   `json:"-"`
	Preview       string   `json:"preview,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
	Tags          []string `json:"tags"`
}

type FilterOptions struct {
	Genres          []string
	Languages       []string
	Authors         []string
	MinRating       float64
	PublishedAfter  *int
	PublishedBefore *int
	SortBy          SortField
	SortOrder       SortOrder
}

type SearchResult struct {
	Books       []Book `json:"books"`
	Total       int    `json:"total"`
	Page        int    `json:"page"`
	HasNextPage bool   `json:"hasNextPage"`
}

// CatalogRefs are the reference lists a client needs to build filter controls.
type CatalogRefs struct {
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
	Authors   []string `json:"authors"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusReading    ProgressStatus = "reading"
	StatusPaused     ProgressStatus = "paused"
	StatusCompleted  ProgressStatus = "completed"
)

type ReadingProgress struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	BookID       string         `json:"bookId"`
	CurrentPage  int            `json:"currentPage"`
	TotalPages   int            `json:"totalPages"`
	Percentage   float64        `json:"percentage"`
	TimeSpent    int            `json:"timeSpent"` // minutes, cumulative
	LastReadDate time.Time      `json:"lastReadDate"`
	StartedDate  time.Time      `json:"startedDate"`
	FinishedDate *time.Time     `json:"finishedDate,omitempty"`
	Status       ProgressStatus `json:"status"`
}

type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	Page      int       `json:"page"`
	Chapter   string    `json:"chapter,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type HighlightColor string

const (
	ColorYellow HighlightColor = "yellow"
	ColorBlue   HighlightColor = "blue"
	ColorGreen  HighlightColor = "green"
	ColorPink   HighlightColor = "pink"
)

type Highlight struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	BookID    string         `json:"bookId"`
	Text      string         `json:"text"`
	Page      int            `json:"page"`
	Color     HighlightColor `json:"color"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	Rating    int       `json:"rating"` // 1-5
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Likes     int       `json:"likes"`
	Helpful   int       `json:"helpful"`
}

type ReadingList struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BookIDs     []string  `json:"bookIds"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PeriodStats is one calendar window of reading activity.
type PeriodStats struct {
	BooksRead int `json:"booksRead"`
	TimeSpent int `json:"timeSpent"` // minutes
}

// ReadingStats is derived on demand from progress and review state, never
// stored.
type ReadingStats struct {
	BooksRead      int         `json:"booksRead"`
	PagesRead      int         `json:"pagesRead"`
	TimeSpent      int         `json:"timeSpent"` // minutes
	AverageRating  float64     `json:"averageRating"`
	FavoriteGenres []string    `json:"favoriteGenres"`
	ReadingStreak  int         `json:"readingStreak"` // consecutive days, ending at the last read
	ThisWeek       PeriodStats `json:"thisWeek"`
	ThisMonth      PeriodStats `json:"thisMonth"`
	ThisYear       PeriodStats `json:"thisYear"`
}

// ReaderPreferences is pure view configuration; every field has an enumerated
// set of legal values, checked on write.
type ReaderPreferences struct {
	FontSize   string `json:"fontSize"`   // small | medium | large | xl
	FontFamily string `json:"fontFamily"` // serif | sans-serif | mono
	LineHeight string `json:"lineHeight"` // compact | normal | relaxed
	Theme      string `json:"theme"`      // light | sepia | dark
	Alignment  string `json:"alignment"`  // left | justify
	Margin     string `json:"margin"`     // narrow | normal | wide
}

type ChatTurn struct {
	Type    string `json:"type"` // user | assistant
	Content string `json:"content"`
}

type BookContext struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type ChatRequest struct {
	Message             string       `json:"message"`
	BookContext         *BookContext `json:"bookContext,omitempty"`
	SelectedText        string       `json:"selectedText,omitempty"`
	ConversationHistory []ChatTurn   `json:"conversationHistory,omitempty"`
}

type ChatReply struct {
	Message  string `json:"message"`
	Fallback bool   `json:"fallback,omitempty"`
	Model    string `json:"model,omitempty"`
}

// LibraryEvent fans out to connected clients when a user's library changes,
// so multiple open views stay in sync without polling.
type LibraryEvent struct {
	Type      string `json:"type"` // favorites | progress
	UserID    string `json:"userId"`
	BookID    string `json:"bookId"`
	Favorite  bool   `json:"favorite,omitempty"`
	Page      int    `json:"page,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

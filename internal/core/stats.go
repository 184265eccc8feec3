package core

import (
	"context"
	"sort"
	"time"

	"bookify/internal/core/model"
)

// Stats derives the user's reading statistics from progress, review and
// favorites state. Nothing is precomputed or stored; a user with no activity
// gets all zeroes.
func (s *LibraryService) Stats(ctx context.Context, userID string) (model.ReadingStats, error) {
	progress, err := s.Repo.ListProgress(ctx, userID)
	if err != nil {
		return model.ReadingStats{}, err
	}
	reviews, err := s.Repo.ListUserReviews(ctx, userID)
	if err != nil {
		return model.ReadingStats{}, err
	}
	favorites, err := s.Favorites.List(ctx, userID)
	if err != nil {
		return model.ReadingStats{}, err
	}

	var stats model.ReadingStats
	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	yearAgo := now.AddDate(-1, 0, 0)

	var reads []time.Time
	for _, p := range progress {
		stats.PagesRead += p.CurrentPage
		stats.TimeSpent += p.TimeSpent
		if p.Status == model.StatusCompleted && p.FinishedDate != nil {
			stats.BooksRead++
			if p.FinishedDate.After(weekAgo) {
				stats.ThisWeek.BooksRead++
			}
			if p.FinishedDate.After(monthAgo) {
				stats.ThisMonth.BooksRead++
			}
			if p.FinishedDate.After(yearAgo) {
				stats.ThisYear.BooksRead++
			}
		}
		// time is attributed to the period of the last read; there is no
		// per-day activity log to split it further
		if p.LastReadDate.After(weekAgo) {
			stats.ThisWeek.TimeSpent += p.TimeSpent
		}
		if p.LastReadDate.After(monthAgo) {
			stats.ThisMonth.TimeSpent += p.TimeSpent
		}
		if p.LastReadDate.After(yearAgo) {
			stats.ThisYear.TimeSpent += p.TimeSpent
		}
		if !p.LastReadDate.IsZero() {
			reads = append(reads, p.LastReadDate)
		}
	}
	stats.ReadingStreak = streakDays(reads)

	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		stats.AverageRating = float64(sum) / float64(len(reviews))
	}

	stats.FavoriteGenres = s.topGenres(ctx, progress, favorites)
	return stats, nil
}

// topGenres counts genres across the user's favorite and in-progress books
// and returns the three most common, ties broken alphabetically.
func (s *LibraryService) topGenres(ctx context.Context, progress []model.ReadingProgress, favoriteIDs []string) []string {
	counts := map[string]int{}
	seen := map[string]bool{}
	add := func(bookID string) {
		if seen[bookID] {
			return
		}
		seen[bookID] = true
		b, err := s.Books.GetByID(ctx, bookID)
		if err != nil {
			return
		}
		for _, g := range b.Genres {
			counts[g]++
		}
	}
	for _, id := range favoriteIDs {
		add(id)
	}
	for _, p := range progress {
		add(p.BookID)
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if len(genres) > 3 {
		genres = genres[:3]
	}
	return genres
}

// streakDays counts consecutive calendar days with reading activity, ending
// at the most recent read day.
func streakDays(reads []time.Time) int {
	if len(reads) == 0 {
		return 0
	}
	type day struct{ y, m, d int }
	days := map[day]bool{}
	var latest time.Time
	for _, t := range reads {
		y, m, d := t.Date()
		days[day{y, int(m), d}] = true
		if t.After(latest) {
			latest = t
		}
	}

	streak := 0
	for cur := latest; ; cur = cur.AddDate(0, 0, -1) {
		y, m, d := cur.Date()
		if !days[day{y, int(m), d}] {
			break
		}
		streak++
	}
	return streak
}

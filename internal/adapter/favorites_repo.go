package adapter

import (
	"context"
	"database/sql"
)

// FavoritesRepo is the durable favorites set, one row per (user, book).
// A missing row set is an empty set, never an error.
type FavoritesRepo struct {
	db *sql.DB
}

func NewFavoritesRepo(db *sql.DB) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

func (r *FavoritesRepo) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT book_id FROM favorites WHERE user_id = ? ORDER BY created_at, book_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *FavoritesRepo) Contains(ctx context.Context, userID, bookID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND book_id = ?`, userID, bookID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *FavoritesRepo) Add(ctx context.Context, userID, bookID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites(user_id, book_id) VALUES(?, ?)`, userID, bookID)
	return err
}

func (r *FavoritesRepo) Remove(ctx context.Context, userID, bookID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND book_id = ?`, userID, bookID)
	return err
}

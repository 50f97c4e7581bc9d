package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/skycast/internal/favorites"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores each user's favorite places as one comma-joined column.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// GetFavorites returns the user's saved places in insertion order.
func (r *Repository) GetFavorites(ctx context.Context, userID int64) ([]string, error) {
	const q = `SELECT favorite_places FROM users WHERE id = $1`

	var joined string
	if err := r.q.QueryRow(ctx, q, userID).Scan(&joined); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, favorites.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying favorites for user %d: %w", userID, err)
	}
	return favorites.Split(joined), nil
}

// AddFavorite appends place to the user's favorites and returns the updated
// list. A place already saved (ignoring case) is rejected with
// favorites.ErrDuplicate.
func (r *Repository) AddFavorite(ctx context.Context, userID int64, place string) ([]string, error) {
	place, err := favorites.Validate(place)
	if err != nil {
		return nil, err
	}

	const q = `
		UPDATE users
		SET favorite_places = CASE
		        WHEN favorite_places = '' THEN $2
		        ELSE favorite_places || ',' || $2
		    END,
		    updated_at = NOW()
		WHERE id = $1
		AND position(',' || lower($2) || ',' IN ',' || lower(favorite_places) || ',') = 0
		RETURNING favorite_places
	`

	var joined string
	err = r.q.QueryRow(ctx, q, userID, place).Scan(&joined)
	if err == nil {
		return favorites.Split(joined), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adding favorite %s for user %d: %w", place, userID, err)
	}

	// No row updated: either the user is missing or the place is already saved.
	if _, getErr := r.GetFavorites(ctx, userID); getErr != nil {
		return nil, getErr
	}
	return nil, favorites.ErrDuplicate
}

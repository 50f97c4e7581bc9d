package api

import (
	"context"

	"github.com/neexbeast/skycast/internal/forecast"
)

// ForecastRunner runs the forecast pipeline for one city.
type ForecastRunner interface {
	Run(ctx context.Context, city string) (*forecast.Result, error)
}

// FavoritesRepo defines the favorites storage operations needed by handlers.
type FavoritesRepo interface {
	GetFavorites(ctx context.Context, userID int64) ([]string, error)
	AddFavorite(ctx context.Context, userID int64, place string) ([]string, error)
}

// pinger is satisfied by the database and Redis health adapters.
type pinger interface {
	Ping(ctx context.Context) error
}

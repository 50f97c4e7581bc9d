package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/skycast/internal/favorites"
	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/pager"
	"github.com/neexbeast/skycast/internal/search"
	"github.com/neexbeast/skycast/internal/session"
)

var validate = validator.New()

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	runner   ForecastRunner
	repo     FavoritesRepo
	horizons session.Horizons
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(runner ForecastRunner, repo FavoritesRepo, horizons session.Horizons, log *slog.Logger) *Handlers {
	return &Handlers{
		runner:   runner,
		repo:     repo,
		horizons: horizons,
		log:      log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// forecastQuery holds the query parameters of GET /api/v1/forecast.
type forecastQuery struct {
	City   string `validate:"required,max=100"`
	Offset int    `validate:"min=0"`
	Unit   string `validate:"omitempty,oneof=c f C F"`
}

type forecastResponse struct {
	Tier string `json:"tier"`
	search.Page
}

// GetForecast handles GET /api/v1/forecast?city=&offset=&unit=.
// Runs the pipeline and renders the window at offset for the caller's tier.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := forecastQuery{
		City: r.URL.Query().Get("city"),
		Unit: r.URL.Query().Get("unit"),
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		q.Offset = n
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := forecast.ParseUnit(q.Unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.runner.Run(r.Context(), q.City)
	if err != nil {
		status := pipelineStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("forecast pipeline failed", "city", q.City, "err", err)
		}
		writeError(w, status, forecast.Notice(err))
		return
	}

	tier := session.TierFrom(r.Context())
	p := pager.New(res.CurrentIndex, h.horizons.For(tier), len(res.Series.Hourly))
	p.SetOffset(q.Offset)

	writeJSON(w, http.StatusOK, forecastResponse{Tier: tier.String(), Page: search.Render(res, p, unit)})
}

func pipelineStatus(err error) int {
	switch {
	case errors.Is(err, forecast.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, forecast.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

type favoritesResponse struct {
	UserID         int64  `json:"user_id"`
	FavoritePlaces string `json:"favorite_places"`
}

type addFavoriteRequest struct {
	NewPlace string `json:"new_place" validate:"required,max=100,excludesall=0x2C"`
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// GetFavorites handles GET /api/v1/users/{id}/favorites.
func (h *Handlers) GetFavorites(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	places, err := h.repo.GetFavorites(r.Context(), id)
	if err != nil {
		h.writeFavoritesError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{UserID: id, FavoritePlaces: favorites.Join(places)})
}

// AddFavorite handles POST /api/v1/users/{id}/favorites with {"new_place"}.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	places, err := h.repo.AddFavorite(r.Context(), id, req.NewPlace)
	if err != nil {
		h.writeFavoritesError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{UserID: id, FavoritePlaces: favorites.Join(places)})
}

func (h *Handlers) writeFavoritesError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, favorites.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, favorites.ErrDuplicate):
		writeError(w, http.StatusConflict, "place already in favorites")
	case errors.Is(err, favorites.ErrInvalidPlace):
		writeError(w, http.StatusBadRequest, "invalid place name")
	default:
		h.log.Error("favorites store failed", "user_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HealthHandlerFunc returns an http.HandlerFunc that pings db and redis
// concurrently. Returns 200 if both are ok, 503 otherwise.
func HealthHandlerFunc(db, redis pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		dbStatus, redisStatus := "ok", "ok"

		var g errgroup.Group
		g.Go(func() error {
			if err := db.Ping(ctx); err != nil {
				log.Error("health check: db ping failed", "err", err)
				dbStatus = "error"
			}
			return nil
		})
		g.Go(func() error {
			if err := redis.Ping(ctx); err != nil {
				log.Error("health check: redis ping failed", "err", err)
				redisStatus = "error"
			}
			return nil
		})
		_ = g.Wait()

		status, overall := http.StatusOK, "ok"
		if dbStatus != "ok" || redisStatus != "ok" {
			status, overall = http.StatusServiceUnavailable, "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}

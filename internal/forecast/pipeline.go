package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// geoResolver is the interface satisfied by GeoClient.
type geoResolver interface {
	Resolve(ctx context.Context, name string) (Place, error)
}

// forecastFetcher is the interface satisfied by ForecastClient.
type forecastFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (Forecast, error)
}

// clockResolver is the interface satisfied by ClockClient.
type clockResolver interface {
	Now(ctx context.Context, tz string, loc *time.Location) (time.Time, error)
}

// Cache stores upstream lookups between runs. Misses return nil, nil.
// The clock is never cached.
type Cache interface {
	GetPlace(ctx context.Context, name string) (*Place, error)
	SetPlace(ctx context.Context, name string, place *Place) error
	GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error)
	SetForecast(ctx context.Context, lat, lon float64, f *Forecast) error
}

// Pipeline chains geocoding, forecast and clock lookups for one search.
type Pipeline struct {
	geo      geoResolver
	forecast forecastFetcher
	clock    clockResolver
	cache    Cache
	log      *slog.Logger
}

// NewPipeline constructs a Pipeline with production clients. cache may be nil.
func NewPipeline(cache Cache, log *slog.Logger) *Pipeline {
	return NewPipelineWithClients(NewGeoClient(), NewForecastClient(), NewClockClient(), cache, log)
}

// NewPipelineWithClients constructs a Pipeline with injectable clients (used in tests).
func NewPipelineWithClients(g geoResolver, f forecastFetcher, c clockResolver, cache Cache, log *slog.Logger) *Pipeline {
	return &Pipeline{geo: g, forecast: f, clock: c, cache: cache, log: log}
}

// Run resolves city and returns the completed Result. Stages run strictly in
// order and any failure other than the clock's is terminal: no partial
// result is returned and nothing is retried.
func (p *Pipeline) Run(ctx context.Context, city string) (*Result, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("running forecast pipeline: empty city: %w", ErrInvalidInput)
	}

	log := p.log.With("run_id", uuid.NewString(), "city", city)

	place, err := p.resolvePlace(ctx, log, city)
	if err != nil {
		return nil, err
	}

	fc, err := p.fetchForecast(ctx, log, place)
	if err != nil {
		return nil, err
	}

	now, source, err := p.resolveNow(ctx, log, fc)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Series:       Series{Place: place, Forecast: fc},
		Now:          now,
		NowSource:    source,
		CurrentIndex: CurrentIndex(now, fc.Hourly),
	}
	log.Info("forecast pipeline completed",
		"place", place.Label(),
		"timezone", fc.Timezone,
		"hours", len(fc.Hourly),
		"current_index", res.CurrentIndex,
		"now_source", source,
	)
	return res, nil
}

func (p *Pipeline) resolvePlace(ctx context.Context, log *slog.Logger, city string) (Place, error) {
	if p.cache != nil {
		cached, err := p.cache.GetPlace(ctx, city)
		if err != nil {
			log.Warn("place cache get failed", "err", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	place, err := p.geo.Resolve(ctx, city)
	if err != nil {
		return Place{}, fmt.Errorf("resolving %s: %w", city, err)
	}

	if p.cache != nil {
		if err := p.cache.SetPlace(ctx, city, &place); err != nil {
			log.Warn("place cache set failed", "err", err)
		}
	}
	return place, nil
}

func (p *Pipeline) fetchForecast(ctx context.Context, log *slog.Logger, place Place) (Forecast, error) {
	if p.cache != nil {
		cached, err := p.cache.GetForecast(ctx, place.Latitude, place.Longitude)
		if err != nil {
			log.Warn("forecast cache get failed", "err", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	fc, err := p.forecast.Fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast for %s: %w", place.Label(), err)
	}

	if p.cache != nil {
		if err := p.cache.SetForecast(ctx, place.Latitude, place.Longitude, &fc); err != nil {
			log.Warn("forecast cache set failed", "err", err)
		}
	}
	return fc, nil
}

// resolveNow asks the clock service for the zone's current time. When the
// service is unavailable the current-conditions timestamp stands in.
func (p *Pipeline) resolveNow(ctx context.Context, log *slog.Logger, fc Forecast) (time.Time, NowSource, error) {
	now, err := p.clock.Now(ctx, fc.Timezone, fc.Location())
	if err == nil {
		return now, NowFromClock, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return time.Time{}, "", fmt.Errorf("resolving current time: %w", ctxErr)
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		return time.Time{}, "", fmt.Errorf("resolving current time: %w", err)
	}

	log.Warn("clock service unavailable, using current-conditions time",
		"timezone", fc.Timezone,
		"fallback", fc.Current.Time,
		"err", err,
	)
	return fc.Current.Time, NowFromForecast, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/skycast/internal/forecast"
)

const (
	defaultPlaceTTL    = 24 * time.Hour
	defaultForecastTTL = 15 * time.Minute
)

// Cache stores geocoding and forecast lookups in Redis as JSON. It satisfies
// forecast.Cache.
type Cache struct {
	client      *redis.Client
	placeTTL    time.Duration
	forecastTTL time.Duration
}

// NewCache constructs a Cache with the default TTLs: a day for places and
// fifteen minutes for forecasts.
func NewCache(client *redis.Client) *Cache {
	return NewCacheWithTTL(client, defaultPlaceTTL, defaultForecastTTL)
}

// NewCacheWithTTL constructs a Cache with explicit TTLs. Non-positive values
// fall back to the defaults.
func NewCacheWithTTL(client *redis.Client, placeTTL, forecastTTL time.Duration) *Cache {
	if placeTTL <= 0 {
		placeTTL = defaultPlaceTTL
	}
	if forecastTTL <= 0 {
		forecastTTL = defaultForecastTTL
	}
	return &Cache{client: client, placeTTL: placeTTL, forecastTTL: forecastTTL}
}

var _ forecast.Cache = (*Cache)(nil)

// placeKey returns the Redis key for a searched name.
func placeKey(name string) string {
	return "place:" + strings.ToLower(strings.TrimSpace(name))
}

// forecastKey rounds coordinates to two decimals (about 1 km) so nearby
// lookups share an entry.
func forecastKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.2f,%.2f", lat, lon)
}

// GetPlace returns the cached place for name, or nil, nil on a miss.
func (c *Cache) GetPlace(ctx context.Context, name string) (*forecast.Place, error) {
	var p forecast.Place
	ok, err := c.get(ctx, placeKey(name), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetPlace stores place under name.
func (c *Cache) SetPlace(ctx context.Context, name string, place *forecast.Place) error {
	if place == nil {
		return nil
	}
	return c.set(ctx, placeKey(name), place, c.placeTTL)
}

// GetForecast returns the cached forecast for the coordinates, or nil, nil on a miss.
func (c *Cache) GetForecast(ctx context.Context, lat, lon float64) (*forecast.Forecast, error) {
	var f forecast.Forecast
	ok, err := c.get(ctx, forecastKey(lat, lon), &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

// SetForecast stores f for the coordinates.
func (c *Cache) SetForecast(ctx context.Context, lat, lon float64, f *forecast.Forecast) error {
	if f == nil {
		return nil
	}
	return c.set(ctx, forecastKey(lat, lon), f, c.forecastTTL)
}

// Delete removes the cached place for name.
func (c *Cache) Delete(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, placeKey(name)).Err(); err != nil {
		return fmt.Errorf("cache delete for %s: %w", name, err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

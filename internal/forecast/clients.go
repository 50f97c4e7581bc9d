package forecast

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ---- Open-Meteo geocoding ----

// GeoClient resolves free-text place names through the Open-Meteo geocoding API.
type GeoClient struct {
	baseURL string
	up      *upstream
}

const geocodeDefaultURL = "https://geocoding-api.open-meteo.com/v1/search"

// NewGeoClient constructs a GeoClient using the production URL.
func NewGeoClient() *GeoClient {
	return NewGeoClientWithURL(geocodeDefaultURL)
}

// NewGeoClientWithURL constructs a GeoClient pointing at a custom base URL (for tests).
func NewGeoClientWithURL(baseURL string) *GeoClient {
	return &GeoClient{baseURL: baseURL, up: newUpstream("geocoding")}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Resolve returns the provider's first match for name. There is no
// disambiguation between places sharing a name.
func (c *GeoClient) Resolve(ctx context.Context, name string) (Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, fmt.Errorf("resolving place: empty name: %w", ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("format", "json")

	var raw geocodeResponse
	if err := c.up.getJSON(ctx, c.baseURL+"?"+params.Encode(), &raw); err != nil {
		return Place{}, fmt.Errorf("geocoding %s: %w", name, err)
	}

	if len(raw.Results) == 0 {
		return Place{}, fmt.Errorf("geocoding %s: no results: %w", name, ErrNotFound)
	}

	first := raw.Results[0]
	return Place{
		Name:      first.Name,
		Admin1:    first.Admin1,
		Country:   first.Country,
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
	}, nil
}

// ---- Open-Meteo forecast ----

// ForecastClient fetches current conditions and the hourly series from Open-Meteo.
type ForecastClient struct {
	baseURL string
	up      *upstream
}

const (
	forecastDefaultURL = "https://api.open-meteo.com/v1/forecast"
	hourlyFields       = "weathercode,temperature_2m,apparent_temperature,precipitation_probability,relativehumidity_2m,is_day"
)

// NewForecastClient constructs a ForecastClient using the production URL.
func NewForecastClient() *ForecastClient {
	return NewForecastClientWithURL(forecastDefaultURL)
}

// NewForecastClientWithURL constructs a ForecastClient pointing at a custom base URL (for tests).
func NewForecastClientWithURL(baseURL string) *ForecastClient {
	return &ForecastClient{baseURL: baseURL, up: newUpstream("forecast")}
}

type forecastResponse struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	CurrentWeather   *struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
		IsDay       int     `json:"is_day"`
		WindSpeed   float64 `json:"windspeed"`
	} `json:"current_weather"`
	Hourly *hourlyColumns `json:"hourly"`
}

// hourlyColumns is the provider's column-oriented layout: one array per
// field, all indexed by position in Time.
type hourlyColumns struct {
	Time                     []string  `json:"time"`
	WeatherCode              []int     `json:"weathercode"`
	Temperature              []float64 `json:"temperature_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	PrecipitationProbability []*int    `json:"precipitation_probability"`
	RelativeHumidity         []*int    `json:"relativehumidity_2m"`
	IsDay                    []int     `json:"is_day"`
}

// Fetch retrieves the forecast for the given coordinates. The timezone is
// resolved by the provider from the coordinates.
func (c *ForecastClient) Fetch(ctx context.Context, lat, lon float64) (Forecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("hourly", hourlyFields)
	params.Set("timezone", "auto")

	var raw forecastResponse
	if err := c.up.getJSON(ctx, c.baseURL+"?"+params.Encode(), &raw); err != nil {
		return Forecast{}, fmt.Errorf("fetching forecast for %f,%f: %w", lat, lon, err)
	}

	if raw.CurrentWeather == nil {
		return Forecast{}, fmt.Errorf("forecast for %f,%f: missing current_weather: %w", lat, lon, ErrNotFound)
	}

	tz := raw.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc := zoneFor(tz, raw.UTCOffsetSeconds)

	currentTime, err := parseLocalTime(raw.CurrentWeather.Time, loc)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast for %f,%f: current_weather.time: %w: %w", lat, lon, ErrMalformedResponse, err)
	}

	hourly, err := zipHourly(raw.Hourly, loc)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast for %f,%f: %w", lat, lon, err)
	}

	return Forecast{
		Current: CurrentConditions{
			Time:        currentTime,
			Temperature: raw.CurrentWeather.Temperature,
			WeatherCode: raw.CurrentWeather.WeatherCode,
			IsDay:       raw.CurrentWeather.IsDay == 1,
			WindSpeed:   raw.CurrentWeather.WindSpeed,
		},
		Hourly:           hourly,
		Timezone:         tz,
		UTCOffsetSeconds: raw.UTCOffsetSeconds,
	}, nil
}

// zipHourly turns the column arrays into rows. Every column must be exactly
// as long as the time column and timestamps must be strictly ascending.
func zipHourly(cols *hourlyColumns, loc *time.Location) ([]HourlyRecord, error) {
	if cols == nil || cols.Time == nil {
		return []HourlyRecord{}, nil
	}

	n := len(cols.Time)
	lengths := map[string]int{
		"weathercode":               len(cols.WeatherCode),
		"temperature_2m":            len(cols.Temperature),
		"apparent_temperature":      len(cols.ApparentTemperature),
		"precipitation_probability": len(cols.PrecipitationProbability),
		"relativehumidity_2m":       len(cols.RelativeHumidity),
		"is_day":                    len(cols.IsDay),
	}
	for field, got := range lengths {
		if got != n {
			return nil, fmt.Errorf("hourly %s has %d entries, time has %d: %w", field, got, n, ErrMalformedResponse)
		}
	}

	rows := make([]HourlyRecord, n)
	for i := 0; i < n; i++ {
		ts, err := parseLocalTime(cols.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("hourly time[%d]: %w: %w", i, ErrMalformedResponse, err)
		}
		if i > 0 && !ts.After(rows[i-1].Time) {
			return nil, fmt.Errorf("hourly time[%d] %q is not after its predecessor: %w", i, cols.Time[i], ErrMalformedResponse)
		}
		rows[i] = HourlyRecord{
			Time:                     ts,
			Temperature:              cols.Temperature[i],
			ApparentTemperature:      cols.ApparentTemperature[i],
			PrecipitationProbability: cols.PrecipitationProbability[i],
			RelativeHumidity:         cols.RelativeHumidity[i],
			WeatherCode:              cols.WeatherCode[i],
			IsDay:                    cols.IsDay[i] == 1,
		}
	}
	return rows, nil
}

// ---- timeapi.io ----

// ClockClient asks timeapi.io for the current wall-clock time in a zone.
type ClockClient struct {
	baseURL string
	up      *upstream
}

const clockDefaultURL = "https://timeapi.io/api/Time/current/zone"

// NewClockClient constructs a ClockClient using the production URL.
func NewClockClient() *ClockClient {
	return NewClockClientWithURL(clockDefaultURL)
}

// NewClockClientWithURL constructs a ClockClient pointing at a custom base URL (for tests).
func NewClockClientWithURL(baseURL string) *ClockClient {
	return &ClockClient{baseURL: baseURL, up: newUpstream("timeapi")}
}

type clockResponse struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Now returns the current time in tz, interpreted in loc. Every failure is
// reported as ErrServiceUnavailable so callers can fall back.
func (c *ClockClient) Now(ctx context.Context, tz string, loc *time.Location) (time.Time, error) {
	endpoint := c.baseURL + "?timeZone=" + url.QueryEscape(tz)

	var raw clockResponse
	if err := c.up.getJSON(ctx, endpoint, &raw); err != nil {
		return time.Time{}, fmt.Errorf("time lookup for %s: %w: %w", tz, ErrServiceUnavailable, err)
	}

	now, err := parseLocalTime(raw.DateTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("time lookup for %s: %w: %w", tz, ErrServiceUnavailable, err)
	}
	return now, nil
}

// localLayouts are the zone-less layouts used by both providers. Fractional
// seconds are accepted on parse without being named in the layout.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// parseLocalTime parses a wall-clock timestamp in loc. Timestamps that carry
// their own offset are honoured as-is.
func parseLocalTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

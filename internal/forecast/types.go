package forecast

import (
	"strings"
	"time"
)

// Place is a resolved geocoding result.
type Place struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label joins the non-empty locality parts, e.g. "Paris, Île-de-France, France".
func (p Place) Label() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.Admin1, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// CurrentConditions is the provider's snapshot of the weather right now.
type CurrentConditions struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	WeatherCode int       `json:"weather_code"`
	IsDay       bool      `json:"is_day"`
	WindSpeed   float64   `json:"wind_speed"`
}

// HourlyRecord is one normalized row of the hourly series.
type HourlyRecord struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`
	ApparentTemperature      float64   `json:"apparent_temperature"`
	PrecipitationProbability *int      `json:"precipitation_probability,omitempty"`
	RelativeHumidity         *int      `json:"relative_humidity,omitempty"`
	WeatherCode              int       `json:"weather_code"`
	IsDay                    bool      `json:"is_day"`
}

// Forecast is what ForecastClient returns for a coordinate pair.
type Forecast struct {
	Current          CurrentConditions `json:"current"`
	Hourly           []HourlyRecord    `json:"hourly"`
	Timezone         string            `json:"timezone"`
	UTCOffsetSeconds int               `json:"utc_offset_seconds"`
}

// Location returns the forecast's zone, falling back to a fixed offset
// when the tz database does not know the name.
func (f Forecast) Location() *time.Location {
	return zoneFor(f.Timezone, f.UTCOffsetSeconds)
}

// Series is the bundle of one completed pipeline run. It is built once and
// replaced wholesale, never patched.
type Series struct {
	Place Place `json:"place"`
	Forecast
}

// NowSource records where the pipeline's "now" came from.
type NowSource string

const (
	NowFromClock    NowSource = "clock"
	NowFromForecast NowSource = "forecast"
)

// Result is a Series together with the resolved "now" and its row index.
type Result struct {
	Series       Series    `json:"series"`
	Now          time.Time `json:"now"`
	NowSource    NowSource `json:"now_source"`
	CurrentIndex int       `json:"current_index"`
}

// CurrentRow returns the hourly record at CurrentIndex, if any.
func (r *Result) CurrentRow() (HourlyRecord, bool) {
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Series.Hourly) {
		return HourlyRecord{}, false
	}
	return r.Series.Hourly[r.CurrentIndex], true
}

func zoneFor(tz string, offsetSeconds int) *time.Location {
	if tz == "" {
		tz = "UTC"
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	return time.FixedZone(tz, offsetSeconds)
}

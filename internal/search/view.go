package search

import (
	"strconv"

	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/pager"
)

const (
	dateLayout = "Monday, January 2, 2006"
	timeLayout = "15:04"
	missing    = "n/a"
)

// Conditions is the rendered current-conditions panel.
type Conditions struct {
	Location    string        `json:"location"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Description string        `json:"description"`
	Icon        forecast.Icon `json:"icon"`
	Temperature string        `json:"temperature"`
	FeelsLike   string        `json:"feels_like"`
	Rain        string        `json:"rain"`
	Humidity    string        `json:"humidity"`
	NowSource   string        `json:"now_source"`
}

// Row is one rendered hourly record.
type Row struct {
	Time        string        `json:"time"`
	Description string        `json:"description"`
	Icon        forecast.Icon `json:"icon"`
	Temperature string        `json:"temperature"`
	Rain        string        `json:"rain"`
}

// Page is the rendered result: the current panel plus the visible window.
type Page struct {
	Conditions Conditions `json:"current"`
	Rows       []Row      `json:"hourly"`
	Offset     int        `json:"offset"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
	Unit       string     `json:"unit"`
}

// Render builds the Page for res with the window held by p.
func Render(res *forecast.Result, p *pager.Pager, unit forecast.Unit) Page {
	cur := res.Series.Current
	c := Conditions{
		Location:    res.Series.Place.Label(),
		Date:        res.Now.Format(dateLayout),
		Time:        res.Now.Format(timeLayout),
		Description: forecast.Describe(cur.WeatherCode),
		Icon:        forecast.IconFor(cur.WeatherCode, cur.IsDay),
		Temperature: unit.Format(cur.Temperature),
		FeelsLike:   unit.Format(cur.Temperature),
		Rain:        missing,
		Humidity:    missing,
		NowSource:   string(res.NowSource),
	}
	if row, ok := res.CurrentRow(); ok {
		c.FeelsLike = unit.Format(row.ApparentTemperature)
		c.Rain = percent(row.PrecipitationProbability)
		c.Humidity = percent(row.RelativeHumidity)
	}

	w := p.Window()
	rows := make([]Row, 0, w.Len())
	for _, h := range res.Series.Hourly[w.Start:w.End] {
		rows = append(rows, Row{
			Time:        h.Time.Format(timeLayout),
			Description: forecast.Describe(h.WeatherCode),
			Icon:        forecast.IconFor(h.WeatherCode, h.IsDay),
			Temperature: unit.Format(h.Temperature),
			Rain:        percent(h.PrecipitationProbability),
		})
	}

	return Page{
		Conditions: c,
		Rows:       rows,
		Offset:     p.Offset(),
		HasNext:    p.CanNext(),
		HasPrev:    p.CanPrev(),
		Unit:       string(unit),
	}
}

func percent(v *int) string {
	if v == nil {
		return missing
	}
	return strconv.Itoa(*v) + "%"
}

package search_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/favorites"
	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/search"
	"github.com/neexbeast/skycast/internal/selector"
	"github.com/neexbeast/skycast/internal/session"
)

// ---- mock implementations ----

type mockRunner struct {
	runFn func(ctx context.Context, city string) (*forecast.Result, error)
	calls []string
}

func (m *mockRunner) Run(ctx context.Context, city string) (*forecast.Result, error) {
	m.calls = append(m.calls, city)
	return m.runFn(ctx, city)
}

type mockStore struct {
	listFn func(ctx context.Context, userID int64) ([]string, error)
	addFn  func(ctx context.Context, userID int64, place string) ([]string, error)
	adds   int
}

func (m *mockStore) List(ctx context.Context, userID int64) ([]string, error) {
	return m.listFn(ctx, userID)
}

func (m *mockStore) Add(ctx context.Context, userID int64, place string) ([]string, error) {
	m.adds++
	return m.addFn(ctx, userID, place)
}

type recordingTransition struct {
	steps *[]string
}

func (r recordingTransition) Hide(context.Context) error {
	*r.steps = append(*r.steps, "hide")
	return nil
}

func (r recordingTransition) Show(context.Context) error {
	*r.steps = append(*r.steps, "show")
	return nil
}

// ---- helpers ----

var start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult(city string, hours, current int) *forecast.Result {
	rows := make([]forecast.HourlyRecord, hours)
	for i := range rows {
		humidity := 55
		rows[i] = forecast.HourlyRecord{
			Time:                start.Add(time.Duration(i) * time.Hour),
			Temperature:         10 + float64(i),
			ApparentTemperature: 8 + float64(i),
			RelativeHumidity:    &humidity,
			WeatherCode:         61,
			IsDay:               true,
		}
	}
	now := start.Add(time.Duration(current)*time.Hour + 20*time.Minute)
	return &forecast.Result{
		Series: forecast.Series{
			Place: forecast.Place{Name: city, Country: "France"},
			Forecast: forecast.Forecast{
				Current:  forecast.CurrentConditions{Time: now, Temperature: 21.4, WeatherCode: 0, IsDay: true},
				Hourly:   rows,
				Timezone: "UTC",
			},
		},
		Now:          now,
		NowSource:    forecast.NowFromClock,
		CurrentIndex: current,
	}
}

func okRunner() *mockRunner {
	return &mockRunner{runFn: func(_ context.Context, city string) (*forecast.Result, error) {
		return sampleResult(city, 48, 3), nil
	}}
}

func signedIn() *session.Session { return &session.Session{UserID: 7, Token: "tok"} }

// ---- search ----

func TestSearch_SuccessShowsResult(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{}, discardLogger())

	require.NoError(t, c.Search(context.Background(), "Paris"))

	v := c.View()
	assert.Equal(t, search.PhaseResult, v.Phase)
	require.NotNil(t, v.Page)
	assert.Equal(t, "Paris, France", v.Page.Conditions.Location)
	assert.Equal(t, "Saturday, June 1, 2024", v.Page.Conditions.Date)
	assert.Equal(t, "03:20", v.Page.Conditions.Time)
	assert.Equal(t, "21 °C", v.Page.Conditions.Temperature)
	assert.Equal(t, "11 °C", v.Page.Conditions.FeelsLike)
	assert.Equal(t, "n/a", v.Page.Conditions.Rain)
	assert.Equal(t, "55%", v.Page.Conditions.Humidity)
	require.Len(t, v.Page.Rows, 5)
	assert.Equal(t, "04:00", v.Page.Rows[0].Time)
	assert.False(t, v.Page.HasPrev)
	assert.True(t, v.Page.HasNext)
}

func TestSearch_FailureResetsWithOneNotice(t *testing.T) {
	runner := &mockRunner{runFn: func(_ context.Context, _ string) (*forecast.Result, error) {
		return nil, fmt.Errorf("geocoding: %w", forecast.ErrNotFound)
	}}
	c := search.NewController(runner, search.Options{}, discardLogger())

	err := c.Search(context.Background(), "Atlantis")
	require.ErrorIs(t, err, forecast.ErrNotFound)

	v := c.View()
	assert.Equal(t, search.PhaseSearch, v.Phase)
	assert.Nil(t, v.Page)
	assert.Equal(t, "The city was not found. Check the spelling or try another one.", v.Notice)
	assert.Equal(t, "Atlantis", v.Input)
	assert.False(t, c.Busy())
}

func TestSearch_FailureDropsPreviousResult(t *testing.T) {
	fail := false
	runner := &mockRunner{runFn: func(_ context.Context, city string) (*forecast.Result, error) {
		if fail {
			return nil, forecast.ErrTransport
		}
		return sampleResult(city, 24, 0), nil
	}}
	c := search.NewController(runner, search.Options{}, discardLogger())

	require.NoError(t, c.Search(context.Background(), "Paris"))
	fail = true
	require.Error(t, c.Search(context.Background(), "Lima"))

	assert.Nil(t, c.View().Page)
	assert.Equal(t, "An error occurred. Please try again later.", c.View().Notice)
}

func TestSearch_SecondSearchWhileBusyIsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	runner := &mockRunner{runFn: func(_ context.Context, city string) (*forecast.Result, error) {
		close(entered)
		<-release
		return sampleResult(city, 24, 0), nil
	}}
	c := search.NewController(runner, search.Options{}, discardLogger())

	done := make(chan error, 1)
	go func() { done <- c.Search(context.Background(), "Paris") }()
	<-entered

	assert.True(t, c.Busy())
	assert.Equal(t, search.PhaseLoading, c.View().Phase)
	require.ErrorIs(t, c.Search(context.Background(), "Lima"), search.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"Paris"}, runner.calls)
	assert.False(t, c.Busy())
}

func TestSearch_AnonymousWindowStopsAtHorizon(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	pages := 1
	for c.Next() {
		pages++
	}
	assert.Equal(t, 2, pages)
	last := c.View().Page.Rows
	assert.Equal(t, "13:00", last[len(last)-1].Time, "row 3+10 is the last reachable one")
}

func TestSearch_AuthenticatedReachesFurther(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{Session: signedIn()}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	pages := 1
	for c.Next() {
		pages++
	}
	assert.Equal(t, 4, pages)

	require.True(t, c.Prev())
	assert.True(t, c.View().Page.HasNext)
}

func TestNextPrev_WithoutResult(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{}, discardLogger())
	assert.False(t, c.Next())
	assert.False(t, c.Prev())
}

func TestSetUnit(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	c.SetUnit(forecast.Fahrenheit)
	v := c.View()
	assert.Equal(t, "71 °F", v.Page.Conditions.Temperature)
	assert.Equal(t, "F", v.Page.Unit)
}

// ---- back ----

func TestBack_OrdersHideClearShow(t *testing.T) {
	var steps []string
	tr := recordingTransition{steps: &steps}
	c := search.NewController(okRunner(), search.Options{Transition: tr}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	require.NoError(t, c.Back(context.Background()))

	assert.Equal(t, []string{"hide", "show"}, steps)
	v := c.View()
	assert.Equal(t, search.PhaseSearch, v.Phase)
	assert.Nil(t, v.Page)
	assert.Empty(t, v.Input)
}

func TestBack_FadeSeesResultOnHideAndNoneOnShow(t *testing.T) {
	var c *search.Controller
	var hadPageOnHide, hadPageOnShow bool
	fade := search.Fade{
		Delay:  time.Millisecond,
		OnHide: func() { hadPageOnHide = c.View().Page != nil },
		OnShow: func() { hadPageOnShow = c.View().Page != nil },
	}
	c = search.NewController(okRunner(), search.Options{Transition: fade}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	require.NoError(t, c.Back(context.Background()))
	assert.True(t, hadPageOnHide)
	assert.False(t, hadPageOnShow)
}

func TestBack_FadeHonoursCancellation(t *testing.T) {
	c := search.NewController(okRunner(), search.Options{Transition: search.Fade{Delay: time.Hour}}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Paris"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Back(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, c.View().Page, "nothing is cleared when the hide phase is interrupted")
}

func TestBack_DiscardsInFlightSearch(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	runner := &mockRunner{runFn: func(_ context.Context, city string) (*forecast.Result, error) {
		close(entered)
		<-release
		return sampleResult(city, 24, 0), nil
	}}
	c := search.NewController(runner, search.Options{}, discardLogger())

	done := make(chan error, 1)
	go func() { done <- c.Search(context.Background(), "Paris") }()
	<-entered

	require.NoError(t, c.Back(context.Background()))
	close(release)
	require.NoError(t, <-done)

	v := c.View()
	assert.Equal(t, search.PhaseSearch, v.Phase)
	assert.Nil(t, v.Page)
}

// ---- favorites ----

func TestLoadFavorites_AuthenticatedOnly(t *testing.T) {
	store := &mockStore{listFn: func(_ context.Context, userID int64) ([]string, error) {
		assert.Equal(t, int64(7), userID)
		return []string{"Paris", "Lima"}, nil
	}}

	anon := search.NewController(okRunner(), search.Options{Store: store}, discardLogger())
	require.NoError(t, anon.LoadFavorites(context.Background()))
	assert.Empty(t, anon.View().Favorites)

	c := search.NewController(okRunner(), search.Options{Store: store, Session: signedIn()}, discardLogger())
	require.NoError(t, c.LoadFavorites(context.Background()))
	v := c.View()
	assert.Equal(t, []string{"Paris", "Lima"}, v.Favorites)
	assert.Len(t, v.Options, 3)
}

func TestLoadFavorites_Error(t *testing.T) {
	store := &mockStore{listFn: func(_ context.Context, _ int64) ([]string, error) {
		return nil, favorites.ErrUnauthorized
	}}
	c := search.NewController(okRunner(), search.Options{Store: store, Session: signedIn()}, discardLogger())

	err := c.LoadFavorites(context.Background())
	require.ErrorIs(t, err, favorites.ErrUnauthorized)
}

func TestSaveFavorite_Success(t *testing.T) {
	store := &mockStore{
		listFn: func(_ context.Context, _ int64) ([]string, error) { return []string{"Paris"}, nil },
		addFn: func(_ context.Context, _ int64, place string) ([]string, error) {
			return []string{"Paris", place}, nil
		},
	}
	c := search.NewController(okRunner(), search.Options{Store: store, Session: signedIn()}, discardLogger())
	require.NoError(t, c.LoadFavorites(context.Background()))
	require.NoError(t, c.Search(context.Background(), "Lima"))
	before := c.View().Page

	require.NoError(t, c.SaveFavorite(context.Background()))

	v := c.View()
	assert.Equal(t, []string{"Paris", "Lima"}, v.Favorites)
	assert.Equal(t, `City "Lima" stored in favorites.`, v.Notice)
	assert.Equal(t, before, v.Page, "saving never touches forecast state")
}

func TestSaveFavorite_Guards(t *testing.T) {
	store := &mockStore{
		listFn: func(_ context.Context, _ int64) ([]string, error) { return []string{"Paris"}, nil },
		addFn: func(_ context.Context, _ int64, _ string) ([]string, error) {
			t.Fatal("store should not be called")
			return nil, nil
		},
	}

	tests := []struct {
		name   string
		sess   *session.Session
		input  string
		want   error
		notice string
	}{
		{"anonymous", nil, "Lima", search.ErrSignedOut, "You must be logged in to save a city in favorites."},
		{"empty city", signedIn(), "  ", search.ErrNoCity, "There is no city selected for saving."},
		{"duplicate", signedIn(), "paris", search.ErrAlreadySaved, "The city is already in your favorites."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := search.NewController(okRunner(), search.Options{Store: store, Session: tt.sess}, discardLogger())
			require.NoError(t, c.LoadFavorites(context.Background()))
			c.SetInput(tt.input)

			err := c.SaveFavorite(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.notice, c.View().Notice)
		})
	}
	assert.Zero(t, store.adds)
}

func TestSaveFavorite_StoreFailureIsReportedOnly(t *testing.T) {
	store := &mockStore{
		listFn: func(_ context.Context, _ int64) ([]string, error) { return nil, nil },
		addFn: func(_ context.Context, _ int64, _ string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := search.NewController(okRunner(), search.Options{Store: store, Session: signedIn()}, discardLogger())
	require.NoError(t, c.Search(context.Background(), "Lima"))

	require.Error(t, c.SaveFavorite(context.Background()))
	v := c.View()
	assert.Equal(t, "Error saving the city in favorites.", v.Notice)
	assert.Equal(t, search.PhaseResult, v.Phase)
	assert.NotNil(t, v.Page)

	require.NoError(t, c.Search(context.Background(), "Quito"), "later searches are not blocked")
}

// ---- selector wiring ----

func TestSelector_CommitRunsSearch(t *testing.T) {
	store := &mockStore{listFn: func(_ context.Context, _ int64) ([]string, error) {
		return []string{"Paris", "Lima"}, nil
	}}
	runner := okRunner()
	c := search.NewController(runner, search.Options{Store: store, Session: signedIn()}, discardLogger())
	require.NoError(t, c.LoadFavorites(context.Background()))

	for _, key := range []string{"ArrowDown", "ArrowDown"} {
		_, ok, err := c.HandleKey(context.Background(), key)
		require.True(t, ok)
		require.NoError(t, err)
	}
	eff, ok, err := c.HandleKey(context.Background(), "Enter")
	require.True(t, ok)
	require.NoError(t, err)

	assert.Equal(t, selector.FocusTrigger, eff.Focus)
	assert.Equal(t, []string{"Lima"}, runner.calls)
	v := c.View()
	assert.Equal(t, search.PhaseResult, v.Phase)
	assert.Equal(t, "Lima", v.SelectorLabel)
	assert.Equal(t, "Lima", v.Input)
}

func TestSelector_ClearEmptiesInput(t *testing.T) {
	runner := okRunner()
	c := search.NewController(runner, search.Options{}, discardLogger())
	c.SetInput("Paris")

	_, err := c.Dispatch(context.Background(), selector.EventCommitClear)
	require.NoError(t, err)

	assert.Empty(t, c.View().Input)
	assert.Empty(t, runner.calls)
	assert.Equal(t, selector.Placeholder, c.View().SelectorLabel)
}

func TestSelector_EscapeDoesNotSearch(t *testing.T) {
	runner := okRunner()
	c := search.NewController(runner, search.Options{}, discardLogger())

	_, err := c.Dispatch(context.Background(), selector.EventOpen)
	require.NoError(t, err)
	eff, err := c.Dispatch(context.Background(), selector.EventEscape)
	require.NoError(t, err)

	assert.Equal(t, selector.FocusTrigger, eff.Focus)
	assert.False(t, c.View().Selector.Open)
	assert.Empty(t, runner.calls)
}

// Package search is the host flow around the forecast pipeline: it runs one
// search at a time, owns the result and its pager, discards results on Back,
// and wires the favorites selector and store together.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/neexbeast/skycast/internal/favorites"
	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/pager"
	"github.com/neexbeast/skycast/internal/selector"
	"github.com/neexbeast/skycast/internal/session"
)

// Runner runs the forecast pipeline for one city.
type Runner interface {
	Run(ctx context.Context, city string) (*forecast.Result, error)
}

// FavoritesStore reads and appends a user's saved places.
type FavoritesStore interface {
	List(ctx context.Context, userID int64) ([]string, error)
	Add(ctx context.Context, userID int64, place string) ([]string, error)
}

var (
	ErrBusy         = errors.New("a search is already in progress")
	ErrSignedOut    = errors.New("not signed in")
	ErrNoCity       = errors.New("no city selected")
	ErrAlreadySaved = errors.New("city already in favorites")
)

// Phase is which view the host shows.
type Phase int

const (
	PhaseSearch Phase = iota
	PhaseLoading
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResult:
		return "result"
	default:
		return "search"
	}
}

// Options configures a Controller.
type Options struct {
	Session    *session.Session
	Horizons   session.Horizons
	Store      FavoritesStore // nil disables favorites
	Transition Transition     // nil means Immediate
}

// Controller is the single owner of search state. Its methods are safe to
// call from more than one goroutine, but only one search runs at a time.
type Controller struct {
	runner     Runner
	store      FavoritesStore
	sess       *session.Session
	horizons   session.Horizons
	transition Transition
	log        *slog.Logger

	busy atomic.Bool

	mu        sync.Mutex
	gen       uint64
	phase     Phase
	input     string
	notice    string
	unit      forecast.Unit
	result    *forecast.Result
	pager     *pager.Pager
	favorites []string
	selector  *selector.Control
	selected  *string
}

// NewController constructs a Controller in the search phase.
func NewController(runner Runner, opts Options, log *slog.Logger) *Controller {
	if opts.Transition == nil {
		opts.Transition = Immediate{}
	}
	if opts.Session == nil {
		opts.Session = &session.Session{}
	}
	if opts.Horizons == (session.Horizons{}) {
		opts.Horizons = session.DefaultHorizons
	}
	c := &Controller{
		runner:     runner,
		store:      opts.Store,
		sess:       opts.Session,
		horizons:   opts.Horizons,
		transition: opts.Transition,
		log:        log.With("tier", opts.Session.Tier().String()),
		unit:       forecast.Celsius,
		favorites:  []string{},
	}
	c.selector = selector.New(nil, func(v string) { c.selected = &v })
	return c
}

// LoadFavorites reads the saved places of an authenticated session into the
// selector. Anonymous sessions have no favorites and this is a no-op.
func (c *Controller) LoadFavorites(ctx context.Context) error {
	if c.store == nil || c.sess.Tier() != session.Authenticated {
		return nil
	}
	favs, err := c.store.List(ctx, c.sess.UserID)
	if err != nil {
		c.log.Error("loading favorites failed", "user_id", c.sess.UserID, "err", err)
		return fmt.Errorf("loading favorites: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFavoritesLocked(favs)
	return nil
}

// SetInput replaces the search box text.
func (c *Controller) SetInput(city string) {
	c.mu.Lock()
	c.input = city
	c.mu.Unlock()
}

// Search runs the pipeline for city. A failure resets to the search phase
// with one notice; ErrBusy is returned without side effects while another
// search is running.
func (c *Controller) Search(ctx context.Context, city string) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.input = city
	c.notice = ""
	c.result, c.pager = nil, nil
	c.phase = PhaseLoading
	c.mu.Unlock()

	res, err := c.runner.Run(ctx, city)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Info("discarding stale search result", "city", city)
		return nil
	}
	if err != nil {
		c.log.Warn("search failed", "city", city, "err", err)
		c.phase = PhaseSearch
		c.notice = forecast.Notice(err)
		return err
	}

	c.result = res
	c.pager = pager.New(res.CurrentIndex, c.horizons.For(c.sess.Tier()), len(res.Series.Hourly))
	c.phase = PhaseResult
	return nil
}

// Busy reports whether a search is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Next pages forward. It reports whether the window moved.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager != nil && c.pager.Next()
}

// Prev pages back. It reports whether the window moved.
func (c *Controller) Prev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager != nil && c.pager.Prev()
}

// Back leaves the result view. The transition hides the stale view, then the
// result (or an in-flight search) is discarded, then the search view is shown.
func (c *Controller) Back(ctx context.Context) error {
	if err := c.transition.Hide(ctx); err != nil {
		return fmt.Errorf("hiding result view: %w", err)
	}

	c.mu.Lock()
	c.gen++
	c.result, c.pager = nil, nil
	c.input = ""
	c.notice = ""
	c.phase = PhaseSearch
	c.mu.Unlock()

	if err := c.transition.Show(ctx); err != nil {
		return fmt.Errorf("showing search view: %w", err)
	}
	return nil
}

// SetUnit switches the temperature display unit.
func (c *Controller) SetUnit(u forecast.Unit) {
	c.mu.Lock()
	c.unit = u
	c.mu.Unlock()
}

// SaveFavorite appends the current search text to the user's favorites.
// It never touches forecast state; the outcome is left in Notice.
func (c *Controller) SaveFavorite(ctx context.Context) error {
	c.mu.Lock()
	city := strings.TrimSpace(c.input)
	favs := c.favorites
	c.mu.Unlock()

	var err error
	switch {
	case c.store == nil || c.sess.Tier() != session.Authenticated:
		err = ErrSignedOut
	case city == "":
		err = ErrNoCity
	case favorites.Contains(favs, city):
		err = ErrAlreadySaved
	}
	if err == nil {
		var updated []string
		updated, err = c.store.Add(ctx, c.sess.UserID, city)
		if err == nil {
			c.mu.Lock()
			c.setFavoritesLocked(updated)
			c.notice = fmt.Sprintf("City %q stored in favorites.", city)
			c.mu.Unlock()
			return nil
		}
		c.log.Error("saving favorite failed", "city", city, "err", err)
	}

	c.mu.Lock()
	c.notice = saveNotice(err)
	c.mu.Unlock()
	return err
}

func saveNotice(err error) string {
	switch {
	case errors.Is(err, ErrSignedOut), errors.Is(err, favorites.ErrUnauthorized):
		return "You must be logged in to save a city in favorites."
	case errors.Is(err, ErrNoCity):
		return "There is no city selected for saving."
	case errors.Is(err, ErrAlreadySaved), errors.Is(err, favorites.ErrDuplicate):
		return "The city is already in your favorites."
	default:
		return "Error saving the city in favorites."
	}
}

func (c *Controller) setFavoritesLocked(favs []string) {
	c.favorites = append([]string(nil), favs...)
	c.selector.SetFavorites(c.favorites)
}

// Dispatch sends ev to the favorites selector. Committing a favorite runs a
// search for it; committing the clear option empties the search text.
func (c *Controller) Dispatch(ctx context.Context, ev selector.Event) (selector.Effect, error) {
	c.mu.Lock()
	c.selected = nil
	eff := c.selector.Dispatch(ev)
	picked := c.selected
	c.mu.Unlock()

	return eff, c.applySelection(ctx, picked)
}

// HandleKey maps a key name to a selector event and dispatches it. ok is
// false when the key means nothing in the selector's current state.
func (c *Controller) HandleKey(ctx context.Context, key string) (eff selector.Effect, ok bool, err error) {
	c.mu.Lock()
	c.selected = nil
	eff, ok = c.selector.HandleKey(key)
	picked := c.selected
	c.mu.Unlock()

	return eff, ok, c.applySelection(ctx, picked)
}

func (c *Controller) applySelection(ctx context.Context, picked *string) error {
	if picked == nil {
		return nil
	}
	if *picked == selector.ClearValue {
		c.SetInput("")
		return nil
	}
	return c.Search(ctx, *picked)
}

// View is a snapshot of everything a host renders.
type View struct {
	Phase         Phase
	Input         string
	Notice        string
	Unit          forecast.Unit
	Page          *Page
	Favorites     []string
	Selector      selector.State
	SelectorLabel string
	Options       []selector.Option
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Phase:         c.phase,
		Input:         c.input,
		Notice:        c.notice,
		Unit:          c.unit,
		Favorites:     append([]string(nil), c.favorites...),
		Selector:      c.selector.State(),
		SelectorLabel: c.selector.Label(),
		Options:       c.selector.Options(),
	}
	if c.result != nil && c.pager != nil {
		page := Render(c.result, c.pager, c.unit)
		v.Page = &page
	}
	return v
}

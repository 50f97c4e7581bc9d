// Package selector is a toolkit-independent single-choice listbox over a
// user's favorite places. It models the control as a finite-state machine
// over {closed, open(focus)}; hosts feed it events and apply the returned
// effects to their own widgets.
package selector

const (
	// ClearValue is the value of the sentinel option appended to every list.
	ClearValue = "clear"
	// ClearLabel is the sentinel option's label.
	ClearLabel = "Clear selection"
	// Placeholder is shown on the trigger while nothing is committed.
	Placeholder = "Select favorite city"
)

// Option is one selectable entry.
type Option struct {
	Value string
	Label string
}

// Options returns favorites followed by the clear sentinel.
func Options(favorites []string) []Option {
	opts := make([]Option, 0, len(favorites)+1)
	for _, f := range favorites {
		opts = append(opts, Option{Value: f, Label: f})
	}
	return append(opts, Option{Value: ClearValue, Label: ClearLabel})
}

// Event is an input to the state machine.
type Event int

const (
	EventOpen Event = iota
	EventToggle
	EventNext
	EventPrev
	EventCommit
	EventCommitClear
	EventEscape
	EventOutside
)

var eventNames = [...]string{"open", "toggle", "next", "prev", "commit", "commit-clear", "escape", "outside"}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// Target says where the host should move keyboard focus.
type Target int

const (
	FocusNone Target = iota
	FocusTrigger
	FocusOption
)

// Effect is what the host must do after a transition.
type Effect struct {
	Focus    Target
	Option   int    // valid when Focus == FocusOption
	Notify   string // valid when Notified
	Notified bool
}

// State is the machine's state. Focus is -1 while closed and in
// [0, len(options)) while open. Committed is "" when nothing is selected.
type State struct {
	Open      bool
	Focus     int
	Committed string
}

// Closed returns the initial state.
func Closed() State {
	return State{Focus: -1}
}

// Reduce applies ev to s. It is pure: the same inputs always give the same
// state and effect.
func Reduce(s State, options []Option, ev Event) (State, Effect) {
	n := len(options)
	if n == 0 {
		return Closed(), Effect{}
	}

	switch ev {
	case EventOpen:
		return State{Open: true, Focus: 0, Committed: s.Committed}, Effect{Focus: FocusOption, Option: 0}

	case EventToggle:
		if s.Open {
			return closeTo(s.Committed)
		}
		return Reduce(s, options, EventOpen)

	case EventNext, EventPrev:
		if !s.Open {
			return s, Effect{}
		}
		step := 1
		if ev == EventPrev {
			step = -1
		}
		focus := ((s.Focus+step)%n + n) % n
		return State{Open: true, Focus: focus, Committed: s.Committed}, Effect{Focus: FocusOption, Option: focus}

	case EventCommit:
		if !s.Open || s.Focus < 0 || s.Focus >= n {
			return s, Effect{}
		}
		opt := options[s.Focus]
		if opt.Value == ClearValue {
			return Reduce(s, options, EventCommitClear)
		}
		next, eff := closeTo(opt.Value)
		eff.Notify, eff.Notified = opt.Value, true
		return next, eff

	case EventCommitClear:
		next, eff := closeTo("")
		eff.Notify, eff.Notified = ClearValue, true
		return next, eff

	case EventEscape, EventOutside:
		if !s.Open {
			return s, Effect{}
		}
		return closeTo(s.Committed)
	}
	return s, Effect{}
}

func closeTo(committed string) (State, Effect) {
	return State{Open: false, Focus: -1, Committed: committed}, Effect{Focus: FocusTrigger}
}

// KeyEvent maps a keyboard key (DOM KeyboardEvent.key names) to an event the
// way a native select does. ok is false for keys the control ignores.
func KeyEvent(key string, open bool) (ev Event, ok bool) {
	if !open {
		switch key {
		case "ArrowDown", "Enter", " ":
			return EventOpen, true
		case "Escape":
			return EventEscape, true
		}
		return 0, false
	}
	switch key {
	case "ArrowDown":
		return EventNext, true
	case "ArrowUp":
		return EventPrev, true
	case "Enter", " ":
		return EventCommit, true
	case "Escape":
		return EventEscape, true
	case "Tab":
		return EventOutside, true
	}
	return 0, false
}

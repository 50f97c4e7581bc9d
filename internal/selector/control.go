package selector

// Control binds the state machine to a dynamic favorites list and notifies
// the host when a value is committed.
type Control struct {
	options  []Option
	state    State
	onSelect func(value string)
}

// New returns a closed Control over favorites. onSelect may be nil.
func New(favorites []string, onSelect func(value string)) *Control {
	return &Control{options: Options(favorites), state: Closed(), onSelect: onSelect}
}

// SetFavorites replaces the favorites list. An open control keeps its focus
// in range; a committed value that is no longer listed is dropped.
func (c *Control) SetFavorites(favorites []string) {
	c.options = Options(favorites)
	if c.state.Open && c.state.Focus >= len(c.options) {
		c.state.Focus = len(c.options) - 1
	}
	if c.state.Committed != "" && !c.has(c.state.Committed) {
		c.state.Committed = ""
	}
}

func (c *Control) has(value string) bool {
	for _, o := range c.options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Dispatch applies ev and calls the host callback when a value is committed.
func (c *Control) Dispatch(ev Event) Effect {
	next, eff := Reduce(c.state, c.options, ev)
	c.state = next
	if eff.Notified && c.onSelect != nil {
		c.onSelect(eff.Notify)
	}
	return eff
}

// HandleKey maps key through KeyEvent and dispatches it.
func (c *Control) HandleKey(key string) (Effect, bool) {
	ev, ok := KeyEvent(key, c.state.Open)
	if !ok {
		return Effect{}, false
	}
	return c.Dispatch(ev), true
}

// State returns the current state.
func (c *Control) State() State { return c.state }

// Options returns the current options, sentinel last.
func (c *Control) Options() []Option { return c.options }

// Label is the trigger text: the committed label or the placeholder.
func (c *Control) Label() string {
	for _, o := range c.options {
		if c.state.Committed != "" && o.Value == c.state.Committed {
			return o.Label
		}
	}
	return Placeholder
}

// TabIndex implements roving focus: only the focused option of an open
// control is reachable with Tab.
func (c *Control) TabIndex(i int) int {
	if c.state.Open && i == c.state.Focus {
		return 0
	}
	return -1
}

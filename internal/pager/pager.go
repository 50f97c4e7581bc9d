// Package pager computes the visible window over the hourly series.
package pager

// PageSize is the number of hourly rows shown at once and the step of Next/Prev.
const PageSize = 5

// Window is a half-open [Start, End) range of hourly row indexes.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of rows in the window.
func (w Window) Len() int { return w.End - w.Start }

// Empty reports whether the window holds no rows.
func (w Window) Empty() bool { return w.End == w.Start }

// limit is the first index the window may never reach: horizon rows past
// current, or the series length, whichever comes first.
func limit(current, horizon, length int) int {
	return max(0, min(current+1+horizon, length))
}

// Bounds returns the window for the given state. It always satisfies
// 0 <= Start <= End <= length and End-Start <= PageSize, and is empty when
// current+1 >= length.
func Bounds(current, offset, horizon, length int) Window {
	current, offset, horizon, length = max(current, 0), max(offset, 0), max(horizon, 0), max(length, 0)
	lim := limit(current, horizon, length)
	start := min(current+1+offset, lim)
	end := min(start+PageSize, lim)
	return Window{Start: start, End: end}
}

// Pager holds the offset for one displayed series.
type Pager struct {
	current int
	offset  int
	horizon int
	length  int
}

// New returns a Pager at offset 0 for a series of length rows whose "now"
// sits at current. horizon caps how far past current the caller may page.
func New(current, horizon, length int) *Pager {
	return &Pager{current: max(current, 0), horizon: max(horizon, 0), length: max(length, 0)}
}

// Offset returns the current offset.
func (p *Pager) Offset() int { return p.offset }

// Horizon returns the horizon cap.
func (p *Pager) Horizon() int { return p.horizon }

// Window returns the visible rows for the current offset.
func (p *Pager) Window() Window {
	return Bounds(p.current, p.offset, p.horizon, p.length)
}

// CanNext reports whether Next would advance.
func (p *Pager) CanNext() bool {
	return p.Window().End < limit(p.current, p.horizon, p.length)
}

// CanPrev reports whether Prev would move back.
func (p *Pager) CanPrev() bool { return p.offset > 0 }

// Next advances one page if the window has not reached its cap.
func (p *Pager) Next() bool {
	if !p.CanNext() {
		return false
	}
	p.offset += PageSize
	return true
}

// Prev moves back one page, floored at offset 0.
func (p *Pager) Prev() bool {
	if !p.CanPrev() {
		return false
	}
	p.offset = max(p.offset-PageSize, 0)
	return true
}

// SetOffset moves to offset, clamped to [0, horizon]. Used to restore a
// position carried by a stateless caller.
func (p *Pager) SetOffset(offset int) {
	p.offset = min(max(offset, 0), p.horizon)
}

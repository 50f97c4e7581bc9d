package search

import (
	"context"
	"time"
)

// Transition wraps the discard of a result view. Hide runs before state is
// cleared and Show after it.
type Transition interface {
	Hide(ctx context.Context) error
	Show(ctx context.Context) error
}

// Immediate clears the view with no delay.
type Immediate struct{}

func (Immediate) Hide(context.Context) error { return nil }
func (Immediate) Show(context.Context) error { return nil }

// Fade waits Delay on each side of the clear. OnHide and OnShow, when set,
// are called as each phase starts so a host can render the fade.
type Fade struct {
	Delay  time.Duration
	OnHide func()
	OnShow func()
}

func (f Fade) Hide(ctx context.Context) error {
	if f.OnHide != nil {
		f.OnHide()
	}
	return sleep(ctx, f.Delay)
}

func (f Fade) Show(ctx context.Context) error {
	if f.OnShow != nil {
		f.OnShow()
	}
	return sleep(ctx, f.Delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

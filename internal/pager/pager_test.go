package pager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/pager"
)

const (
	authHorizon = 20
	anonHorizon = 10
)

func TestBounds_Invariants(t *testing.T) {
	for length := 0; length <= 40; length++ {
		for current := 0; current < max(length, 1); current++ {
			for _, horizon := range []int{0, 3, anonHorizon, authHorizon, 100} {
				for offset := 0; offset <= horizon+10; offset++ {
					w := pager.Bounds(current, offset, horizon, length)
					require.GreaterOrEqual(t, w.Start, 0)
					require.LessOrEqual(t, w.Start, w.End)
					require.LessOrEqual(t, w.End, length)
					require.LessOrEqual(t, w.Len(), pager.PageSize)
					require.LessOrEqual(t, w.End, current+1+horizon)
				}
			}
		}
	}
}

func TestBounds_FirstPage(t *testing.T) {
	w := pager.Bounds(10, 0, authHorizon, 48)
	assert.Equal(t, pager.Window{Start: 11, End: 16}, w)
}

func TestBounds_EmptyWhenNowIsLastRow(t *testing.T) {
	w := pager.Bounds(23, 0, authHorizon, 24)
	assert.True(t, w.Empty())
	assert.Equal(t, 24, w.Start)

	w = pager.Bounds(0, 0, authHorizon, 0)
	assert.True(t, w.Empty())
}

func TestPager_NextThenPrevRestoresOffset(t *testing.T) {
	for _, horizon := range []int{anonHorizon, authHorizon} {
		for length := 1; length <= 60; length++ {
			for current := 0; current < length; current++ {
				p := pager.New(current, horizon, length)
				for {
					before := p.Offset()
					if !p.CanNext() {
						break
					}
					require.True(t, p.Next())
					require.True(t, p.Prev())
					require.Equal(t, before, p.Offset())
					p.Next()
				}
			}
		}
	}
}

func TestPager_AnonymousCapHoldsWithMoreRows(t *testing.T) {
	const current = 4
	p := pager.New(current, anonHorizon, 168)

	var pages []pager.Window
	pages = append(pages, p.Window())
	for p.Next() {
		pages = append(pages, p.Window())
	}

	require.Len(t, pages, 2)
	assert.Equal(t, pager.Window{Start: 5, End: 10}, pages[0])
	assert.Equal(t, pager.Window{Start: 10, End: 15}, pages[1])
	for _, w := range pages {
		assert.LessOrEqual(t, w.End, current+1+anonHorizon)
	}
	assert.False(t, p.Next())
	assert.LessOrEqual(t, p.Offset(), anonHorizon)
}

func TestPager_AuthenticatedReachesFurther(t *testing.T) {
	p := pager.New(4, authHorizon, 168)
	n := 1
	for p.Next() {
		n++
	}
	assert.Equal(t, 4, n)
	assert.Equal(t, pager.Window{Start: 20, End: 25}, p.Window())
}

func TestPager_ShortSeriesStopsAtLength(t *testing.T) {
	p := pager.New(10, authHorizon, 18)
	assert.Equal(t, pager.Window{Start: 11, End: 16}, p.Window())
	require.True(t, p.Next())
	assert.Equal(t, pager.Window{Start: 16, End: 18}, p.Window())
	assert.False(t, p.Next())
}

func TestPager_PrevFloorsAtZero(t *testing.T) {
	p := pager.New(0, authHorizon, 48)
	assert.False(t, p.CanPrev())
	assert.False(t, p.Prev())
	assert.Equal(t, 0, p.Offset())
}

func TestPager_SetOffsetClamps(t *testing.T) {
	p := pager.New(0, anonHorizon, 48)
	p.SetOffset(-5)
	assert.Equal(t, 0, p.Offset())
	p.SetOffset(500)
	assert.Equal(t, anonHorizon, p.Offset())
	w := p.Window()
	assert.LessOrEqual(t, w.End, 1+anonHorizon)
}

package pagination

import (
	"fmt"

	"github.com/csheth/pagewright/internal/pages"
	"github.com/csheth/pagewright/internal/surface"
)

// Strategy picks where the cursor lands when a page receives focus.
type Strategy int

const (
	FocusStart Strategy = iota
	FocusEnd
	FocusPreserve
)

func (s Strategy) String() string {
	switch s {
	case FocusStart:
		return "start"
	case FocusEnd:
		return "end"
	default:
		return "preserve"
	}
}

// Cursor is the active insertion point: a page rank and an offset within it.
type Cursor struct {
	Rank   int
	Offset int
}

// Navigator moves focus between pages. The focus change itself is deferred
// past the current render through the surfaces' scheduler.
type Navigator struct {
	reg       *pages.Registry
	target    Cursor
	hasTarget bool
}

func newNavigator(reg *pages.Registry) *Navigator {
	return &Navigator{reg: reg}
}

// FocusPage blurs every other page and schedules focus on rank. offset is
// only used with FocusPreserve and is clamped to the page content.
func (n *Navigator) FocusPage(rank int, strategy Strategy, offset int) error {
	page, ok := n.reg.Get(rank)
	if !ok {
		return fmt.Errorf("focus page %d: %w", rank, pages.ErrInvalidOperation)
	}
	s := page.Surface()
	length := s.Content().Len()
	switch strategy {
	case FocusStart:
		offset = 0
	case FocusEnd:
		offset = length
	default:
		if offset < 0 {
			offset = 0
		}
		if offset > length {
			offset = length
		}
	}
	for _, other := range n.reg.Pages() {
		if other != page {
			other.Surface().Blur()
		}
	}
	if err := n.reg.SetCurrent(rank); err != nil {
		return err
	}
	n.target = Cursor{Rank: rank, Offset: offset}
	n.hasTarget = true
	s.FocusAt(offset)
	return nil
}

// Next focuses the start of the page after the active one.
func (n *Navigator) Next() error {
	cur, _ := n.Cursor()
	next, ok := n.reg.Next(cur.Rank)
	if !ok {
		return nil
	}
	return n.FocusPage(next.Rank(), FocusStart, 0)
}

// Previous focuses the end of the page before the active one.
func (n *Navigator) Previous() error {
	cur, _ := n.Cursor()
	prev, ok := n.reg.Previous(cur.Rank)
	if !ok {
		return nil
	}
	return n.FocusPage(prev.Rank(), FocusEnd, 0)
}

// Cursor returns the focused page and offset. While a focus change is still
// pending, the scheduled target is reported instead.
func (n *Navigator) Cursor() (Cursor, bool) {
	for _, page := range n.reg.Pages() {
		if offset, ok := page.Surface().CursorOffset(); ok {
			return Cursor{Rank: page.Rank(), Offset: offset}, true
		}
	}
	if n.hasTarget {
		if _, ok := n.reg.Get(n.target.Rank); ok {
			return n.target, true
		}
	}
	return Cursor{Rank: n.reg.Current()}, false
}

// Focused returns the surface holding the cursor, if any.
func (n *Navigator) Focused() (*surface.Surface, int, bool) {
	for _, page := range n.reg.Pages() {
		if page.Surface().Focused() {
			return page.Surface(), page.Rank(), true
		}
	}
	return nil, 0, false
}

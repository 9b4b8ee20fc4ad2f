// Package pages keeps the ordered set of pages, each bound to exactly one
// editing surface.
package pages

import (
	"errors"
	"fmt"

	"github.com/csheth/pagewright/internal/surface"
)

// ErrInvalidOperation indicates a caller violated a precondition, such as
// deleting page 1 or acting on a rank that does not exist.
var ErrInvalidOperation = errors.New("invalid page operation")

// Page is one bounded region of the document.
type Page struct {
	rank    int
	surface *surface.Surface
}

// Rank is the 1-based position of the page.
func (p *Page) Rank() int { return p.rank }

// Surface returns the editing surface owned by the page.
func (p *Page) Surface() *surface.Surface { return p.surface }

// ContainerID derives the rendering container identifier from a rank.
func ContainerID(rank int) string {
	return fmt.Sprintf("editor-%d", rank)
}

// Factory builds the editing surface for a new page.
type Factory func(containerID string) *surface.Surface

// Registry holds pages in visual order. Page 1 always exists.
type Registry struct {
	pages   []*Page
	current int
	factory Factory
}

// NewRegistry returns a registry holding page 1.
func NewRegistry(factory Factory) *Registry {
	if factory == nil {
		factory = func(id string) *surface.Surface { return surface.New(id, nil) }
	}
	r := &Registry{factory: factory}
	r.Create()
	r.current = 1
	return r
}

// Create appends a page with rank count+1.
func (r *Registry) Create() *Page {
	rank := len(r.pages) + 1
	page := &Page{rank: rank, surface: r.factory(ContainerID(rank))}
	r.pages = append(r.pages, page)
	return page
}

// Delete removes the page with the given rank. Ranks of later pages are left
// untouched until Renumber.
func (r *Registry) Delete(rank int) error {
	if rank == 1 {
		return fmt.Errorf("delete page 1: %w", ErrInvalidOperation)
	}
	idx := r.indexOf(rank)
	if idx < 0 {
		return fmt.Errorf("delete page %d: no such page: %w", rank, ErrInvalidOperation)
	}
	r.pages[idx].surface.Blur()
	r.pages = append(r.pages[:idx], r.pages[idx+1:]...)
	return nil
}

// Renumber reassigns dense ranks 1..N in visual order, rebinds every
// surface's container and moves the current rank to the last page.
func (r *Registry) Renumber() {
	for i, page := range r.pages {
		page.rank = i + 1
		page.surface.Bind(ContainerID(page.rank))
	}
	r.current = len(r.pages)
}

// Get looks a page up by rank.
func (r *Registry) Get(rank int) (*Page, bool) {
	if idx := r.indexOf(rank); idx >= 0 {
		return r.pages[idx], true
	}
	return nil, false
}

// Next returns the page following rank in visual order.
func (r *Registry) Next(rank int) (*Page, bool) {
	idx := r.indexOf(rank)
	if idx < 0 || idx+1 >= len(r.pages) {
		return nil, false
	}
	return r.pages[idx+1], true
}

// Previous returns the page preceding rank in visual order.
func (r *Registry) Previous(rank int) (*Page, bool) {
	idx := r.indexOf(rank)
	if idx <= 0 {
		return nil, false
	}
	return r.pages[idx-1], true
}

// RankOf returns the rank of the page owning s.
func (r *Registry) RankOf(s *surface.Surface) (int, bool) {
	for _, page := range r.pages {
		if page.surface == s {
			return page.rank, true
		}
	}
	return 0, false
}

// Pages returns the pages in visual order.
func (r *Registry) Pages() []*Page {
	return append([]*Page(nil), r.pages...)
}

// Ranks lists the live ranks in visual order.
func (r *Registry) Ranks() []int {
	ranks := make([]int, len(r.pages))
	for i, page := range r.pages {
		ranks[i] = page.rank
	}
	return ranks
}

// Len is the number of pages.
func (r *Registry) Len() int { return len(r.pages) }

// Last returns the final page.
func (r *Registry) Last() *Page { return r.pages[len(r.pages)-1] }

// IsLast reports whether rank is the final page.
func (r *Registry) IsLast(rank int) bool { return r.Last().rank == rank }

// Current is the rank the user is working on.
func (r *Registry) Current() int { return r.current }

// SetCurrent records the rank the user is working on.
func (r *Registry) SetCurrent(rank int) error {
	if r.indexOf(rank) < 0 {
		return fmt.Errorf("select page %d: %w", rank, ErrInvalidOperation)
	}
	r.current = rank
	return nil
}

func (r *Registry) indexOf(rank int) int {
	for i, page := range r.pages {
		if page.rank == rank {
			return i
		}
	}
	return -1
}

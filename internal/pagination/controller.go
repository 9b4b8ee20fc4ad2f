// Package pagination lays a single flowing document out across independent
// page surfaces: it spills overflowing content forward, merges and deletes
// pages on backspace, and keeps the user's cursor on the same logical
// character while content moves between pages.
package pagination

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/overflow"
	"github.com/csheth/pagewright/internal/pages"
	"github.com/csheth/pagewright/internal/surface"
)

// Detector decides whether a page's rendered content exceeds its capacity.
type Detector interface {
	IsOverflowing(m overflow.Measurable) bool
}

// Fitter is implemented by detectors that can find the split point of a page
// in one pass. Other detectors are asked unit by unit.
type Fitter interface {
	Fit(c document.Content) int
}

// pending is page content being measured before it is committed to a
// surface.
type pending struct {
	content document.Content
	id      string
}

func (p pending) Content() document.Content { return p.content }
func (p pending) ContainerID() string       { return p.id }

// Controller is the single owner of the page registry. Every structural
// change to the document goes through it.
type Controller struct {
	reg   *pages.Registry
	det   Detector
	sched surface.Scheduler
	nav   *Navigator
	log   *zap.Logger

	// transferring is set while content moves between pages so the change
	// events it raises are not treated as edits.
	transferring bool
}

// New returns a controller holding a single empty page.
func New(det Detector, sched surface.Scheduler, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if sched == nil {
		sched = &surface.Queue{}
	}
	c := &Controller{det: det, sched: sched, log: log.Named("pagination")}
	c.reg = pages.NewRegistry(c.newSurface)
	c.nav = newNavigator(c.reg)
	return c
}

func (c *Controller) newSurface(containerID string) *surface.Surface {
	s := surface.New(containerID, c.sched)
	s.OnChange(c.surfaceChanged)
	return s
}

func (c *Controller) surfaceChanged(s *surface.Surface, origin surface.Origin) {
	if c.transferring {
		return
	}
	rank, ok := c.reg.RankOf(s)
	if !ok {
		return
	}
	if err := c.HandleChange(rank, origin); err != nil {
		c.log.Warn("Unable to paginate after edit", zap.Int("page", rank), zap.Error(err))
	}
}

// Registry exposes the pages for reading. Callers must not mutate it.
func (c *Controller) Registry() *pages.Registry { return c.reg }

// Navigator returns the cross-page navigator.
func (c *Controller) Navigator() *Navigator { return c.nav }

// Cursor returns the active cursor.
func (c *Controller) Cursor() (Cursor, bool) { return c.nav.Cursor() }

// Page looks a page up by rank.
func (c *Controller) Page(rank int) (*pages.Page, error) {
	page, ok := c.reg.Get(rank)
	if !ok {
		return nil, fmt.Errorf("page %d: %w", rank, pages.ErrInvalidOperation)
	}
	return page, nil
}

// Pages returns every page's content in rank order.
func (c *Controller) Pages() []document.Content {
	out := make([]document.Content, 0, c.reg.Len())
	for _, page := range c.reg.Pages() {
		out = append(out, page.Surface().Content())
	}
	return out
}

// Content returns the document as one stream, pages concatenated in rank
// order.
func (c *Controller) Content() document.Content {
	var out document.Content
	for _, page := range c.Pages() {
		out = out.Concat(page)
	}
	return out
}

// HandleChange reacts to a content-changed event. Only user edits are
// paginated; programmatic transfers would otherwise feed back into themselves.
func (c *Controller) HandleChange(rank int, origin surface.Origin) error {
	page, err := c.Page(rank)
	if err != nil {
		return err
	}
	if origin != surface.OriginUser || c.transferring {
		return nil
	}
	if !c.det.IsOverflowing(page.Surface()) {
		return nil
	}
	return c.Split(rank)
}

// Split moves whole units from the end of an overflowing page to the start of
// the next one, creating it when rank is the last page, until the page fits
// or only one unit is left. Pages receiving content are split in turn.
func (c *Controller) Split(rank int) error {
	if _, err := c.Page(rank); err != nil {
		return err
	}
	cur, _ := c.Cursor()
	moved := c.cascade(rank, &cur)
	if moved && cur.Rank != rank {
		return c.nav.FocusPage(cur.Rank, FocusPreserve, cur.Offset)
	}
	return nil
}

// cascade spills rank and every following page that overflows. cur is
// rewritten so it keeps pointing at the same character.
func (c *Controller) cascade(rank int, cur *Cursor) bool {
	c.transferring = true
	defer func() { c.transferring = false }()

	movedAny := false
	for page, ok := c.reg.Get(rank); ok; page, ok = c.reg.Next(page.Rank()) {
		src := page.Surface()
		if src.Units() < 2 || !c.det.IsOverflowing(src) {
			break
		}
		units := src.Content()
		keep := c.fit(units, src.ContainerID())
		if keep >= len(units) {
			break
		}
		units, tail := units[:keep], units[keep:]
		next, ok := c.reg.Next(page.Rank())
		if !ok {
			next = c.reg.Create()
			c.log.Debug("Page created", zap.Int("page", next.Rank()))
		}
		src.SetContent(units, surface.OriginAPI)
		next.Surface().SetContent(tail.Concat(next.Surface().Content()), surface.OriginAPI)
		movedAny = true

		kept := units.Len()
		switch {
		case cur.Rank == page.Rank() && cur.Offset > kept:
			cur.Rank = next.Rank()
			cur.Offset -= kept
		case cur.Rank == next.Rank():
			cur.Offset += tail.Len()
		}
		c.log.Debug("Page split",
			zap.Int("page", page.Rank()), zap.Int("next", next.Rank()),
			zap.Int("moved", len(tail)), zap.Int("kept", len(units)))
	}
	return movedAny
}

// fit returns how many leading units stay on a page. At least one unit always
// stays, so a unit taller than a page remains where it is.
func (c *Controller) fit(units document.Content, containerID string) int {
	keep := len(units)
	if f, ok := c.det.(Fitter); ok {
		keep = f.Fit(units)
	} else {
		for keep > 1 && c.det.IsOverflowing(pending{content: units[:keep], id: containerID}) {
			keep--
		}
	}
	return max(keep, 1)
}

// HandleBackspace applies the structural backspace transitions for the page
// holding the cursor. It reports whether the key was consumed; false means
// the caller should apply the ordinary character deletion. Page 1 never
// consumes the key.
func (c *Controller) HandleBackspace(rank int) (bool, error) {
	page, err := c.Page(rank)
	if err != nil {
		return false, err
	}
	if rank == 1 {
		return false, nil
	}
	s := page.Surface()
	if s.IsEmpty() {
		return true, c.DeleteEmpty(rank)
	}
	if offset, ok := s.CursorOffset(); ok && offset == 0 {
		return true, c.MergeIntoPrevious(rank)
	}
	return false, nil
}

// HandleDelete consumes the Delete key on an empty page after the first.
func (c *Controller) HandleDelete(rank int) (bool, error) {
	page, err := c.Page(rank)
	if err != nil {
		return false, err
	}
	if rank == 1 || !page.Surface().IsEmpty() {
		return false, nil
	}
	return true, c.DeleteEmpty(rank)
}

// HandleEnter consumes Enter at the very start of a non-empty first page and
// pushes the page forward, leaving a blank page in front.
func (c *Controller) HandleEnter(rank int) (bool, error) {
	page, err := c.Page(rank)
	if err != nil {
		return false, err
	}
	if rank != 1 || page.Surface().IsEmpty() {
		return false, nil
	}
	if offset, ok := page.Surface().CursorOffset(); !ok || offset != 0 {
		return false, nil
	}
	return true, c.PushForward(rank)
}

// MergeIntoPrevious appends the page's content to the previous page, deletes
// the page and places the cursor at the join.
func (c *Controller) MergeIntoPrevious(rank int) error {
	page, prev, err := c.pageWithPrevious(rank, "merge")
	if err != nil {
		return err
	}
	join := prev.Surface().Content().Len()
	moving := page.Surface().Content()

	c.transferring = true
	prev.Surface().SetContent(prev.Surface().Content().Concat(moving), surface.OriginAPI)
	page.Surface().SetContent(nil, surface.OriginAPI)
	c.transferring = false

	if err := c.remove(rank); err != nil {
		return err
	}
	c.log.Debug("Page merged", zap.Int("page", rank), zap.Int("into", prev.Rank()), zap.Int("units", len(moving)))

	cur := Cursor{Rank: prev.Rank(), Offset: join}
	c.cascade(prev.Rank(), &cur)
	return c.nav.FocusPage(cur.Rank, FocusPreserve, cur.Offset)
}

// DeleteEmpty removes an empty page and focuses the end of the previous
// page. Blank residue (whitespace the user cannot see) moves to the previous
// page so no character is lost.
func (c *Controller) DeleteEmpty(rank int) error {
	page, prev, err := c.pageWithPrevious(rank, "delete")
	if err != nil {
		return err
	}
	if !page.Surface().IsEmpty() {
		return fmt.Errorf("delete page %d: page has content: %w", rank, pages.ErrInvalidOperation)
	}
	if residue := page.Surface().Content(); len(residue) > 0 {
		c.transferring = true
		prev.Surface().SetContent(prev.Surface().Content().Concat(residue), surface.OriginAPI)
		page.Surface().SetContent(nil, surface.OriginAPI)
		c.transferring = false
	}
	if err := c.remove(rank); err != nil {
		return err
	}
	c.log.Debug("Empty page deleted", zap.Int("page", rank))

	cur := Cursor{Rank: prev.Rank(), Offset: prev.Surface().Content().Len()}
	c.cascade(prev.Rank(), &cur)
	return c.nav.FocusPage(cur.Rank, FocusPreserve, cur.Offset)
}

// PushForward moves the page's whole content to the start of the next page,
// creating it if needed, and leaves the cursor at the top of the now empty
// page.
func (c *Controller) PushForward(rank int) error {
	page, err := c.Page(rank)
	if err != nil {
		return err
	}
	next, ok := c.reg.Next(rank)
	if !ok {
		next = c.reg.Create()
	}
	moving := page.Surface().Content()

	c.transferring = true
	next.Surface().SetContent(moving.Concat(next.Surface().Content()), surface.OriginAPI)
	page.Surface().SetContent(nil, surface.OriginAPI)
	c.transferring = false
	c.log.Debug("Page pushed forward", zap.Int("page", rank), zap.Int("into", next.Rank()), zap.Int("units", len(moving)))

	cur := Cursor{Rank: rank}
	c.cascade(next.Rank(), &cur)
	return c.nav.FocusPage(rank, FocusStart, 0)
}

// Reflow lays the whole document out again from page 1. It is used after
// content was loaded programmatically.
func (c *Controller) Reflow() {
	cur, _ := c.Cursor()
	moved := false
	for rank := 1; rank <= c.reg.Len(); rank++ {
		if c.cascade(rank, &cur) {
			moved = true
		}
	}
	if moved {
		if err := c.nav.FocusPage(cur.Rank, FocusPreserve, cur.Offset); err != nil {
			c.log.Warn("Unable to restore focus after reflow", zap.Error(err))
		}
	}
}

// Load replaces the document with the given pages and focuses the start of
// page 1. An empty list yields one empty page.
func (c *Controller) Load(contents []document.Content) {
	c.transferring = true
	for c.reg.Len() > 1 {
		if err := c.reg.Delete(c.reg.Last().Rank()); err != nil {
			break
		}
	}
	c.reg.Renumber()
	first := c.reg.Last()
	first.Surface().SetContent(nil, surface.OriginAPI)
	for i, content := range contents {
		page := first
		if i > 0 {
			page = c.reg.Create()
		}
		page.Surface().SetContent(content, surface.OriginAPI)
	}
	c.transferring = false
	if err := c.nav.FocusPage(1, FocusStart, 0); err != nil {
		c.log.Warn("Unable to focus first page", zap.Error(err))
	}
}

func (c *Controller) pageWithPrevious(rank int, action string) (*pages.Page, *pages.Page, error) {
	if rank == 1 {
		return nil, nil, fmt.Errorf("%s page 1: %w", action, pages.ErrInvalidOperation)
	}
	page, ok := c.reg.Get(rank)
	if !ok {
		return nil, nil, fmt.Errorf("%s page %d: no such page: %w", action, rank, pages.ErrInvalidOperation)
	}
	prev, ok := c.reg.Previous(rank)
	if !ok {
		return nil, nil, fmt.Errorf("%s page %d: no previous page: %w", action, rank, pages.ErrInvalidOperation)
	}
	return page, prev, nil
}

func (c *Controller) remove(rank int) error {
	if err := c.reg.Delete(rank); err != nil {
		return err
	}
	c.reg.Renumber()
	return nil
}

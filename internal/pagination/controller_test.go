package pagination

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/csheth/pagewright/internal/document"
	"github.com/csheth/pagewright/internal/overflow"
	"github.com/csheth/pagewright/internal/pages"
	"github.com/csheth/pagewright/internal/surface"
)

// unitLimit overflows any page holding more than max units.
type unitLimit struct{ max int }

func (u unitLimit) IsOverflowing(m overflow.Measurable) bool {
	return len(m.Content()) > u.max
}

// alwaysFull overflows every page regardless of content.
type alwaysFull struct{}

func (alwaysFull) IsOverflowing(overflow.Measurable) bool { return true }

type harness struct {
	*Controller
	queue *surface.Queue
}

func newHarness(t *testing.T, det Detector) harness {
	t.Helper()
	q := &surface.Queue{}
	return harness{Controller: New(det, q, zaptest.NewLogger(t)), queue: q}
}

func (h harness) surface(t *testing.T, rank int) *surface.Surface {
	t.Helper()
	page, err := h.Page(rank)
	require.NoError(t, err)
	return page.Surface()
}

func (h harness) focus(t *testing.T, rank, offset int) {
	t.Helper()
	require.NoError(t, h.Navigator().FocusPage(rank, FocusPreserve, offset))
	h.queue.Flush()
}

func (h harness) requireDense(t *testing.T) {
	t.Helper()
	ranks := h.Registry().Ranks()
	for i, rank := range ranks {
		require.Equal(t, i+1, rank, "ranks must be dense: %v", ranks)
		require.Equal(t, pages.ContainerID(rank), h.surface(t, rank).ContainerID())
	}
}

func texts(c document.Content) []string {
	out := make([]string, len(c))
	for i, u := range c {
		out[i] = u.Text
	}
	return out
}

func TestOverflowSplitMovesLastUnitToNewPage(t *testing.T) {
	h := newHarness(t, unitLimit{max: 1})
	h.surface(t, 1).SetContent(document.Content{document.Text("Hello "), document.Text("world")}, surface.OriginAPI)
	require.Equal(t, 1, h.Registry().Len(), "programmatic content must not paginate")

	require.NoError(t, h.HandleChange(1, surface.OriginUser))

	assert.Equal(t, []int{1, 2}, h.Registry().Ranks())
	assert.Equal(t, []string{"Hello "}, texts(h.surface(t, 1).Content()))
	assert.Equal(t, []string{"world"}, texts(h.surface(t, 2).Content()))
	assert.Equal(t, "Hello world", h.Content().Plain())
}

func TestProgrammaticChangeNeverSplits(t *testing.T) {
	h := newHarness(t, unitLimit{max: 1})
	h.surface(t, 1).SetContent(document.Content{document.Text("a"), document.Text("b")}, surface.OriginAPI)
	require.NoError(t, h.HandleChange(1, surface.OriginAPI))
	assert.Equal(t, 1, h.Registry().Len())
}

func TestUserEditEventTriggersSplit(t *testing.T) {
	h := newHarness(t, unitLimit{max: 2})
	h.focus(t, 1, 0)
	s := h.surface(t, 1)
	s.InsertText(0, "one\ntwo\n", document.Style{}, surface.OriginUser)
	require.Equal(t, 1, h.Registry().Len())

	offset, _ := s.CursorOffset()
	s.InsertText(offset, "three", document.Style{}, surface.OriginUser)

	require.Equal(t, 2, h.Registry().Len())
	assert.Equal(t, []string{"one\n", "two\n"}, texts(h.surface(t, 1).Content()))
	assert.Equal(t, []string{"three"}, texts(h.surface(t, 2).Content()))

	h.queue.Flush()
	cur, ok := h.Cursor()
	require.True(t, ok)
	assert.Equal(t, Cursor{Rank: 2, Offset: 5}, cur, "cursor follows the typed text onto the new page")
}

func TestSplitPrependsToExistingNextPage(t *testing.T) {
	h := newHarness(t, unitLimit{max: 2})
	h.Load([]document.Content{
		{document.Text("a\n"), document.Text("b\n")},
		{document.Text("z")},
	})
	h.queue.Flush()
	h.surface(t, 1).SetContent(document.Content{document.Text("a\n"), document.Text("b\n"), document.Text("c\n")}, surface.OriginAPI)

	require.NoError(t, h.Split(1))
	assert.Equal(t, []int{1, 2}, h.Registry().Ranks())
	assert.Equal(t, []string{"c\n", "z"}, texts(h.surface(t, 2).Content()))
}

func TestSplitCursorOnNextPageShifts(t *testing.T) {
	h := newHarness(t, unitLimit{max: 2})
	h.Load([]document.Content{
		{document.Text("a\n"), document.Text("b\n")},
		{document.Text("xyz")},
	})
	h.focus(t, 2, 1)
	h.surface(t, 1).SetContent(document.Content{document.Text("a\n"), document.Text("b\n"), document.Text("c\n")}, surface.OriginAPI)

	require.NoError(t, h.Split(1))
	h.queue.Flush()
	cur, _ := h.Cursor()
	assert.Equal(t, Cursor{Rank: 2, Offset: 3}, cur)
}

func TestSplitTerminatesWhenPageCanNeverFit(t *testing.T) {
	h := newHarness(t, alwaysFull{})
	content := document.Content{document.Text("a"), document.Text("b"), document.Text("c"), document.Text("d")}
	h.surface(t, 1).SetContent(content, surface.OriginAPI)

	require.NoError(t, h.Split(1))

	h.requireDense(t)
	for _, page := range h.Pages() {
		assert.Len(t, page, 1, "each page keeps at least one unit")
	}
	assert.Equal(t, "abcd", h.Content().Plain())
}

func TestSplitNeverEmptiesSingleUnitPage(t *testing.T) {
	h := newHarness(t, alwaysFull{})
	h.surface(t, 1).SetContent(document.Content{document.Text(strings.Repeat("long ", 500))}, surface.OriginAPI)
	require.NoError(t, h.Split(1))
	assert.Equal(t, 1, h.Registry().Len())
	assert.Len(t, h.surface(t, 1).Content(), 1)
}

func TestBackspaceAtStartMergesIntoPrevious(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("A")}, {document.Text("B")}})
	h.focus(t, 2, 0)

	handled, err := h.HandleBackspace(2)
	require.NoError(t, err)
	require.True(t, handled)

	assert.Equal(t, []int{1}, h.Registry().Ranks())
	assert.Equal(t, []string{"A", "B"}, texts(h.surface(t, 1).Content()))

	h.queue.Flush()
	cur, ok := h.Cursor()
	require.True(t, ok)
	assert.Equal(t, Cursor{Rank: 1, Offset: 1}, cur)
}

func TestBackspaceInsidePageIsNotConsumed(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("A")}, {document.Text("BC")}})
	h.focus(t, 2, 1)

	handled, err := h.HandleBackspace(2)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 2, h.Registry().Len())
}

func TestDeleteEmptyPageRenumbers(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{}, {}, {}})

	require.NoError(t, h.DeleteEmpty(3))
	assert.Equal(t, []int{1, 2}, h.Registry().Ranks())
	assert.Empty(t, h.surface(t, 2).Content())
	h.requireDense(t)
}

func TestDeleteMiddleEmptyPageRenumbersFollowers(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("a")}, {}, {document.Text("c")}})

	handled, err := h.HandleDelete(2)
	require.NoError(t, err)
	require.True(t, handled)
	h.requireDense(t)
	assert.Equal(t, "c", h.surface(t, 2).Content().Plain())

	h.queue.Flush()
	cur, _ := h.Cursor()
	assert.Equal(t, Cursor{Rank: 1, Offset: 1}, cur, "focus lands at the end of the previous page")
}

func TestEmptyDeletionTakesPriorityOverMerge(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("abc")}, {document.Text("  ")}})
	h.focus(t, 2, 0)

	handled, err := h.HandleBackspace(2)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, []int{1}, h.Registry().Ranks())
	assert.Equal(t, "abc  ", h.Content().Plain(), "blank residue is kept")

	h.queue.Flush()
	cur, _ := h.Cursor()
	assert.Equal(t, Cursor{Rank: 1, Offset: 5}, cur, "empty deletion focuses the end, not the join")
}

func TestDeleteEmptyRejectsPageWithContent(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("a")}, {document.Text("b")}})
	require.ErrorIs(t, h.DeleteEmpty(2), pages.ErrInvalidOperation)
	assert.Equal(t, 2, h.Registry().Len())
}

func TestMergeOfEmptyPageLeavesPreviousUntouched(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("keep")}, {}})

	require.NoError(t, h.MergeIntoPrevious(2))
	assert.Equal(t, []int{1}, h.Registry().Ranks())
	assert.Equal(t, []string{"keep"}, texts(h.surface(t, 1).Content()))
}

func TestPageOneIsImmortal(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{}, {document.Text("x")}})
	h.focus(t, 1, 0)

	require.ErrorIs(t, h.DeleteEmpty(1), pages.ErrInvalidOperation)
	require.ErrorIs(t, h.MergeIntoPrevious(1), pages.ErrInvalidOperation)
	require.ErrorIs(t, h.Registry().Delete(1), pages.ErrInvalidOperation)

	handled, err := h.HandleBackspace(1)
	require.NoError(t, err)
	assert.False(t, handled)
	handled, err = h.HandleDelete(1)
	require.NoError(t, err)
	assert.False(t, handled)

	assert.Equal(t, []int{1, 2}, h.Registry().Ranks())
	assert.Equal(t, "x", h.Content().Plain())
}

func TestUnknownRankIsInvalid(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	_, err := h.HandleBackspace(4)
	assert.ErrorIs(t, err, pages.ErrInvalidOperation)
	assert.ErrorIs(t, h.MergeIntoPrevious(4), pages.ErrInvalidOperation)
	assert.ErrorIs(t, h.PushForward(4), pages.ErrInvalidOperation)
	assert.ErrorIs(t, h.HandleChange(4, surface.OriginUser), pages.ErrInvalidOperation)
}

func TestEnterAtDocumentStartPushesPageForward(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("abc")}})
	h.focus(t, 1, 0)

	handled, err := h.HandleEnter(1)
	require.NoError(t, err)
	require.True(t, handled)

	assert.Equal(t, []int{1, 2}, h.Registry().Ranks())
	assert.True(t, h.surface(t, 1).IsEmpty())
	assert.Equal(t, "abc", h.surface(t, 2).Content().Plain())

	h.queue.Flush()
	cur, _ := h.Cursor()
	assert.Equal(t, Cursor{Rank: 1, Offset: 0}, cur)
}

func TestEnterAtStartPrependsToExistingNextPage(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("abc")}, {document.Text("def")}})
	h.focus(t, 1, 0)

	_, err := h.HandleEnter(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, texts(h.surface(t, 2).Content()))
}

func TestEnterElsewhereIsNotConsumed(t *testing.T) {
	h := newHarness(t, unitLimit{max: 10})
	h.Load([]document.Content{{document.Text("abc")}, {document.Text("def")}})

	h.focus(t, 1, 2)
	handled, err := h.HandleEnter(1)
	require.NoError(t, err)
	assert.False(t, handled)

	h.focus(t, 2, 0)
	handled, err = h.HandleEnter(2)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 2, h.Registry().Len())
}

func TestReflowLaysOutLoadedContent(t *testing.T) {
	h := newHarness(t, unitLimit{max: 2})
	lines := document.Content{}
	for i := 0; i < 7; i++ {
		lines = append(lines, document.Text("line\n"))
	}
	h.Load([]document.Content{lines})
	h.Reflow()

	h.requireDense(t)
	assert.Equal(t, 4, h.Registry().Len())
	assert.Equal(t, strings.Repeat("line\n", 7), h.Content().Plain())
}

func TestReflowLargeDocumentIsLinear(t *testing.T) {
	det := overflow.NewDetector(overflow.Capacity{Rows: 38, Cols: 62}, zaptest.NewLogger(t))
	h := newHarness(t, det)
	var b strings.Builder
	for i := 1; i <= 2000; i++ {
		if i > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "line %d", i)
	}
	doc := document.Content{}.InsertText(0, b.String(), document.Style{})

	start := time.Now()
	h.Load([]document.Content{doc})
	h.Reflow()
	h.queue.Flush()
	require.Less(t, time.Since(start), 3*time.Second, "reflow must not re-measure a page per moved unit")

	h.requireDense(t)
	// 37 lines plus the widget terminator fill a 38 row page.
	assert.Equal(t, 55, h.Registry().Len())
	assert.Equal(t, b.String(), h.Content().Plain())
	for _, page := range h.Registry().Pages() {
		assert.False(t, det.IsOverflowing(page.Surface()), "page %d overflows", page.Rank())
	}
	cur, ok := h.Cursor()
	require.True(t, ok)
	assert.Equal(t, Cursor{Rank: 1, Offset: 0}, cur)
}

func TestSplitKeepsUnitTallerThanPage(t *testing.T) {
	det := overflow.NewDetector(overflow.Capacity{Rows: 2, Cols: 5}, zaptest.NewLogger(t))
	h := newHarness(t, det)
	h.Load([]document.Content{{document.Text("a long paragraph that wraps\n"), document.Text("b")}})
	h.Reflow()

	require.Equal(t, 2, h.Registry().Len())
	assert.Equal(t, []string{"a long paragraph that wraps\n"}, texts(h.surface(t, 1).Content()))
	assert.Equal(t, []string{"b"}, texts(h.surface(t, 2).Content()))
}

// TestEditingPreservesContent drives random keystrokes through the
// controller with a real detector and checks, after every keystroke, that the
// pages concatenate to the text a single unpaginated buffer would hold and
// that ranks stay dense.
func TestEditingPreservesContent(t *testing.T) {
	det := overflow.NewDetector(overflow.Capacity{Rows: 3, Cols: 12}, zaptest.NewLogger(t))
	h := newHarness(t, det)
	h.Load(nil)
	rng := rand.New(rand.NewSource(7))

	var model []rune
	globalOffset := func(cur Cursor) int {
		offset := cur.Offset
		for _, page := range h.Registry().Pages() {
			if page.Rank() >= cur.Rank {
				break
			}
			offset += page.Surface().Content().Len()
		}
		return offset
	}

	words := []string{"a", "bb", "ccc", "dddd ", " ", "\n", "eeeeeeeee "}
	for step := 0; step < 600; step++ {
		h.queue.Flush()
		s, rank, ok := h.Navigator().Focused()
		require.True(t, ok, "step %d: no focused page", step)
		offset, _ := s.CursorOffset()
		g := globalOffset(Cursor{Rank: rank, Offset: offset})

		switch r := rng.Intn(10); {
		case r < 6:
			word := words[rng.Intn(len(words))]
			s.InsertText(offset, word, document.Style{}, surface.OriginUser)
			model = append(model[:g], append([]rune(word), model[g:]...)...)
		case r < 9:
			handled, err := h.HandleBackspace(rank)
			require.NoError(t, err)
			if !handled && offset > 0 {
				s.DeleteBackward(offset, surface.OriginUser)
				model = append(model[:g-1], model[g:]...)
			}
		default:
			handled, err := h.HandleEnter(rank)
			require.NoError(t, err)
			if !handled {
				s.InsertText(offset, "\n", document.Style{}, surface.OriginUser)
				model = append(model[:g], append([]rune("\n"), model[g:]...)...)
			}
		}

		h.requireDense(t)
		require.Equal(t, string(model), h.Content().Plain(), "step %d", step)
	}
	assert.Greater(t, h.Registry().Len(), 1, "the run should have produced several pages")
}

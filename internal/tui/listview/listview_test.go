package listview

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/surface"
	"github.com/colonyops/rowsync/pkg/tuitest"
)

// source is a list of row counts whose rows are labelled by position.
type source struct {
	rows       []int
	selected   []surface.IndexPath
	deselected []surface.IndexPath
	displayed  int
}

func (s *source) NumberOfSections() int    { return len(s.rows) }
func (s *source) NumberOfRows(sec int) int { return s.rows[sec] }

func (s *source) ConfigureCell(cell surface.Cell, p surface.IndexPath) {
	cell.(*Cell).SetText(fmt.Sprintf("row %d.%d", p.Section, p.Row))
}

func (s *source) WillDisplay(surface.Cell, surface.IndexPath) { s.displayed++ }
func (s *source) DidSelectRow(p surface.IndexPath)            { s.selected = append(s.selected, p) }
func (s *source) DidDeselectRow(p surface.IndexPath)          { s.deselected = append(s.deselected, p) }

func newList(t *testing.T, width, height int, rows ...int) (*Model, *source) {
	t.Helper()
	src := &source{rows: rows}
	m := New(width, height, WithLogger(zerolog.Nop()), WithDuration(time.Millisecond))
	m.Bind(src)
	m.ReloadData()
	return m, src
}

func TestReloadData(t *testing.T) {
	m, src := newList(t, 30, 10, 2, 0, 1)

	assert.Equal(t, []int{2, 0, 1}, m.Shape())
	assert.Equal(t, 3, src.displayed)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Section 0 (2)")
	assert.Contains(t, view, "row 0.1")
	assert.Contains(t, view, "Section 1 (0)")
	assert.Contains(t, view, "row 2.0")
}

func TestTitles(t *testing.T) {
	src := &source{rows: []int{1}}
	m := New(30, 5, WithLogger(zerolog.Nop()), WithTitles(func(int) string { return "Inbox" }))
	m.Bind(src)
	m.ReloadData()

	assert.Contains(t, tuitest.StripANSI(m.View()), "Inbox (1)")
}

func TestSequentialPrimitives(t *testing.T) {
	m, src := newList(t, 30, 10, 3)

	m.BeginUpdates()
	m.DeleteRows([]surface.IndexPath{surface.Path(0, 0), surface.Path(0, 2)}, surface.AnimationFade)
	m.InsertRows([]surface.IndexPath{surface.Path(0, 0), surface.Path(0, 1), surface.Path(0, 3)}, surface.AnimationFade)
	src.rows[0] = 4
	m.EndUpdates(false, nil)

	assert.Equal(t, []int{4}, m.Shape())
	assert.False(t, m.Animating())
}

func TestInsertedSectionReadsRowsAtEnd(t *testing.T) {
	m, src := newList(t, 30, 10, 1)

	m.BeginUpdates()
	m.InsertSections([]int{0}, surface.AnimationTop)
	// Row primitives for the new section are covered by the insertion.
	m.InsertRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationTop)
	src.rows = []int{3, 1}
	m.EndUpdates(false, nil)

	assert.Equal(t, []int{3, 1}, m.Shape())
}

func TestMoveSection(t *testing.T) {
	m, src := newList(t, 30, 10, 1, 2, 3)

	m.BeginUpdates()
	m.MoveSection(0, 2)
	src.rows = []int{2, 3, 1}
	m.EndUpdates(false, nil)

	assert.Equal(t, []int{2, 3, 1}, m.Shape())
}

func TestOutOfSyncUpdateReloads(t *testing.T) {
	m, src := newList(t, 30, 10, 2)

	m.BeginUpdates()
	m.InsertRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationNone)
	src.rows[0] = 5
	m.EndUpdates(false, nil)

	assert.Equal(t, []int{5}, m.Shape())
}

func TestPrimitiveOutsideUpdate(t *testing.T) {
	m, src := newList(t, 30, 10, 1)

	src.rows[0] = 2
	m.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationNone)

	assert.Equal(t, []int{2}, m.Shape())
	assert.Nil(t, m.Cmd(), "implicit updates have no completion")
}

func TestCompletion_NeverInsideEndUpdates(t *testing.T) {
	m, src := newList(t, 30, 10, 1)

	var got []bool
	m.BeginUpdates()
	src.rows[0] = 2
	m.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationFade)
	m.EndUpdates(false, func(finished bool) { got = append(got, finished) })

	assert.Empty(t, got)

	tuitest.Drain(m.Cmd(), m.Update, 5)
	assert.Equal(t, []bool{true}, got)
}

func TestCompletion_AnimatedTick(t *testing.T) {
	m, src := newList(t, 30, 10, 1)

	var got []bool
	m.BeginUpdates()
	src.rows[0] = 2
	m.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationFade)
	m.EndUpdates(true, func(finished bool) { got = append(got, finished) })

	assert.True(t, m.Animating())
	assert.Equal(t, markInserted, m.sections[0].rows[1].mark)

	tuitest.Drain(m.Cmd(), m.Update, 5)

	assert.Equal(t, []bool{true}, got)
	assert.False(t, m.Animating())
	assert.Equal(t, markNone, m.sections[0].rows[1].mark)
}

func TestCompletion_Interrupted(t *testing.T) {
	m, src := newList(t, 30, 10, 1)
	m.duration = time.Hour

	var got []string
	m.BeginUpdates()
	src.rows[0] = 2
	m.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationFade)
	m.EndUpdates(true, func(finished bool) { got = append(got, fmt.Sprint("first ", finished)) })
	_ = m.Cmd()

	m.BeginUpdates()
	src.rows[0] = 1
	m.DeleteRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationFade)
	m.EndUpdates(true, func(finished bool) { got = append(got, fmt.Sprint("second ", finished)) })

	m.Update(AnimationDoneMsg{ID: 1})
	assert.Equal(t, []string{"first false"}, got)

	m.Update(AnimationDoneMsg{ID: 2})
	m.Update(AnimationDoneMsg{ID: 1})
	assert.Equal(t, []string{"first false", "second true"}, got)
}

func TestNestedUpdatesShareCompletion(t *testing.T) {
	m, src := newList(t, 30, 10, 1)

	var got []bool
	m.BeginUpdates()
	m.BeginUpdates()
	src.rows[0] = 2
	m.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationNone)
	m.EndUpdates(false, func(finished bool) { got = append(got, finished) })
	assert.Nil(t, m.Cmd())
	m.EndUpdates(false, func(finished bool) { got = append(got, finished) })

	tuitest.Drain(m.Cmd(), m.Update, 5)
	assert.Equal(t, []bool{true, true}, got)
}

func TestFramesAndHitTesting(t *testing.T) {
	m, _ := newList(t, 20, 10, 2, 2)

	c, ok := m.Cell(surface.Path(1, 0))
	require.True(t, ok)
	assert.Equal(t, surface.Rect{X: 0, Y: 4, W: 20, H: 1}, c.Frame())
	assert.Equal(t, "row 1.0", c.Text())

	paths := m.IndexPathsForRows(surface.Rect{X: 5, Y: 4, W: 1, H: 1})
	assert.Equal(t, []surface.IndexPath{surface.Path(1, 0)}, paths)

	assert.Empty(t, m.IndexPathsForRows(surface.Rect{X: 0, Y: 3, W: 1, H: 1}), "headers are not rows")
}

func TestScrollToRow(t *testing.T) {
	m, _ := newList(t, 20, 10, 30)

	m.ScrollToRow(surface.Path(0, 29), surface.ScrollBottom, false)
	assert.Equal(t, 21, m.Offset())

	_, visible := m.VisibleCell(surface.Path(0, 0))
	assert.False(t, visible)
	_, visible = m.VisibleCell(surface.Path(0, 29))
	assert.True(t, visible)

	m.ScrollToRow(surface.Path(0, 10), surface.ScrollTop, false)
	assert.Equal(t, 11, m.Offset())
}

func TestSelectRow_SingleSelection(t *testing.T) {
	m, src := newList(t, 20, 10, 3)

	m.SelectRow(surface.Path(0, 1), false, surface.ScrollNone)
	m.SelectRow(surface.Path(0, 2), false, surface.ScrollNone)

	assert.False(t, m.Selected(surface.Path(0, 1)))
	assert.True(t, m.Selected(surface.Path(0, 2)))
	assert.Empty(t, src.selected, "programmatic selection is not reported")

	cursor, ok := m.Cursor()
	require.True(t, ok)
	assert.Equal(t, surface.Path(0, 2), cursor)
}

func TestSelectionFollowsRow(t *testing.T) {
	m, src := newList(t, 20, 10, 3)
	m.SelectRow(surface.Path(0, 1), false, surface.ScrollNone)

	m.BeginUpdates()
	src.rows[0] = 4
	m.InsertRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationNone)
	m.EndUpdates(false, nil)

	assert.True(t, m.Selected(surface.Path(0, 2)))
	assert.False(t, m.Selected(surface.Path(0, 1)))
}

func TestKeys(t *testing.T) {
	m, src := newList(t, 20, 10, 2, 1)

	m.Update(tuitest.KeyDown())
	_, ok := m.Cursor()
	require.True(t, ok)
	assert.Equal(t, surface.Path(0, 0), m.cursor, "keys are ignored without focus")

	require.True(t, m.Focus())
	m.Update(tuitest.KeyDown())
	m.Update(tuitest.KeyPress('j'))
	assert.Equal(t, surface.Path(1, 0), m.cursor)

	m.Update(tuitest.KeyPress('j'))
	assert.Equal(t, surface.Path(1, 0), m.cursor, "cursor stops at the last row")

	m.Update(tuitest.KeyPress(' '))
	assert.True(t, m.Selected(surface.Path(1, 0)))
	assert.Equal(t, []surface.IndexPath{surface.Path(1, 0)}, src.selected)

	m.Update(tuitest.KeyPress(' '))
	assert.False(t, m.Selected(surface.Path(1, 0)))
	assert.Equal(t, []surface.IndexPath{surface.Path(1, 0)}, src.deselected)

	m.Update(tuitest.KeyPress('g'))
	assert.Equal(t, surface.Path(0, 0), m.cursor)

	require.True(t, m.Blur())
	assert.False(t, m.Focused())
}

func TestCursorClampsAfterDelete(t *testing.T) {
	m, src := newList(t, 20, 10, 3)
	require.True(t, m.SetCursor(surface.Path(0, 2)))

	m.BeginUpdates()
	src.rows[0] = 1
	m.DeleteRows([]surface.IndexPath{surface.Path(0, 1), surface.Path(0, 2)}, surface.AnimationNone)
	m.EndUpdates(false, nil)

	cursor, ok := m.Cursor()
	require.True(t, ok)
	assert.Equal(t, surface.Path(0, 0), cursor)
}

func TestWindowSize(t *testing.T) {
	m, _ := newList(t, 20, 2, 5)
	_, visible := m.VisibleCell(surface.Path(0, 3))
	assert.False(t, visible)

	m.Update(tuitest.WindowSize(20, 10))
	_, visible = m.VisibleCell(surface.Path(0, 3))
	assert.True(t, visible)
}

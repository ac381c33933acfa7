package simsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// countSource answers counts from a slice the test edits directly.
type countSource struct {
	shape    []int
	selected []surface.IndexPath
}

func (c *countSource) NumberOfSections() int { return len(c.shape) }
func (c *countSource) NumberOfRows(s int) int {
	if s < 0 || s >= len(c.shape) {
		return 0
	}
	return c.shape[s]
}

func (c *countSource) ConfigureCell(cell surface.Cell, path surface.IndexPath) {
	cell.(*Cell).SetText(path.String())
}
func (c *countSource) WillDisplay(surface.Cell, surface.IndexPath) {}
func (c *countSource) DidSelectRow(p surface.IndexPath)             { c.selected = append(c.selected, p) }
func (c *countSource) DidDeselectRow(surface.IndexPath)             {}

func newSim(shape ...int) (*Surface, *countSource) {
	src := &countSource{shape: shape}
	s := New(40, 10)
	s.Bind(src)
	s.ReloadData()
	return s, src
}

func TestSurface_DeleteThenInsertUsesSequentialIndexSpaces(t *testing.T) {
	s, src := newSim(5)

	src.shape = []int{6}
	s.BeginUpdates()
	s.DeleteRows([]surface.IndexPath{surface.Path(0, 2)}, surface.AnimationFade)
	s.InsertRows([]surface.IndexPath{surface.Path(0, 0), surface.Path(0, 1)}, surface.AnimationFade)
	s.ReloadRows([]surface.IndexPath{surface.Path(0, 5)}, surface.AnimationFade)
	s.EndUpdates(true, nil)

	assert.Empty(t, s.Violations())
	assert.Equal(t, []int{6}, s.Shape())
}

func TestSurface_ReportsShapeMismatch(t *testing.T) {
	s, src := newSim(3)

	src.shape = []int{4}
	s.BeginUpdates()
	s.DeleteRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationNone)
	s.EndUpdates(false, nil)

	require.Len(t, s.Violations(), 1)
	assert.Contains(t, s.Violations()[0].Error(), "does not match source")
}

func TestSurface_ReportsPrimitiveOutsideUpdate(t *testing.T) {
	s, src := newSim(3)

	src.shape = []int{2}
	s.DeleteRows([]surface.IndexPath{surface.Path(0, 0)}, surface.AnimationNone)

	require.NotEmpty(t, s.Violations())
	assert.Contains(t, s.Violations()[0].Error(), "outside an update block")
}

func TestSurface_InsertedSectionTakesSourceRows(t *testing.T) {
	s, src := newSim(1, 1)

	src.shape = []int{1, 3, 1}
	s.BeginUpdates()
	s.InsertSections([]int{1}, surface.AnimationAutomatic)
	s.EndUpdates(false, nil)

	assert.Empty(t, s.Violations())
	assert.Equal(t, []int{1, 3, 1}, s.Shape())
}

func TestSurface_MoveSection(t *testing.T) {
	s, src := newSim(1, 2, 3)

	src.shape = []int{2, 3, 1}
	s.BeginUpdates()
	s.MoveSection(0, 2)
	s.EndUpdates(false, nil)

	assert.Empty(t, s.Violations())
	assert.Equal(t, []int{2, 3, 1}, s.Shape())
}

func TestSurface_CompletionWaitsForFlush(t *testing.T) {
	s, src := newSim(1)

	var got []bool
	src.shape = []int{2}
	s.BeginUpdates()
	s.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationNone)
	s.EndUpdates(true, func(finished bool) { got = append(got, finished) })

	assert.Empty(t, got)
	assert.Equal(t, 1, s.PendingCompletions())

	s.Flush()
	assert.Equal(t, []bool{true}, got)
	assert.Zero(t, s.PendingCompletions())
}

func TestSurface_NewUpdateInterruptsPending(t *testing.T) {
	s, src := newSim(1)

	var got []bool
	done := func(finished bool) { got = append(got, finished) }

	src.shape = []int{2}
	s.BeginUpdates()
	s.InsertRows([]surface.IndexPath{surface.Path(0, 1)}, surface.AnimationNone)
	s.EndUpdates(true, done)

	src.shape = []int{3}
	s.BeginUpdates()
	s.InsertRows([]surface.IndexPath{surface.Path(0, 2)}, surface.AnimationNone)
	s.EndUpdates(true, done)

	s.Flush()
	assert.Equal(t, []bool{false, true}, got)
}

func TestSurface_RowFramesAndHitTesting(t *testing.T) {
	s, _ := newSim(2, 2)

	// header, row, row, header, row, row
	paths := s.IndexPathsForRows(surface.Rect{X: 3, Y: 4, W: 1, H: 1})
	assert.Equal(t, []surface.IndexPath{surface.Path(1, 0)}, paths)

	cell, ok := s.Cell(surface.Path(1, 0))
	require.True(t, ok)
	assert.Equal(t, surface.Rect{X: 0, Y: 4, W: 40, H: 1}, cell.Frame())
	assert.Equal(t, "[1,0]", cell.Text)

	assert.Empty(t, s.IndexPathsForRows(surface.Rect{X: 0, Y: 0, W: 40, H: 1}))
}

func TestSurface_ScrollKeepsRowVisible(t *testing.T) {
	s, _ := newSim(30)

	s.ScrollToRow(surface.Path(0, 20), surface.ScrollTop, false)
	assert.Equal(t, 21, s.Offset())

	_, ok := s.VisibleCell(surface.Path(0, 20))
	assert.True(t, ok)
	_, ok = s.VisibleCell(surface.Path(0, 0))
	assert.False(t, ok)

	s.ScrollToRow(surface.Path(0, 29), surface.ScrollBottom, false)
	assert.Equal(t, 21, s.Offset(), "offset is clamped to the content height")
}

func TestSurface_SelectionAndTap(t *testing.T) {
	s, src := newSim(3)

	s.SelectRow(surface.Path(0, 2), false, surface.ScrollNone)
	s.Tap(surface.Path(0, 1))
	assert.Equal(t, []surface.IndexPath{surface.Path(0, 1), surface.Path(0, 2)}, s.Selected())
	assert.Equal(t, []surface.IndexPath{surface.Path(0, 1)}, src.selected)

	s.DeselectRow(surface.Path(0, 2), false)
	assert.Equal(t, []surface.IndexPath{surface.Path(0, 1)}, s.Selected())

	s.SelectRow(surface.Path(4, 0), false, surface.ScrollNone)
	assert.Len(t, s.Violations(), 1)
}

func TestSurface_Focus(t *testing.T) {
	s, _ := newSim()

	var f surface.Focusable = s
	assert.True(t, f.Focus())
	assert.True(t, s.Focused())
	assert.True(t, f.Blur())
	assert.False(t, s.Focused())
}

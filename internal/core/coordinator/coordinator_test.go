package coordinator

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/eventbus/testbus"
	"github.com/colonyops/rowsync/internal/core/surface"
	"github.com/colonyops/rowsync/internal/core/surface/simsurface"
)

// model is the owner's content in tests.
//
// Most tests edit only through the coordinator and leave sections behind.
// Cells for rows sections does not have are drawn from behind instead.
type model struct {
	sections [][]string
	behind   func(surface.IndexPath) (string, bool)
}

func (m *model) NumberOfSections() int { return len(m.sections) }

func (m *model) NumberOfRows(section int) int { return len(m.sections[section]) }

func (m *model) Row(p surface.IndexPath) string { return m.sections[p.Section][p.Row] }

func (m *model) text(p surface.IndexPath) string {
	if p.Section < len(m.sections) && p.Row < len(m.sections[p.Section]) {
		return m.sections[p.Section][p.Row]
	}
	if m.behind != nil {
		if v, ok := m.behind(p); ok {
			return v
		}
	}
	return ""
}

func (m *model) ConfigureCell(cell surface.Cell, p surface.IndexPath) {
	if c, ok := cell.(*simsurface.Cell); ok {
		c.SetText(m.text(p))
	}
}

type delegateRecorder struct {
	selected, deselected []surface.IndexPath
	displayed            int
}

func (d *delegateRecorder) WillDisplay(surface.Cell, surface.IndexPath) { d.displayed++ }
func (d *delegateRecorder) DidSelectRow(p surface.IndexPath)            { d.selected = append(d.selected, p) }
func (d *delegateRecorder) DidDeselectRow(p surface.IndexPath)          { d.deselected = append(d.deselected, p) }

type fixture struct {
	c        *Coordinator[string]
	sim      *simsurface.Surface
	model    *model
	delegate *delegateRecorder
	bus      *testbus.Bus
}

func newFixture(t *testing.T, opts Options, sections ...[]string) *fixture {
	t.Helper()

	f := &fixture{
		sim:      simsurface.New(40, 20),
		model:    &model{sections: sections},
		delegate: &delegateRecorder{},
		bus:      testbus.New(t),
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	opts.Bus = f.bus.EventBus

	f.c = New[string](f.sim, f.model, f.delegate, opts)
	f.model.behind = f.c.Row
	require.NoError(t, f.c.ReloadData())
	f.sim.ResetCalls()
	f.bus.Reset()
	return f
}

// requireInSync checks the surface accepted every primitive and agrees with
// the coordinator about the shape.
func (f *fixture) requireInSync(t *testing.T) {
	t.Helper()
	require.Empty(t, f.sim.Violations())
	require.Equal(t, f.c.Shape(), f.sim.Shape())
}

func callNames(calls []simsurface.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

func TestReloadData_BuildsMirrorFromOutput(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"}, nil, []string{"c"})

	assert.Equal(t, []int{2, 0, 1}, f.c.Shape())
	assert.Equal(t, []string{"a", "b"}, f.c.Rows(0))

	v, ok := f.c.Row(surface.Path(2, 0))
	require.True(t, ok)
	assert.Equal(t, "c", v)
	f.requireInSync(t)
}

func TestReloadData_Idempotent(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b", "c"}, []string{"d"})

	require.NoError(t, f.c.ReloadData())
	require.NoError(t, f.c.ReloadData())

	assert.Equal(t, []int{3, 1}, f.c.Shape())
	assert.Equal(t, []string{"reload_data", "reload_data"}, callNames(f.sim.Calls()))
	assert.Empty(t, f.sim.Mutations())
	assert.Len(t, f.bus.Of(eventbus.EventDataReloaded), 2)
	f.requireInSync(t)
}

func TestReloadData_PicksUpOutsideChanges(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a"})

	f.model.sections = [][]string{{"x", "y"}, {"z"}}
	require.NoError(t, f.c.ReloadData())

	assert.Equal(t, []int{2, 1}, f.c.Shape())
	assert.Equal(t, []string{"x", "y"}, f.c.Rows(0))
	f.requireInSync(t)
}

func TestImplicitBatch_WrapsSingleOperation(t *testing.T) {
	f := newFixture(t, Options{Animation: surface.AnimationFade}, []string{"a", "b", "c"})

	require.NoError(t, f.c.DeleteRows(0, 1))

	assert.Equal(t, []string{"begin_updates", "delete_rows [[0,1]]", "end_updates"}, callNames(f.sim.Calls()))
	assert.Equal(t, surface.AnimationFade, f.sim.Mutations()[0].Animation)
	assert.Equal(t, []string{"a", "c"}, f.c.Rows(0))
	f.requireInSync(t)

	committed := testbus.Payloads[eventbus.BatchCommittedPayload](f.bus)
	require.Len(t, committed, 1)
	p := committed[0]
	assert.True(t, p.Implicit)
	assert.Equal(t, []string{"delete_rows [[0,1]]"}, p.Ops)
}

func TestEmptyIndexList_IssuesNothing(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a"})

	require.NoError(t, f.c.DeleteRows(0))
	require.NoError(t, f.c.InsertRows(0, nil))
	require.NoError(t, f.c.DeleteSections())

	assert.Empty(t, f.sim.Calls())
	f.bus.AssertNotPublished(t, eventbus.EventBatchCommitted)
}

func TestInvalidIndex_RejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b", "c"})

	tests := []struct {
		name string
		call func() error
	}{
		{"delete past end", func() error { return f.c.DeleteRows(0, 3) }},
		{"delete negative", func() error { return f.c.DeleteRows(0, -1) }},
		{"duplicate delete", func() error { return f.c.DeleteRows(0, 1, 1) }},
		{"insert past post-count", func() error { return f.c.InsertRows(0, []Post{5}, "x") }},
		{"reload missing section", func() error { return f.c.ReloadRows(1, []Pre{0}) }},
		{"move out of range", func() error { return f.c.MoveRow(surface.Path(0, 0), surface.Path(0, 3)) }},
		{"delete missing section", func() error { return f.c.DeleteSections(1) }},
		{"move section out of range", func() error { return f.c.MoveSection(0, 1) }},
		{"values mismatch", func() error { return f.c.InsertRows(0, []Post{0, 1}, "x") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.bus.Reset()

			err := tt.call()
			require.ErrorIs(t, err, ErrInvalidIndex)
			assert.True(t, IsProgrammingError(err))

			assert.Equal(t, []string{"a", "b", "c"}, f.c.Rows(0))
			assert.Empty(t, f.sim.Calls())
			assert.False(t, f.c.InBatch())
			assert.Len(t, f.bus.Of(eventbus.EventDiagnosticReported), 1)
		})
	}
}

func TestStrictMode_Panics(t *testing.T) {
	f := newFixture(t, Options{Strict: true}, []string{"a", "b", "c"})

	assert.Panics(t, func() { _ = f.c.DeleteRows(0, 7) })
	assert.Panics(t, func() { _ = f.c.ApplyRowDiff(0, RowDiff[string]{}) })

	assert.False(t, f.c.InBatch())
	assert.Equal(t, []int{3}, f.c.Shape())
	assert.Empty(t, f.sim.Calls())

	// still usable afterwards
	require.NoError(t, f.c.DeleteRows(0, 0))
	f.requireInSync(t)
}

func TestMoveRow_SingleMove(t *testing.T) {
	f := newFixture(t, Options{}, []string{"A", "B", "C"})

	require.NoError(t, f.c.MoveRow(surface.Path(0, 0), surface.Path(0, 2)))

	assert.Equal(t, []string{"B", "C", "A"}, f.c.Rows(0))
	assert.Equal(t, []string{"move_row [0,0]->[0,2]"}, callNames(f.sim.Mutations()))
	f.requireInSync(t)
}

func TestMoveRow_CrossSectionRejected(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a"}, []string{"b"})

	err := f.c.MoveRow(surface.Path(0, 0), surface.Path(1, 0))
	require.ErrorIs(t, err, ErrCrossSectionMove)
	require.ErrorIs(t, err, ErrInvalidIndex)
	assert.Empty(t, f.sim.Calls())
}

func TestSectionOperations(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"}, []string{"c"})

	require.NoError(t, f.c.InsertSections([]Post{1}, []string{"n1", "n2"}))
	assert.Equal(t, []int{2, 2, 1}, f.c.Shape())
	f.requireInSync(t)

	require.NoError(t, f.c.MoveSection(0, 2))
	assert.Equal(t, []string{"n1", "n2"}, f.c.Rows(0))
	assert.Equal(t, []string{"a", "b"}, f.c.Rows(2))
	f.requireInSync(t)

	require.NoError(t, f.c.DeleteSections(1))
	assert.Equal(t, []int{2, 2}, f.c.Shape())
	f.requireInSync(t)

	err := f.c.ReloadSections([]Pre{0}, []string{"z"})
	require.ErrorIs(t, err, ErrInvalidIndex)

	require.NoError(t, f.c.ReloadSections([]Pre{1}, []string{"A", "B"}))
	assert.Equal(t, []string{"A", "B"}, f.c.Rows(1))
	f.requireInSync(t)

	assert.Equal(t, []string{
		"insert_sections [1]",
		"move_section 0->2",
		"delete_sections [1]",
		"reload_sections [1]",
	}, callNames(f.sim.Mutations()))
}

func TestInsertSections_WithoutRowsAreEmpty(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a"})

	require.NoError(t, f.c.InsertSections([]Post{0, 2}))
	assert.Equal(t, []int{0, 1, 0}, f.c.Shape())
	f.requireInSync(t)
}

func TestReconfigureRow_UpdatesVisibleCell(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"})

	cell, ok := f.sim.Cell(surface.Path(0, 1))
	require.True(t, ok)
	assert.Equal(t, "b", cell.Text)

	f.model.sections[0][1] = "changed"
	require.NoError(t, f.c.ReconfigureRow(surface.Path(0, 1)))
	assert.Equal(t, "changed", cell.Text)
	assert.Empty(t, f.sim.Mutations())

	require.ErrorIs(t, f.c.ReconfigureRow(surface.Path(0, 2)), ErrInvalidIndex)
}

type frame surface.Rect

func (r frame) Frame() surface.Rect { return surface.Rect(r) }

func TestIndexPathFor(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"}, []string{"c"})

	cell, ok := f.sim.Cell(surface.Path(1, 0))
	require.True(t, ok)

	path, ok := f.c.IndexPathFor(cell)
	require.True(t, ok)
	assert.Equal(t, surface.Path(1, 0), path)

	// a control inside the cell, right half of the row
	path, ok = f.c.IndexPathFor(frame{X: 20, Y: cell.Frame().Y, W: 10, H: 1})
	require.True(t, ok)
	assert.Equal(t, surface.Path(1, 0), path)

	// section header line
	_, ok = f.c.IndexPathFor(frame{X: 0, Y: 0, W: 40, H: 1})
	assert.False(t, ok)
}

type plainSurface struct {
	surface.Surface
}

func TestFirstResponder(t *testing.T) {
	f := newFixture(t, Options{})

	assert.True(t, f.c.BecomeFirstResponder())
	assert.True(t, f.sim.Focused())
	assert.True(t, f.c.ResignFirstResponder())
	assert.False(t, f.sim.Focused())

	nop := zerolog.Nop()
	c := New[string](plainSurface{simsurface.New(10, 10)}, &model{}, nil, Options{Logger: &nop})
	assert.False(t, c.BecomeFirstResponder())
	assert.False(t, c.ResignFirstResponder())
}

func TestDelegate_ReceivesSurfaceEvents(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"})

	f.sim.Tap(surface.Path(0, 1))
	assert.Equal(t, []surface.IndexPath{surface.Path(0, 1)}, f.delegate.selected)
	assert.Positive(t, f.delegate.displayed)
}

func TestDelegate_Optional(t *testing.T) {
	nop := zerolog.Nop()
	sim := simsurface.New(10, 10)
	c := New[string](sim, &model{sections: [][]string{{"a"}}}, nil, Options{Logger: &nop})
	require.NoError(t, c.ReloadData())

	assert.NotPanics(t, func() { sim.Tap(surface.Path(0, 0)) })
}

func TestSelectRow_Direct(t *testing.T) {
	f := newFixture(t, Options{}, []string{"a", "b"})

	require.NoError(t, f.c.SelectRow(surface.Path(0, 1), false, surface.ScrollNone))
	assert.Equal(t, []surface.IndexPath{surface.Path(0, 1)}, f.sim.Selected())

	require.NoError(t, f.c.DeselectRow(surface.Path(0, 1), false))
	assert.Empty(t, f.sim.Selected())

	err := f.c.SelectRow(surface.Path(0, 2), false, surface.ScrollNone)
	require.ErrorIs(t, err, ErrInvalidIndex)
	assert.Empty(t, f.sim.Violations())
}

func TestFail_DiagnosticCarriesOwner(t *testing.T) {
	f := newFixture(t, Options{Owner: "list-1"}, []string{"a"})

	err := f.c.DeleteRows(0, 4)
	require.Error(t, err)

	diags := f.bus.Of(eventbus.EventDiagnosticReported)
	require.Len(t, diags, 1)
	p := diags[0].(eventbus.DiagnosticReportedPayload)
	assert.Equal(t, "list-1", p.Owner)
	assert.Equal(t, "delete_rows", p.Op)
	assert.True(t, errors.Is(p.Err, ErrInvalidIndex))
}

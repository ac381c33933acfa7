package replay

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/coordinator"
	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/eventbus/testbus"
	"github.com/colonyops/rowsync/pkg/tuitest"
)

func quietOptions() Options {
	nop := zerolog.Nop()
	return Options{Logger: &nop}
}

func TestRun_Basic(t *testing.T) {
	s, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	report, err := Run(context.Background(), s, quietOptions())
	require.NoError(t, err)

	require.Len(t, report.Steps, 5)
	assert.Equal(t, []string{
		"delete_rows [[0,2]]",
		"insert_rows [[0,0] [0,1]]",
		"reload_rows [[0,4]]",
	}, report.Steps[0].Ops)
	assert.Equal(t, []string{"move_row [0,0]->[0,5]"}, report.Steps[1].Ops)
	assert.Equal(t, []string{
		"insert_sections [1]",
		"delete_rows [[2,0]]",
		"select_row [[1,1]]",
	}, report.Steps[2].Ops)

	require.ErrorIs(t, report.Steps[3].Err, coordinator.ErrInvalidIndex)
	assert.Empty(t, report.Steps[3].Ops)
	require.ErrorIs(t, report.Steps[4].Err, coordinator.ErrEmptyDiff)

	assert.Equal(t, []int{6, 2, 0}, report.Shape)
	require.Len(t, report.Sections, 3)
	assert.Equal(t, []string{"y", "a", "b", "D", "e", "x"}, report.Sections[0].Rows)
	assert.Equal(t, "Later", report.Sections[1].Title)
	assert.Empty(t, report.Sections[2].Rows)
	assert.Equal(t, []bool{true}, report.Completions)
}

func TestRun_RollbackAndReentrancy(t *testing.T) {
	s, err := Load("testdata/rollback.yaml")
	require.NoError(t, err)

	report, err := Run(context.Background(), s, quietOptions())
	require.NoError(t, err)

	require.Len(t, report.Steps, 3)
	assert.Empty(t, report.Steps[0].Ops, "aborted batch reaches nothing")
	assert.Equal(t, []int{3}, report.Steps[0].Shape)

	assert.Equal(t, []string{"insert_rows [[0,3]]", "move_section 0->0"}, report.Steps[1].Ops)
	assert.Equal(t, []string{"one", "two", "three", "four"}, report.Sections[0].Rows)
	require.ErrorIs(t, report.Steps[2].Err, coordinator.ErrCrossSectionMove)
}

func TestRun_StrictModeStillMeetsExpectations(t *testing.T) {
	s, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	opts := quietOptions()
	opts.Strict = true

	report, err := Run(context.Background(), s, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 2, 0}, report.Shape)
}

func TestRun_UnexpectedError(t *testing.T) {
	s := &Script{
		Name:     "bad",
		Sections: []Section{{Rows: []string{"a"}}},
		Steps: []Step{
			{DeleteRows: &RowsStep{Section: 0, Rows: []int{0}}},
			{DeleteRows: &RowsStep{Section: 0, Rows: []int{0}}},
			{Reload: &ReloadStep{}},
		},
	}

	report, err := Run(context.Background(), s, quietOptions())
	require.ErrorIs(t, err, coordinator.ErrInvalidIndex)
	assert.Contains(t, err.Error(), "step 1 (delete_rows)")
	assert.Len(t, report.Steps, 2)
	assert.Equal(t, []int{0}, report.Shape)
}

func TestRun_UnmetExpectation(t *testing.T) {
	s := &Script{
		Name:     "lenient",
		Sections: []Section{{Rows: []string{"a"}}},
		Steps: []Step{
			{DeleteRows: &RowsStep{Section: 0, Rows: []int{0}}, Expect: "invalid_index"},
		},
	}

	_, err := Run(context.Background(), s, quietOptions())
	require.ErrorIs(t, err, ErrExpectation)
}

func TestRun_ScriptOverridesOptions(t *testing.T) {
	animated := true
	s := &Script{
		Name:     "animated",
		Animated: &animated,
		Sections: []Section{{Rows: []string{"a"}}},
		Steps: []Step{
			{InsertRows: &RowsStep{Section: 0, Rows: []int{1}, Values: []string{"b"}}},
		},
	}

	report, err := Run(context.Background(), s, quietOptions())
	require.NoError(t, err)

	var ends []bool
	for _, c := range report.Calls {
		if c.Name == "end_updates" {
			ends = append(ends, c.Animated)
		}
	}
	assert.Equal(t, []bool{true}, ends)
}

func TestRun_PublishesEvents(t *testing.T) {
	s, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	bus := testbus.New(t)
	opts := quietOptions()
	opts.Bus = bus.EventBus

	_, err = Run(context.Background(), s, opts)
	require.NoError(t, err)

	bus.AssertPublished(t, eventbus.EventDataReloaded)
	assert.Len(t, bus.Of(eventbus.EventBatchCommitted), 3)
	assert.Len(t, bus.Of(eventbus.EventDiagnosticReported), 2)
}

func TestRun_Cancelled(t *testing.T) {
	s, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, s, quietOptions())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Steps)
}

func TestReport_Render(t *testing.T) {
	s, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	report, err := Run(context.Background(), s, quietOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, nil))
	out := tuitest.StripANSI(buf.String())

	assert.Contains(t, out, "replay basic")
	assert.Contains(t, out, "delete_rows [[0,2]]; insert_rows [[0,0] [0,1]]; reload_rows [[0,4]]")
	assert.Contains(t, out, "rejected: invalid index")
	assert.Contains(t, out, "shape [6 2 0]")
	assert.Contains(t, out, "Later")
	assert.Contains(t, out, "1 completions, 0 interrupted")
}

func TestReport_Primitives(t *testing.T) {
	s, err := Load("testdata/rollback.yaml")
	require.NoError(t, err)

	report, err := Run(context.Background(), s, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"reload_data",
		"begin_updates",
		"insert_rows [[0,3]]",
		"move_section 0->0",
		"end_updates",
	}, report.Primitives())
}

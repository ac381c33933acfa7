package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/surface"
)

func newMirror(t *testing.T, sections ...[]string) *Mirror[string] {
	t.Helper()
	m := NewMirror[string]()
	counts := make([]int, len(sections))
	for i, s := range sections {
		counts[i] = len(s)
	}
	require.NoError(t, m.ReloadAll(counts, func(p surface.IndexPath) string {
		return sections[p.Section][p.Row]
	}))
	return m
}

func TestMirror_InsertRowsPostPositions(t *testing.T) {
	m := newMirror(t, []string{"a", "b", "c"})

	// 0 and 4 are positions in the five-row result
	require.NoError(t, m.InsertRows(0, []Post{4, 0}, []string{"end", "start"}))
	assert.Equal(t, []string{"start", "a", "b", "c", "end"}, m.Rows(0))
}

func TestMirror_DeleteRowsPrePositions(t *testing.T) {
	m := newMirror(t, []string{"a", "b", "c", "d"})

	require.NoError(t, m.DeleteRows(0, []Pre{3, 1}))
	assert.Equal(t, []string{"a", "c"}, m.Rows(0))
}

func TestMirror_ReloadRows(t *testing.T) {
	m := newMirror(t, []string{"a", "b"})

	require.NoError(t, m.ReloadRows(0, []Pre{1}, nil))
	assert.Equal(t, []string{"a", "b"}, m.Rows(0))

	require.NoError(t, m.ReloadRows(0, []Pre{1, 0}, []string{"B", "A"}))
	assert.Equal(t, []string{"A", "B"}, m.Rows(0))
}

func TestMirror_MoveRow(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"B", "C", "A"}},
		{2, 0, []string{"C", "A", "B"}},
		{1, 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		m := newMirror(t, []string{"A", "B", "C"})
		require.NoError(t, m.MoveRow(surface.Path(0, tt.from), surface.Path(0, tt.to)))
		assert.Equal(t, tt.want, m.Rows(0), "move %d -> %d", tt.from, tt.to)
	}
}

func TestMirror_Sections(t *testing.T) {
	m := newMirror(t, []string{"a"}, []string{"b", "c"})

	require.NoError(t, m.InsertSections([]Post{0}, [][]string{{"n"}}))
	assert.Equal(t, []int{1, 1, 2}, m.Shape())

	require.NoError(t, m.MoveSection(2, 0))
	assert.Equal(t, []int{2, 1, 1}, m.Shape())

	require.NoError(t, m.DeleteSections([]Pre{0, 2}))
	assert.Equal(t, []string{"n"}, m.Rows(0))

	require.ErrorIs(t, m.ReloadSections([]Pre{0}, [][]string{{"x", "y"}}), ErrInvalidIndex)
	require.NoError(t, m.ReloadSections([]Pre{0}, [][]string{{"x"}}))
	assert.Equal(t, []string{"x"}, m.Rows(0))
}

func TestMirror_CloneIsIndependent(t *testing.T) {
	m := newMirror(t, []string{"a", "b"})
	c := m.Clone()

	require.NoError(t, c.DeleteRows(0, []Pre{0}))
	require.NoError(t, c.ReloadRows(0, []Pre{0}, []string{"B"}))

	assert.Equal(t, []string{"a", "b"}, m.Rows(0))
	assert.Equal(t, []string{"B"}, c.Rows(0))
}

func TestMirror_ErrorsLeaveStateUntouched(t *testing.T) {
	m := newMirror(t, []string{"a", "b"})

	require.ErrorIs(t, m.InsertRows(0, []Post{0, 3}, nil), ErrInvalidIndex)
	require.ErrorIs(t, m.DeleteRows(0, []Pre{0, 0}), ErrInvalidIndex)
	require.ErrorIs(t, m.DeleteRows(2, []Pre{0}), ErrInvalidIndex)
	require.ErrorIs(t, m.ReloadAll([]int{-1}, nil), ErrInvalidIndex)

	assert.Equal(t, []string{"a", "b"}, m.Rows(0))
}

func TestMirror_RowLookup(t *testing.T) {
	m := newMirror(t, []string{"a"})

	v, ok := m.Row(surface.Path(0, 0))
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = m.Row(surface.Path(0, 1))
	assert.False(t, ok)
	_, ok = m.Row(surface.Path(-1, 0))
	assert.False(t, ok)
	assert.Zero(t, m.NumberOfRows(5))
	assert.Nil(t, m.Rows(5))
}

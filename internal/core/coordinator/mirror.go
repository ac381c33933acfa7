package coordinator

import (
	"fmt"
	"slices"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// Mirror is the coordinator's private copy of the section/row structure. It
// holds one payload per row and is used for index bookkeeping only.
//
// Every method validates its arguments against the current shape before
// touching anything; a method that returns an error leaves the Mirror as it
// was.
type Mirror[T any] struct {
	sections [][]T
}

// NewMirror returns an empty Mirror.
func NewMirror[T any]() *Mirror[T] {
	return &Mirror[T]{}
}

// NumberOfSections returns the section count.
func (m *Mirror[T]) NumberOfSections() int {
	return len(m.sections)
}

// NumberOfRows returns the row count of section, or 0 when section does not
// exist.
func (m *Mirror[T]) NumberOfRows(section int) int {
	if section < 0 || section >= len(m.sections) {
		return 0
	}
	return len(m.sections[section])
}

// Shape returns the row count of every section.
func (m *Mirror[T]) Shape() []int {
	shape := make([]int, len(m.sections))
	for i, rows := range m.sections {
		shape[i] = len(rows)
	}
	return shape
}

// Rows returns a copy of the payloads in section.
func (m *Mirror[T]) Rows(section int) []T {
	if section < 0 || section >= len(m.sections) {
		return nil
	}
	return slices.Clone(m.sections[section])
}

// Row returns the payload at path.
func (m *Mirror[T]) Row(path surface.IndexPath) (T, bool) {
	var zero T
	if path.Section < 0 || path.Section >= len(m.sections) {
		return zero, false
	}
	rows := m.sections[path.Section]
	if path.Row < 0 || path.Row >= len(rows) {
		return zero, false
	}
	return rows[path.Row], true
}

// Clone returns a deep copy of the structure. Payloads are copied by value.
func (m *Mirror[T]) Clone() *Mirror[T] {
	c := &Mirror[T]{sections: make([][]T, len(m.sections))}
	for i, rows := range m.sections {
		c.sections[i] = slices.Clone(rows)
	}
	return c
}

// ReloadAll replaces the whole structure with len(counts) sections holding
// counts[i] rows each. value supplies the payload for every row and may be
// nil.
func (m *Mirror[T]) ReloadAll(counts []int, value func(surface.IndexPath) T) error {
	for s, n := range counts {
		if n < 0 {
			return fmt.Errorf("%w: section %d has negative row count %d", ErrInvalidIndex, s, n)
		}
	}

	sections := make([][]T, len(counts))
	for s, n := range counts {
		rows := make([]T, n)
		if value != nil {
			for r := range rows {
				rows[r] = value(surface.Path(s, r))
			}
		}
		sections[s] = rows
	}
	m.sections = sections
	return nil
}

// InsertRows inserts rows into section. Positions are measured against the
// section as it is after the insertion. values pairs with rows and may be nil.
func (m *Mirror[T]) InsertRows(section int, rows []Post, values []T) error {
	if err := checkIndex("section", section, len(m.sections)); err != nil {
		return err
	}
	cur := m.sections[section]
	pos, vals, err := sortedPairs("row", rows, values, len(cur)+len(rows))
	if err != nil {
		return err
	}

	for i, p := range pos {
		cur = slices.Insert(cur, p, vals[i])
	}
	m.sections[section] = cur
	return nil
}

// DeleteRows removes rows from section. Positions are measured against the
// section as it is before the deletion.
func (m *Mirror[T]) DeleteRows(section int, rows []Pre) error {
	if err := checkIndex("section", section, len(m.sections)); err != nil {
		return err
	}
	cur := m.sections[section]
	pos, err := indexSet("row", rows, len(cur))
	if err != nil {
		return err
	}

	for i := len(pos) - 1; i >= 0; i-- {
		cur = slices.Delete(cur, pos[i], pos[i]+1)
	}
	m.sections[section] = cur
	return nil
}

// ReloadRows replaces the payloads of existing rows. It has no structural
// effect; with nil values it only validates.
func (m *Mirror[T]) ReloadRows(section int, rows []Pre, values []T) error {
	if err := checkIndex("section", section, len(m.sections)); err != nil {
		return err
	}
	cur := m.sections[section]
	pos, vals, err := sortedPairs("row", rows, values, len(cur))
	if err != nil {
		return err
	}

	if values != nil {
		for i, p := range pos {
			cur[p] = vals[i]
		}
	}
	return nil
}

// MoveRow removes the row at from and inserts it at to. Both paths must name
// the same section; from is a Pre position and to a Post position.
func (m *Mirror[T]) MoveRow(from, to surface.IndexPath) error {
	if err := checkIndex("section", from.Section, len(m.sections)); err != nil {
		return err
	}
	if from.Section != to.Section {
		return fmt.Errorf("%w: %s -> %s", ErrCrossSectionMove, from, to)
	}
	cur := m.sections[from.Section]
	if err := checkIndex("row", from.Row, len(cur)); err != nil {
		return err
	}
	if err := checkIndex("row", to.Row, len(cur)); err != nil {
		return err
	}

	v := cur[from.Row]
	cur = slices.Delete(cur, from.Row, from.Row+1)
	cur = slices.Insert(cur, to.Row, v)
	m.sections[from.Section] = cur
	return nil
}

// InsertSections inserts new sections. Positions are measured against the
// structure after the insertion. rows pairs with sections and may be nil, in
// which case the new sections are empty.
func (m *Mirror[T]) InsertSections(sections []Post, rows [][]T) error {
	pos, vals, err := sortedPairs("section", sections, rows, len(m.sections)+len(sections))
	if err != nil {
		return err
	}

	for i, p := range pos {
		m.sections = slices.Insert(m.sections, p, slices.Clone(vals[i]))
	}
	return nil
}

// DeleteSections removes sections, measured against the structure before the
// deletion.
func (m *Mirror[T]) DeleteSections(sections []Pre) error {
	pos, err := indexSet("section", sections, len(m.sections))
	if err != nil {
		return err
	}

	for i := len(pos) - 1; i >= 0; i-- {
		m.sections = slices.Delete(m.sections, pos[i], pos[i]+1)
	}
	return nil
}

// ReloadSections replaces the payloads of existing sections. A reload never
// changes a section's row count; rows may be nil to only validate.
func (m *Mirror[T]) ReloadSections(sections []Pre, rows [][]T) error {
	pos, vals, err := sortedPairs("section", sections, rows, len(m.sections))
	if err != nil {
		return err
	}

	if rows == nil {
		return nil
	}
	for i, p := range pos {
		if len(vals[i]) != len(m.sections[p]) {
			return fmt.Errorf("%w: reload of section %d changes row count %d -> %d",
				ErrInvalidIndex, p, len(m.sections[p]), len(vals[i]))
		}
	}
	for i, p := range pos {
		m.sections[p] = slices.Clone(vals[i])
	}
	return nil
}

// MoveSection removes the section at from and inserts it at to.
func (m *Mirror[T]) MoveSection(from Pre, to Post) error {
	n := len(m.sections)
	if err := checkIndex("section", int(from), n); err != nil {
		return err
	}
	if err := checkIndex("section", int(to), n); err != nil {
		return err
	}

	rows := m.sections[from]
	m.sections = slices.Delete(m.sections, int(from), int(from)+1)
	m.sections = slices.Insert(m.sections, int(to), rows)
	return nil
}

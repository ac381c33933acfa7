// Package sections provides an in-memory owner model: titled sections of rows
// that a coordinator can use as its Output.
package sections

import (
	"fmt"
	"slices"
	"sync"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// Section is a titled group of rows.
type Section[T any] struct {
	Title string
	Rows  []T
}

// TextCell is implemented by cells that display a single line of text.
type TextCell interface {
	surface.Cell
	SetText(s string)
}

// Store is a thread-safe list of sections. Its mutators mirror the
// coordinator's operations so an owner can edit the model first and then
// describe the same change to the coordinator.
type Store[T any] struct {
	mu       sync.RWMutex
	sections []Section[T]
	format   func(T) string
}

// New creates a Store. format renders a row for display; nil uses fmt's %v.
func New[T any](format func(T) string, sections ...Section[T]) *Store[T] {
	if format == nil {
		format = func(v T) string { return fmt.Sprint(v) }
	}
	s := &Store[T]{format: format}
	s.Set(sections)
	return s
}

// Set replaces every section.
func (s *Store[T]) Set(sections []Section[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = make([]Section[T], len(sections))
	for i, sec := range sections {
		s.sections[i] = Section[T]{Title: sec.Title, Rows: slices.Clone(sec.Rows)}
	}
}

// Sections returns a copy of every section.
func (s *Store[T]) Sections() []Section[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Section[T], len(s.sections))
	for i, sec := range s.sections {
		out[i] = Section[T]{Title: sec.Title, Rows: slices.Clone(sec.Rows)}
	}
	return out
}

// NumberOfSections implements coordinator.Output.
func (s *Store[T]) NumberOfSections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

// NumberOfRows implements coordinator.Output.
func (s *Store[T]) NumberOfRows(section int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if section < 0 || section >= len(s.sections) {
		return 0
	}
	return len(s.sections[section].Rows)
}

// Row implements coordinator.Output. A missing row yields the zero value.
func (s *Store[T]) Row(path surface.IndexPath) T {
	v, _ := s.Lookup(path)
	return v
}

// Lookup returns the row at path.
func (s *Store[T]) Lookup(path surface.IndexPath) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if path.Section < 0 || path.Section >= len(s.sections) {
		return zero, false
	}
	rows := s.sections[path.Section].Rows
	if path.Row < 0 || path.Row >= len(rows) {
		return zero, false
	}
	return rows[path.Row], true
}

// Title returns the title of section.
func (s *Store[T]) Title(section int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if section < 0 || section >= len(s.sections) {
		return ""
	}
	return s.sections[section].Title
}

// Format renders v with the store's formatter.
func (s *Store[T]) Format(v T) string {
	return s.format(v)
}

// ConfigureCell implements coordinator.Output. Cells that cannot show text
// are left alone.
func (s *Store[T]) ConfigureCell(cell surface.Cell, path surface.IndexPath) {
	tc, ok := cell.(TextCell)
	if !ok {
		return
	}
	v, ok := s.Lookup(path)
	if !ok {
		return
	}
	tc.SetText(s.format(v))
}

// InsertRows inserts values at post-insertion positions rows.
func (s *Store[T]) InsertRows(section int, rows []int, values []T) error {
	if len(rows) != len(values) {
		return fmt.Errorf("%d values for %d rows", len(values), len(rows))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(section); err != nil {
		return err
	}

	order := sortedOrder(rows)
	cur := s.sections[section].Rows
	for _, i := range order {
		if rows[i] < 0 || rows[i] > len(cur) {
			return fmt.Errorf("row %d out of range", rows[i])
		}
		cur = slices.Insert(cur, rows[i], values[i])
	}
	s.sections[section].Rows = cur
	return nil
}

// DeleteRows removes the rows at pre-deletion positions.
func (s *Store[T]) DeleteRows(section int, rows []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(section); err != nil {
		return err
	}

	sorted := slices.Sorted(slices.Values(rows))
	cur := s.sections[section].Rows
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		if r < 0 || r >= len(cur) {
			return fmt.Errorf("row %d out of range", r)
		}
		cur = slices.Delete(cur, r, r+1)
	}
	s.sections[section].Rows = cur
	return nil
}

// SetRow replaces the row at path.
func (s *Store[T]) SetRow(path surface.IndexPath, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(path.Section); err != nil {
		return err
	}
	rows := s.sections[path.Section].Rows
	if path.Row < 0 || path.Row >= len(rows) {
		return fmt.Errorf("row %s out of range", path)
	}
	rows[path.Row] = v
	return nil
}

// MoveRow moves a row within its section.
func (s *Store[T]) MoveRow(section, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(section); err != nil {
		return err
	}
	cur := s.sections[section].Rows
	if from < 0 || from >= len(cur) || to < 0 || to >= len(cur) {
		return fmt.Errorf("move %d -> %d out of range", from, to)
	}
	v := cur[from]
	cur = slices.Delete(cur, from, from+1)
	s.sections[section].Rows = slices.Insert(cur, to, v)
	return nil
}

// InsertSections inserts sections at post-insertion positions.
func (s *Store[T]) InsertSections(at []int, sections []Section[T]) error {
	if len(at) != len(sections) {
		return fmt.Errorf("%d sections for %d positions", len(sections), len(at))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range sortedOrder(at) {
		if at[i] < 0 || at[i] > len(s.sections) {
			return fmt.Errorf("section %d out of range", at[i])
		}
		sec := Section[T]{Title: sections[i].Title, Rows: slices.Clone(sections[i].Rows)}
		s.sections = slices.Insert(s.sections, at[i], sec)
	}
	return nil
}

// DeleteSections removes sections at pre-deletion positions.
func (s *Store[T]) DeleteSections(at []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := slices.Sorted(slices.Values(at))
	for i := len(sorted) - 1; i >= 0; i-- {
		if err := s.checkSection(sorted[i]); err != nil {
			return err
		}
		s.sections = slices.Delete(s.sections, sorted[i], sorted[i]+1)
	}
	return nil
}

// SetSection replaces the rows of an existing section, keeping its title.
func (s *Store[T]) SetSection(section int, rows []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(section); err != nil {
		return err
	}
	s.sections[section].Rows = slices.Clone(rows)
	return nil
}

// MoveSection moves a section.
func (s *Store[T]) MoveSection(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSection(from); err != nil {
		return err
	}
	if err := s.checkSection(to); err != nil {
		return err
	}
	sec := s.sections[from]
	s.sections = slices.Delete(s.sections, from, from+1)
	s.sections = slices.Insert(s.sections, to, sec)
	return nil
}

func (s *Store[T]) checkSection(section int) error {
	if section < 0 || section >= len(s.sections) {
		return fmt.Errorf("section %d out of range", section)
	}
	return nil
}

// sortedOrder returns the indexes of positions in ascending position order.
func sortedOrder(positions []int) []int {
	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return positions[a] - positions[b] })
	return order
}

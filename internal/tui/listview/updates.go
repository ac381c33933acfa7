package listview

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// ReloadData implements surface.Surface. It rebuilds the shape from the
// source and clears the selection.
func (m *Model) ReloadData() {
	if m.depth > 0 {
		m.log.Error().Msg("reload_data inside an update; ignored")
		return
	}
	m.resync()
	m.clampCursor()
	m.clampOffset()
	m.render()
}

func (m *Model) resync() {
	if m.src == nil {
		m.sections = nil
		return
	}
	n := m.src.NumberOfSections()
	m.sections = make([]section, n)
	for i := range n {
		m.sections[i].rows = make([]row, m.src.NumberOfRows(i))
	}
}

// BeginUpdates implements surface.Surface. Animated updates still on screen
// are interrupted and complete with finished=false.
func (m *Model) BeginUpdates() {
	m.depth++
	if m.depth > 1 {
		return
	}
	for id, f := range m.flights {
		if f.animated && f.finished {
			f.finished = false
			m.queue(done(id))
		}
	}
	m.lastID++
	m.current = m.lastID
}

// EndUpdates implements surface.Surface.
func (m *Model) EndUpdates(animated bool, completion func(finished bool)) {
	if m.depth == 0 {
		m.log.Error().Msg("end_updates without begin_updates")
		return
	}
	m.depth--
	if m.depth > 0 {
		if completion != nil {
			m.nested = append(m.nested, completion)
		}
		return
	}

	id := m.current
	m.current = 0
	for i := range m.sections {
		s := &m.sections[i]
		if !s.fresh {
			continue
		}
		s.fresh = false
		s.rows = make([]row, m.src.NumberOfRows(i))
		for j := range s.rows {
			s.rows[j] = row{mark: s.mark, flight: s.flight}
		}
	}

	if !m.inSync() {
		m.log.Error().
			Ints("list", m.Shape()).
			Int("sections", m.src.NumberOfSections()).
			Msg("update left the list out of sync with its source; reloading")
		m.resync()
	}

	animated = animated && m.duration > 0
	if !animated {
		m.clearMarks(id)
	}

	completions := append(m.nested, completion)
	m.nested = nil
	completions = slices.DeleteFunc(completions, func(fn func(bool)) bool { return fn == nil })
	if len(completions) > 0 || animated {
		m.flights[id] = &flight{animated: animated, finished: true, completions: completions}
		if animated {
			m.queue(tea.Tick(m.duration, func(time.Time) tea.Msg { return AnimationDoneMsg{ID: id} }))
		} else {
			m.queue(done(id))
		}
	}

	m.clampCursor()
	m.clampOffset()
	m.render()
}

func (m *Model) inSync() bool {
	if m.src == nil {
		return len(m.sections) == 0
	}
	if len(m.sections) != m.src.NumberOfSections() {
		return false
	}
	for i, s := range m.sections {
		if len(s.rows) != m.src.NumberOfRows(i) {
			return false
		}
	}
	return true
}

// implicit wraps a primitive issued outside BeginUpdates/EndUpdates in its
// own unanimated update.
func (m *Model) implicit() func() {
	if m.depth > 0 {
		return func() {}
	}
	m.BeginUpdates()
	return func() { m.EndUpdates(false, nil) }
}

// InsertRows implements surface.Surface. paths name positions after the
// insertion.
func (m *Model) InsertRows(paths []surface.IndexPath, _ surface.Animation) {
	defer m.implicit()()
	for sec, rows := range groupRows(paths) {
		if !m.sectionExists(sec, "insert_rows") || m.sections[sec].fresh {
			continue
		}
		slices.Sort(rows)
		s := &m.sections[sec]
		for _, r := range rows {
			if r < 0 || r > len(s.rows) {
				m.log.Error().Int("section", sec).Int("row", r).Msg("insert_rows: row out of range")
				continue
			}
			s.rows = slices.Insert(s.rows, r, row{mark: markInserted, flight: m.current})
		}
	}
}

// DeleteRows implements surface.Surface.
func (m *Model) DeleteRows(paths []surface.IndexPath, _ surface.Animation) {
	defer m.implicit()()
	for sec, rows := range groupRows(paths) {
		if !m.sectionExists(sec, "delete_rows") || m.sections[sec].fresh {
			continue
		}
		slices.Sort(rows)
		slices.Reverse(rows)
		s := &m.sections[sec]
		for _, r := range rows {
			if r < 0 || r >= len(s.rows) {
				m.log.Error().Int("section", sec).Int("row", r).Msg("delete_rows: row out of range")
				continue
			}
			s.rows = slices.Delete(s.rows, r, r+1)
		}
	}
}

// ReloadRows implements surface.Surface.
func (m *Model) ReloadRows(paths []surface.IndexPath, _ surface.Animation) {
	defer m.implicit()()
	for _, p := range paths {
		if !m.sectionExists(p.Section, "reload_rows") || m.sections[p.Section].fresh {
			continue
		}
		s := &m.sections[p.Section]
		if p.Row < 0 || p.Row >= len(s.rows) {
			m.log.Error().Stringer("path", p).Msg("reload_rows: row out of range")
			continue
		}
		s.rows[p.Row].mark, s.rows[p.Row].flight = markReloaded, m.current
	}
}

// MoveRow implements surface.Surface.
func (m *Model) MoveRow(from, to surface.IndexPath) {
	defer m.implicit()()
	if !m.sectionExists(from.Section, "move_row") || !m.sectionExists(to.Section, "move_row") {
		return
	}
	if m.sections[from.Section].fresh || m.sections[to.Section].fresh {
		return
	}
	src := &m.sections[from.Section]
	if from.Row < 0 || from.Row >= len(src.rows) {
		m.log.Error().Stringer("from", from).Msg("move_row: source out of range")
		return
	}
	r := src.rows[from.Row]
	src.rows = slices.Delete(src.rows, from.Row, from.Row+1)

	dst := &m.sections[to.Section]
	if to.Row < 0 || to.Row > len(dst.rows) {
		m.log.Error().Stringer("to", to).Msg("move_row: destination out of range")
		src.rows = slices.Insert(src.rows, from.Row, r)
		return
	}
	r.mark, r.flight = markMoved, m.current
	dst.rows = slices.Insert(dst.rows, to.Row, r)
	if m.cursor == from {
		m.cursor = to
	}
}

// InsertSections implements surface.Surface.
func (m *Model) InsertSections(sections []int, _ surface.Animation) {
	defer m.implicit()()
	idx := slices.Sorted(slices.Values(sections))
	for _, i := range idx {
		if i < 0 || i > len(m.sections) {
			m.log.Error().Int("section", i).Msg("insert_sections: section out of range")
			continue
		}
		m.sections = slices.Insert(m.sections, i, section{fresh: true, mark: markInserted, flight: m.current})
	}
}

// DeleteSections implements surface.Surface.
func (m *Model) DeleteSections(sections []int, _ surface.Animation) {
	defer m.implicit()()
	idx := slices.Sorted(slices.Values(sections))
	slices.Reverse(idx)
	for _, i := range idx {
		if !m.sectionExists(i, "delete_sections") {
			continue
		}
		m.sections = slices.Delete(m.sections, i, i+1)
	}
}

// ReloadSections implements surface.Surface. Reloaded sections reread their
// rows when the update ends.
func (m *Model) ReloadSections(sections []int, _ surface.Animation) {
	defer m.implicit()()
	for _, i := range sections {
		if !m.sectionExists(i, "reload_sections") {
			continue
		}
		s := &m.sections[i]
		if s.fresh {
			continue
		}
		s.fresh, s.mark, s.flight = true, markReloaded, m.current
	}
}

// MoveSection implements surface.Surface.
func (m *Model) MoveSection(from, to int) {
	defer m.implicit()()
	if !m.sectionExists(from, "move_section") {
		return
	}
	s := m.sections[from]
	m.sections = slices.Delete(m.sections, from, from+1)
	if to < 0 || to > len(m.sections) {
		m.log.Error().Int("to", to).Msg("move_section: destination out of range")
		m.sections = slices.Insert(m.sections, from, s)
		return
	}
	if !s.fresh {
		s.mark, s.flight = markMoved, m.current
	}
	m.sections = slices.Insert(m.sections, to, s)
	if m.cursor.Section == from {
		m.cursor.Section = to
	}
}

func (m *Model) sectionExists(i int, op string) bool {
	if i < 0 || i >= len(m.sections) {
		m.log.Error().Int("section", i).Msgf("%s: section out of range", op)
		return false
	}
	return true
}

func groupRows(paths []surface.IndexPath) map[int][]int {
	out := make(map[int][]int)
	for _, p := range paths {
		out[p.Section] = append(out[p.Section], p.Row)
	}
	return out
}

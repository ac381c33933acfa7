// Package simsurface is a reference rendering surface. It tracks its own
// shape by applying every primitive it receives, records the calls, and
// reports contract violations instead of drawing anything.
//
// Layout is one line per section header followed by one line per row, so the
// frame of every row is a 1-high rectangle the full width of the surface.
package simsurface

import (
	"fmt"
	"slices"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// Call is one recorded surface call.
type Call struct {
	Name      string
	Paths     []surface.IndexPath
	Sections  []int
	From, To  surface.IndexPath
	Animation surface.Animation
	Animated  bool
	Position  surface.ScrollPosition
}

func (c Call) String() string {
	switch c.Name {
	case "move_row":
		return fmt.Sprintf("%s %s->%s", c.Name, c.From, c.To)
	case "move_section":
		return fmt.Sprintf("%s %d->%d", c.Name, c.From.Section, c.To.Section)
	case "insert_sections", "delete_sections", "reload_sections":
		return fmt.Sprintf("%s %v", c.Name, c.Sections)
	case "insert_rows", "delete_rows", "reload_rows", "select_row", "deselect_row", "scroll_to_row":
		return fmt.Sprintf("%s %v", c.Name, c.Paths)
	default:
		return c.Name
	}
}

// Cell is the simulator's cell handle.
type Cell struct {
	Path  surface.IndexPath
	Text  string
	frame surface.Rect
}

// Frame implements surface.Framed.
func (c *Cell) Frame() surface.Rect { return c.frame }

// SetText is what an output's ConfigureCell calls.
func (c *Cell) SetText(s string) { c.Text = s }

type completion struct {
	fn       func(bool)
	finished bool
}

// Surface is the simulator. The zero value is not usable; call New.
type Surface struct {
	src   surface.Source
	shape []int
	calls []Call

	// fresh marks sections inserted in the open update. Their rows are read
	// from the source when the update ends.
	fresh []bool

	depth      int
	pending    []*completion
	violations []error

	width, height int
	offset        int
	selected      map[surface.IndexPath]bool
	cells         map[surface.IndexPath]*Cell
	focused       bool
}

// New creates a simulator with a visible area of width x height lines.
func New(width, height int) *Surface {
	return &Surface{
		width:    width,
		height:   height,
		selected: make(map[surface.IndexPath]bool),
		cells:    make(map[surface.IndexPath]*Cell),
	}
}

// Bind implements surface.Surface.
func (s *Surface) Bind(src surface.Source) { s.src = src }

// Shape returns the row count of every section as the surface sees it.
func (s *Surface) Shape() []int { return slices.Clone(s.shape) }

// Calls returns every recorded call.
func (s *Surface) Calls() []Call { return slices.Clone(s.calls) }

// Mutations returns the recorded structural primitives, without batch
// markers, reloads of all data, selection or scrolling.
func (s *Surface) Mutations() []Call {
	var out []Call
	for _, c := range s.calls {
		switch c.Name {
		case "insert_rows", "delete_rows", "reload_rows", "move_row",
			"insert_sections", "delete_sections", "reload_sections", "move_section":
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (s *Surface) ResetCalls() { s.calls = nil }

// Violations returns every contract violation seen so far.
func (s *Surface) Violations() []error { return slices.Clone(s.violations) }

// InBatch reports whether BeginUpdates has been called without a matching
// EndUpdates.
func (s *Surface) InBatch() bool { return s.depth > 0 }

// PendingCompletions returns the number of completions waiting for Flush.
func (s *Surface) PendingCompletions() int { return len(s.pending) }

// Flush finishes every submitted update and runs its completion. Completions
// added while flushing wait for the next Flush.
func (s *Surface) Flush() {
	pending := s.pending
	s.pending = nil
	for _, c := range pending {
		c.fn(c.finished)
	}
}

// Selected returns the selected rows in order.
func (s *Surface) Selected() []surface.IndexPath {
	out := make([]surface.IndexPath, 0, len(s.selected))
	for p := range s.selected {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b surface.IndexPath) int {
		if a.Section != b.Section {
			return a.Section - b.Section
		}
		return a.Row - b.Row
	})
	return out
}

// Offset returns the first visible content line.
func (s *Surface) Offset() int { return s.offset }

// Focused reports whether the surface holds focus.
func (s *Surface) Focused() bool { return s.focused }

// Tap simulates the user selecting path.
func (s *Surface) Tap(path surface.IndexPath) {
	s.selected[path] = true
	if s.src != nil {
		s.src.DidSelectRow(path)
	}
}

func (s *Surface) record(c Call) {
	s.calls = append(s.calls, c)
}

func (s *Surface) violate(format string, args ...any) {
	s.violations = append(s.violations, fmt.Errorf(format, args...))
}

// ReloadData implements surface.Surface.
func (s *Surface) ReloadData() {
	s.record(Call{Name: "reload_data"})
	if s.depth > 0 {
		s.violate("reload_data inside an update block")
	}
	s.shape = s.sourceShape()
	s.fresh = make([]bool, len(s.shape))
	clear(s.selected)
	s.render()
}

// BeginUpdates implements surface.Surface. Updates still animating from an
// earlier batch are interrupted.
func (s *Surface) BeginUpdates() {
	s.record(Call{Name: "begin_updates"})
	s.depth++
	for _, c := range s.pending {
		c.finished = false
	}
}

// EndUpdates implements surface.Surface. The shape is checked against the
// source, the same consistency check a real list widget performs.
func (s *Surface) EndUpdates(animated bool, fn func(bool)) {
	s.record(Call{Name: "end_updates", Animated: animated})
	if s.depth == 0 {
		s.violate("end_updates without begin_updates")
		return
	}
	s.depth--
	if s.depth > 0 {
		return
	}

	for i, f := range s.fresh {
		if f && s.src != nil {
			s.shape[i] = s.src.NumberOfRows(i)
		}
		s.fresh[i] = false
	}
	if want := s.sourceShape(); !slices.Equal(want, s.shape) {
		s.violate("shape after update %v does not match source %v", s.shape, want)
		s.shape = want
		s.fresh = make([]bool, len(want))
	}
	if fn != nil {
		s.pending = append(s.pending, &completion{fn: fn, finished: true})
	}
	s.render()
}

func (s *Surface) sourceShape() []int {
	if s.src == nil {
		return nil
	}
	shape := make([]int, s.src.NumberOfSections())
	for i := range shape {
		shape[i] = s.src.NumberOfRows(i)
	}
	return shape
}

func (s *Surface) requireBatch(name string) {
	if s.depth == 0 {
		s.violate("%s outside an update block", name)
	}
}

// InsertRows implements surface.Surface. Paths are post-insertion positions.
func (s *Surface) InsertRows(paths []surface.IndexPath, anim surface.Animation) {
	s.record(Call{Name: "insert_rows", Paths: slices.Clone(paths), Animation: anim})
	s.requireBatch("insert_rows")

	for section, rows := range groupRows(paths) {
		if section < 0 || section >= len(s.shape) {
			s.violate("insert_rows: section %d out of range", section)
			continue
		}
		if s.fresh[section] {
			continue
		}
		n := s.shape[section] + len(rows)
		for i, r := range rows {
			if r < 0 || r >= n || (i > 0 && rows[i-1] == r) {
				s.violate("insert_rows: row %d invalid for post-insert count %d", r, n)
			}
		}
		s.shape[section] = n
	}
}

// DeleteRows implements surface.Surface. Paths are pre-deletion positions.
func (s *Surface) DeleteRows(paths []surface.IndexPath, anim surface.Animation) {
	s.record(Call{Name: "delete_rows", Paths: slices.Clone(paths), Animation: anim})
	s.requireBatch("delete_rows")

	for section, rows := range groupRows(paths) {
		if section < 0 || section >= len(s.shape) {
			s.violate("delete_rows: section %d out of range", section)
			continue
		}
		if s.fresh[section] {
			continue
		}
		n := s.shape[section]
		for i, r := range rows {
			if r < 0 || r >= n || (i > 0 && rows[i-1] == r) {
				s.violate("delete_rows: row %d invalid for count %d", r, n)
			}
		}
		s.shape[section] = n - len(rows)
	}
}

// ReloadRows implements surface.Surface.
func (s *Surface) ReloadRows(paths []surface.IndexPath, anim surface.Animation) {
	s.record(Call{Name: "reload_rows", Paths: slices.Clone(paths), Animation: anim})
	s.requireBatch("reload_rows")

	for _, p := range paths {
		if s.isFresh(p.Section) {
			continue
		}
		if !s.exists(p) {
			s.violate("reload_rows: %s does not exist", p)
		}
	}
}

// MoveRow implements surface.Surface.
func (s *Surface) MoveRow(from, to surface.IndexPath) {
	s.record(Call{Name: "move_row", From: from, To: to})
	s.requireBatch("move_row")

	if from.Section != to.Section {
		s.violate("move_row: cross-section move %s -> %s", from, to)
		return
	}
	if s.isFresh(from.Section) {
		return
	}
	if !s.exists(from) || !s.exists(to) {
		s.violate("move_row: %s -> %s out of range", from, to)
	}
}

// InsertSections implements surface.Surface.
func (s *Surface) InsertSections(sections []int, anim surface.Animation) {
	s.record(Call{Name: "insert_sections", Sections: slices.Clone(sections), Animation: anim})
	s.requireBatch("insert_sections")

	sorted := slices.Sorted(slices.Values(sections))
	n := len(s.shape) + len(sorted)
	for _, sec := range sorted {
		if sec < 0 || sec >= n {
			s.violate("insert_sections: section %d invalid for post-insert count %d", sec, n)
			continue
		}
		s.shape = slices.Insert(s.shape, sec, 0)
		s.fresh = slices.Insert(s.fresh, sec, true)
	}
}

// DeleteSections implements surface.Surface.
func (s *Surface) DeleteSections(sections []int, anim surface.Animation) {
	s.record(Call{Name: "delete_sections", Sections: slices.Clone(sections), Animation: anim})
	s.requireBatch("delete_sections")

	sorted := slices.Sorted(slices.Values(sections))
	for i := len(sorted) - 1; i >= 0; i-- {
		sec := sorted[i]
		if sec < 0 || sec >= len(s.shape) {
			s.violate("delete_sections: section %d out of range", sec)
			continue
		}
		s.shape = slices.Delete(s.shape, sec, sec+1)
		s.fresh = slices.Delete(s.fresh, sec, sec+1)
	}
}

// ReloadSections implements surface.Surface.
func (s *Surface) ReloadSections(sections []int, anim surface.Animation) {
	s.record(Call{Name: "reload_sections", Sections: slices.Clone(sections), Animation: anim})
	s.requireBatch("reload_sections")

	for _, sec := range sections {
		if sec < 0 || sec >= len(s.shape) {
			s.violate("reload_sections: section %d out of range", sec)
		}
	}
}

// MoveSection implements surface.Surface.
func (s *Surface) MoveSection(from, to int) {
	s.record(Call{
		Name: "move_section",
		From: surface.IndexPath{Section: from},
		To:   surface.IndexPath{Section: to},
	})
	s.requireBatch("move_section")

	if from < 0 || from >= len(s.shape) || to < 0 || to >= len(s.shape) {
		s.violate("move_section: %d -> %d out of range", from, to)
		return
	}
	rows, f := s.shape[from], s.fresh[from]
	s.shape = slices.Delete(s.shape, from, from+1)
	s.shape = slices.Insert(s.shape, to, rows)
	s.fresh = slices.Delete(s.fresh, from, from+1)
	s.fresh = slices.Insert(s.fresh, to, f)
}

func (s *Surface) isFresh(section int) bool {
	return section >= 0 && section < len(s.fresh) && s.fresh[section]
}

func (s *Surface) exists(p surface.IndexPath) bool {
	return p.Section >= 0 && p.Section < len(s.shape) && p.Row >= 0 && p.Row < s.shape[p.Section]
}

// groupRows splits paths by section and sorts each group.
func groupRows(paths []surface.IndexPath) map[int][]int {
	out := make(map[int][]int)
	for _, p := range paths {
		out[p.Section] = append(out[p.Section], p.Row)
	}
	for sec := range out {
		slices.Sort(out[sec])
	}
	return out
}

package simsurface

import (
	"github.com/colonyops/rowsync/internal/core/surface"
)

// SelectRow implements surface.Surface.
func (s *Surface) SelectRow(path surface.IndexPath, animated bool, pos surface.ScrollPosition) {
	s.record(Call{Name: "select_row", Paths: []surface.IndexPath{path}, Animated: animated, Position: pos})
	if !s.exists(path) {
		s.violate("select_row: %s does not exist", path)
		return
	}
	s.selected[path] = true
	if pos != surface.ScrollNone {
		s.scrollTo(path, pos)
	}
}

// DeselectRow implements surface.Surface.
func (s *Surface) DeselectRow(path surface.IndexPath, animated bool) {
	s.record(Call{Name: "deselect_row", Paths: []surface.IndexPath{path}, Animated: animated})
	delete(s.selected, path)
}

// ScrollToRow implements surface.Surface.
func (s *Surface) ScrollToRow(path surface.IndexPath, pos surface.ScrollPosition, animated bool) {
	s.record(Call{Name: "scroll_to_row", Paths: []surface.IndexPath{path}, Animated: animated, Position: pos})
	if !s.exists(path) {
		s.violate("scroll_to_row: %s does not exist", path)
		return
	}
	s.scrollTo(path, pos)
}

// VisibleCell implements surface.Surface.
func (s *Surface) VisibleCell(path surface.IndexPath) (surface.Cell, bool) {
	c, ok := s.cells[path]
	if !ok {
		return nil, false
	}
	return c, true
}

// Cell returns the simulator's cell for a visible row.
func (s *Surface) Cell(path surface.IndexPath) (*Cell, bool) {
	c, ok := s.cells[path]
	return c, ok
}

// IndexPathsForRows implements surface.Surface.
func (s *Surface) IndexPathsForRows(rect surface.Rect) []surface.IndexPath {
	var out []surface.IndexPath
	s.each(func(p surface.IndexPath, frame surface.Rect) {
		if frame.Intersects(rect) {
			out = append(out, p)
		}
	})
	return out
}

// Focus implements surface.Focusable.
func (s *Surface) Focus() bool {
	s.focused = true
	return true
}

// Blur implements surface.Focusable.
func (s *Surface) Blur() bool {
	s.focused = false
	return true
}

// viewport is the visible part of the content.
func (s *Surface) viewport() surface.Rect {
	return surface.Rect{X: 0, Y: s.offset, W: s.width, H: s.height}
}

// each walks every row with its frame.
func (s *Surface) each(fn func(surface.IndexPath, surface.Rect)) {
	y := 0
	for sec, n := range s.shape {
		y++ // header
		for r := range n {
			fn(surface.Path(sec, r), surface.Rect{X: 0, Y: y, W: s.width, H: 1})
			y++
		}
	}
}

func (s *Surface) contentHeight() int {
	h := 0
	for _, n := range s.shape {
		h += 1 + n
	}
	return h
}

func (s *Surface) rowY(path surface.IndexPath) int {
	y := 0
	for sec := 0; sec < path.Section; sec++ {
		y += 1 + s.shape[sec]
	}
	return y + 1 + path.Row
}

func (s *Surface) scrollTo(path surface.IndexPath, pos surface.ScrollPosition) {
	y := s.rowY(path)
	switch pos {
	case surface.ScrollTop:
		s.offset = y
	case surface.ScrollMiddle:
		s.offset = y - s.height/2
	case surface.ScrollBottom:
		s.offset = y - s.height + 1
	default:
		if y < s.offset {
			s.offset = y
		} else if y >= s.offset+s.height {
			s.offset = y - s.height + 1
		}
	}
	s.offset = min(s.offset, max(0, s.contentHeight()-s.height))
	s.offset = max(s.offset, 0)
	s.render()
}

// render configures a cell for every visible row, the way a list widget
// dequeues and configures cells after a layout pass.
func (s *Surface) render() {
	clear(s.cells)
	if s.src == nil {
		return
	}
	vp := s.viewport()
	s.each(func(p surface.IndexPath, frame surface.Rect) {
		if !frame.Intersects(vp) {
			return
		}
		c := &Cell{Path: p, frame: frame}
		s.src.ConfigureCell(c, p)
		s.src.WillDisplay(c, p)
		s.cells[p] = c
	})
}

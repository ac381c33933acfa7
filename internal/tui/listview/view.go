package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/rowsync/internal/core/styles"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// SelectRow implements surface.Surface. The list allows one selected row;
// selecting a row moves the cursor to it.
func (m *Model) SelectRow(path surface.IndexPath, _ bool, pos surface.ScrollPosition) {
	if !m.exists(path) {
		m.log.Error().Stringer("path", path).Msg("select_row: row does not exist")
		return
	}
	m.clearSelection()
	m.sections[path.Section].rows[path.Row].selected = true
	m.cursor = path
	if pos != surface.ScrollNone {
		m.scrollTo(path, pos)
	}
	m.render()
}

// DeselectRow implements surface.Surface.
func (m *Model) DeselectRow(path surface.IndexPath, _ bool) {
	if !m.exists(path) {
		return
	}
	m.sections[path.Section].rows[path.Row].selected = false
}

// ScrollToRow implements surface.Surface.
func (m *Model) ScrollToRow(path surface.IndexPath, pos surface.ScrollPosition, _ bool) {
	if !m.exists(path) {
		m.log.Error().Stringer("path", path).Msg("scroll_to_row: row does not exist")
		return
	}
	m.scrollTo(path, pos)
	m.render()
}

// Tap toggles the selection of path the way a user would and reports the
// change to the source.
func (m *Model) Tap(path surface.IndexPath) {
	if !m.exists(path) {
		return
	}
	m.cursor = path
	if m.Selected(path) {
		m.DeselectRow(path, false)
		m.render()
		m.src.DidDeselectRow(path)
		return
	}
	m.SelectRow(path, false, surface.ScrollNone)
	m.src.DidSelectRow(path)
}

// VisibleCell implements surface.Surface.
func (m *Model) VisibleCell(path surface.IndexPath) (surface.Cell, bool) {
	c, ok := m.cells[path]
	if !ok {
		return nil, false
	}
	return c, true
}

// Cell returns the list's cell for a visible row.
func (m *Model) Cell(path surface.IndexPath) (*Cell, bool) {
	c, ok := m.cells[path]
	return c, ok
}

// IndexPathsForRows implements surface.Surface.
func (m *Model) IndexPathsForRows(rect surface.Rect) []surface.IndexPath {
	var out []surface.IndexPath
	m.each(func(p surface.IndexPath, frame surface.Rect) {
		if frame.Intersects(rect) {
			out = append(out, p)
		}
	})
	return out
}

// View renders the visible part of the list.
func (m *Model) View() string {
	var lines []string
	for i, s := range m.sections {
		lines = append(lines, m.renderHeader(i, s))
		for j, r := range s.rows {
			lines = append(lines, m.renderRow(surface.Path(i, j), r))
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.SetYOffset(m.offset)
	return m.vp.View()
}

func (m *Model) renderHeader(i int, s section) string {
	title := fmt.Sprintf("Section %d", i)
	if m.titles != nil {
		if t := m.titles(i); t != "" {
			title = t
		}
	}
	title = fmt.Sprintf("%s %s (%d)", styles.IconSection, title, len(s.rows))
	return styles.SectionHeaderStyle.Render(ansi.Truncate(title, m.width, "…"))
}

func (m *Model) renderRow(p surface.IndexPath, r row) string {
	text := ""
	if c, ok := m.cells[p]; ok {
		text = c.text
	}
	text = ansi.Truncate(text, max(m.width-2, 0), "…")

	var style lipgloss.Style
	switch {
	case r.mark == markInserted:
		style = styles.RowInsertedStyle
	case r.mark == markReloaded:
		style = styles.RowReloadedStyle
	case r.mark == markMoved:
		style = styles.RowMovedStyle
	case r.selected:
		style = styles.RowSelectedStyle
	case p == m.cursor && m.focused:
		style = styles.RowCursorStyle
	default:
		style = styles.RowStyle
	}
	if !m.focused && r.mark == markNone && !r.selected {
		style = style.Foreground(styles.ColorMuted)
	}

	if p == m.cursor && m.focused {
		return styles.IconCursor + style.PaddingLeft(1).Render(text)
	}
	return style.Render(text)
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(m.height, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(m.height, 1))
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.rowCount())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.rowCount())
	case key.Matches(msg, m.keys.Tap):
		if p, ok := m.Cursor(); ok {
			m.Tap(p)
		}
	}
}

func (m *Model) moveCursor(delta int) {
	paths := m.paths()
	if len(paths) == 0 {
		return
	}
	i := 0
	for k, p := range paths {
		if p == m.cursor {
			i = k
			break
		}
	}
	i = min(max(i+delta, 0), len(paths)-1)
	m.cursor = paths[i]
	m.scrollTo(m.cursor, surface.ScrollNone)
	m.render()
}

func (m *Model) clearSelection() {
	for i := range m.sections {
		for j := range m.sections[i].rows {
			m.sections[i].rows[j].selected = false
		}
	}
}

// clampCursor keeps the cursor on an existing row, preferring the closest
// row before it.
func (m *Model) clampCursor() {
	if m.exists(m.cursor) {
		return
	}
	paths := m.paths()
	if len(paths) == 0 {
		m.cursor = surface.IndexPath{}
		return
	}
	best := paths[0]
	for _, p := range paths {
		if p.Section < m.cursor.Section || (p.Section == m.cursor.Section && p.Row <= m.cursor.Row) {
			best = p
		}
	}
	m.cursor = best
}

func (m *Model) exists(p surface.IndexPath) bool {
	return p.Section >= 0 && p.Section < len(m.sections) &&
		p.Row >= 0 && p.Row < len(m.sections[p.Section].rows)
}

func (m *Model) paths() []surface.IndexPath {
	var out []surface.IndexPath
	for i, s := range m.sections {
		for j := range s.rows {
			out = append(out, surface.Path(i, j))
		}
	}
	return out
}

func (m *Model) rowCount() int {
	n := 0
	for _, s := range m.sections {
		n += len(s.rows)
	}
	return n
}

// each walks every row with its frame. Every section starts with a one-line
// header and every row is one line tall.
func (m *Model) each(fn func(surface.IndexPath, surface.Rect)) {
	y := 0
	for i, s := range m.sections {
		y++
		for j := range s.rows {
			fn(surface.Path(i, j), surface.Rect{X: 0, Y: y, W: max(m.width, 1), H: 1})
			y++
		}
	}
}

func (m *Model) contentHeight() int {
	return len(m.sections) + m.rowCount()
}

func (m *Model) rowY(p surface.IndexPath) int {
	y := 0
	for i := 0; i < p.Section; i++ {
		y += 1 + len(m.sections[i].rows)
	}
	return y + 1 + p.Row
}

func (m *Model) scrollTo(p surface.IndexPath, pos surface.ScrollPosition) {
	y := m.rowY(p)
	switch pos {
	case surface.ScrollTop:
		m.offset = y
	case surface.ScrollMiddle:
		m.offset = y - m.height/2
	case surface.ScrollBottom:
		m.offset = y - m.height + 1
	default:
		if y < m.offset {
			m.offset = y
		} else if y >= m.offset+m.height {
			m.offset = y - m.height + 1
		}
	}
	m.clampOffset()
}

func (m *Model) clampOffset() {
	m.offset = min(m.offset, m.contentHeight()-m.height)
	m.offset = max(m.offset, 0)
}

// render configures a fresh cell for every visible row. It waits for the
// end of an update, when the list and its source agree again.
func (m *Model) render() {
	if m.src == nil || m.depth > 0 {
		return
	}
	clear(m.cells)
	visible := surface.Rect{X: 0, Y: m.offset, W: max(m.width, 1), H: m.height}
	m.each(func(p surface.IndexPath, frame surface.Rect) {
		if !frame.Intersects(visible) {
			return
		}
		c := &Cell{path: p, frame: frame}
		m.src.ConfigureCell(c, p)
		m.src.WillDisplay(c, p)
		m.cells[p] = c
	})
}

// Package listview is a terminal list widget that implements surface.Surface
// on top of Bubble Tea. It keeps its own copy of the list's shape, applies
// primitives in the order they arrive, and reports animated updates as
// finished through tea messages.
package listview

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// AnimationDoneMsg reports that update ID has finished on screen.
type AnimationDoneMsg struct {
	ID uint64
}

type mark int

const (
	markNone mark = iota
	markInserted
	markReloaded
	markMoved
)

type row struct {
	mark     mark
	flight   uint64
	selected bool
}

type section struct {
	rows []row

	// fresh sections were inserted or reloaded by the update in progress;
	// their rows are read from the source when the update ends.
	fresh  bool
	mark   mark
	flight uint64
}

// flight is an update whose completion has not been delivered yet.
type flight struct {
	animated    bool
	finished    bool
	completions []func(finished bool)
}

// Option configures a Model.
type Option func(*Model)

// WithDuration sets how long an animated update stays highlighted before
// its completion fires.
func WithDuration(d time.Duration) Option {
	return func(m *Model) { m.duration = d }
}

// WithTitles sets the function used for section headers.
func WithTitles(fn func(section int) string) Option {
	return func(m *Model) { m.titles = fn }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithKeyMap replaces the navigation keys.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// Model is the list widget. It must be used through a pointer.
type Model struct {
	src      surface.Source
	titles   func(section int) string
	log      zerolog.Logger
	duration time.Duration
	keys     KeyMap

	sections []section
	depth    int
	current  uint64 // flight id of the update being built
	lastID   uint64
	flights  map[uint64]*flight
	nested   []func(finished bool)
	cmds     []tea.Cmd

	vp      viewport.Model
	width   int
	height  int
	offset  int
	cursor  surface.IndexPath
	cells   map[surface.IndexPath]*Cell
	focused bool
}

var (
	_ surface.Surface   = (*Model)(nil)
	_ surface.Focusable = (*Model)(nil)
)

// New returns a list of the given size. Bind a source before use.
func New(width, height int, opts ...Option) *Model {
	m := &Model{
		log:      logging.Component("listview"),
		duration: 250 * time.Millisecond,
		keys:     DefaultKeyMap(),
		flights:  make(map[uint64]*flight),
		vp:       viewport.New(width, height),
		width:    width,
		height:   height,
		cells:    make(map[surface.IndexPath]*Cell),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bind implements surface.Surface.
func (m *Model) Bind(src surface.Source) {
	m.src = src
}

// Shape returns the row count of every section as the list sees it.
func (m *Model) Shape() []int {
	out := make([]int, len(m.sections))
	for i, s := range m.sections {
		out[i] = len(s.rows)
	}
	return out
}

// Cursor returns the row under the cursor. ok is false for an empty list.
func (m *Model) Cursor() (surface.IndexPath, bool) {
	if !m.exists(m.cursor) {
		return surface.IndexPath{}, false
	}
	return m.cursor, true
}

// SetCursor moves the cursor to path if it exists and scrolls it into view.
func (m *Model) SetCursor(path surface.IndexPath) bool {
	if !m.exists(path) {
		return false
	}
	m.cursor = path
	m.scrollTo(path, surface.ScrollNone)
	m.render()
	return true
}

// Selected reports whether path is selected.
func (m *Model) Selected(path surface.IndexPath) bool {
	if !m.exists(path) {
		return false
	}
	return m.sections[path.Section].rows[path.Row].selected
}

// Offset returns the scroll offset in lines.
func (m *Model) Offset() int {
	return m.offset
}

// Focused reports whether the list has keyboard focus.
func (m *Model) Focused() bool {
	return m.focused
}

// Animating reports whether any update is still waiting for its completion.
func (m *Model) Animating() bool {
	return len(m.flights) > 0
}

// SetSize resizes the visible area.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.vp.Width, m.vp.Height = width, height
	m.clampOffset()
	m.render()
}

// Focus implements surface.Focusable.
func (m *Model) Focus() bool {
	m.focused = true
	return true
}

// Blur implements surface.Focusable.
func (m *Model) Blur() bool {
	m.focused = false
	return true
}

// Cmd returns the commands queued by updates since the last call. Owners
// that drive the list outside of Update must return it to the runtime.
func (m *Model) Cmd() tea.Cmd {
	if len(m.cmds) == 0 {
		return nil
	}
	cmds := m.cmds
	m.cmds = nil
	return tea.Batch(cmds...)
}

// Update handles completion ticks, resizes, and navigation keys.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case AnimationDoneMsg:
		m.land(msg.ID)
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.focused {
			m.handleKey(msg)
		}
	}
	return m.Cmd()
}

// land delivers the completion of update id.
func (m *Model) land(id uint64) {
	f, ok := m.flights[id]
	if !ok {
		return
	}
	delete(m.flights, id)
	m.clearMarks(id)
	m.render()

	m.log.Debug().Uint64("update", id).Bool("finished", f.finished).Msg("update landed")
	for _, fn := range f.completions {
		fn(f.finished)
	}
}

func (m *Model) clearMarks(id uint64) {
	for i := range m.sections {
		s := &m.sections[i]
		if s.flight == id {
			s.mark, s.flight = markNone, 0
		}
		for j := range s.rows {
			if s.rows[j].flight == id {
				s.rows[j].mark, s.rows[j].flight = markNone, 0
			}
		}
	}
}

func done(id uint64) tea.Cmd {
	return func() tea.Msg { return AnimationDoneMsg{ID: id} }
}

func (m *Model) queue(cmd tea.Cmd) {
	m.cmds = append(m.cmds, cmd)
}

// Package tui implements the interactive rowsync demo: a sectioned list kept
// in sync by a coordinator and edited from the keyboard.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/rowsync/internal/core/config"
	"github.com/colonyops/rowsync/internal/core/coordinator"
	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/tui/listview"
)

// Options configures the demo.
type Options struct {
	Config *config.Config
	Bus    *eventbus.EventBus
	Logger zerolog.Logger

	// Seed drives the shuffle action.
	Seed uint64
}

type globalKeys struct {
	Quit  key.Binding
	Help  key.Binding
	Focus key.Binding
}

func defaultGlobalKeys() globalKeys {
	return globalKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
	}
}

// helpKeys combines every binding for the help footer.
type helpKeys struct {
	actions []key.Binding
	list    listview.KeyMap
	global  globalKeys
}

func (k helpKeys) ShortHelp() []key.Binding {
	short := append([]key.Binding{}, k.list.ShortHelp()...)
	if len(k.actions) > 3 {
		short = append(short, k.actions[:3]...)
	} else {
		short = append(short, k.actions...)
	}
	return append(short, k.global.Help, k.global.Quit)
}

func (k helpKeys) FullHelp() [][]key.Binding {
	return append(k.list.FullHelp(), k.actions, []key.Binding{k.global.Focus, k.global.Help, k.global.Quit})
}

// Model is the demo's Bubble Tea model.
type Model struct {
	cfg      *config.Config
	board    *board
	registry *coordinator.Registry[board, string]
	handler  *KeybindingHandler
	keys     globalKeys
	help     help.Model
	log      zerolog.Logger

	width    int
	height   int
	quitting bool
}

// New builds the demo with its initial content loaded.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	bus := opts.Bus
	if bus == nil {
		bus = eventbus.New()
	}

	b := newBoard(opts.Seed, cfg.TUI.Sections, cfg.TUI.RowsPerSection)
	b.list = listview.New(80, 20,
		listview.WithDuration(cfg.Animation.Duration),
		listview.WithLogger(opts.Logger),
		listview.WithTitles(b.store.Title),
	)

	logger := opts.Logger
	m := Model{
		cfg:   cfg,
		board: b,
		registry: coordinator.NewRegistry[board, string](coordinator.Options{
			Strict:    cfg.Strict,
			Animated:  cfg.Animation.Enabled,
			Animation: cfg.AnimationStyle(),
			Bus:       bus,
			Logger:    &logger,
		}),
		handler: NewKeybindingHandler(cfg.TUI.Keybindings),
		keys:    defaultGlobalKeys(),
		help:    help.New(),
		log:     opts.Logger,
	}

	c := m.coordinator()
	b.subscribe(bus, c.Owner())
	if err := c.ReloadData(); err != nil {
		b.setError(err)
	}
	c.BecomeFirstResponder()
	return m
}

// coordinator returns the board's coordinator, creating it on first use.
func (m Model) coordinator() *coordinator.Coordinator[string] {
	return m.registry.For(m.board, m.board.list, m.board.store, m.board)
}

// Close releases the board's coordinator.
func (m Model) Close() {
	m.registry.Release(m.board)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("rowsync")
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case listview.AnimationDoneMsg:
		return m, m.board.list.Update(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		c := m.coordinator()
		if m.board.list.Focused() {
			c.ResignFirstResponder()
		} else {
			c.BecomeFirstResponder()
		}
		return m, nil
	}

	if a, ok := m.handler.Resolve(msg.String()); ok {
		if err := m.perform(a); err != nil {
			m.board.setError(err)
			m.log.Debug().Err(err).Str("action", a.Name).Msg("action failed")
		}
		return m, m.board.list.Cmd()
	}

	return m, m.board.list.Update(msg)
}

// resize gives the list whatever the chrome leaves over.
func (m *Model) resize() {
	if m.height == 0 {
		return
	}
	chrome := 2 + lipgloss.Height(m.renderHelp())
	m.board.list.SetSize(m.width, max(m.height-chrome, 1))
}

func (m Model) helpKeys() helpKeys {
	return helpKeys{
		actions: m.handler.HelpBindings(),
		list:    listview.DefaultKeyMap(),
		global:  m.keys,
	}
}

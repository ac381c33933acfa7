package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"

	"github.com/colonyops/rowsync/internal/core/config"
)

// Action is a resolved keybinding ready for execution.
type Action struct {
	Name string
	Key  string
	Help string
}

// KeybindingHandler resolves key presses to built-in demo actions.
type KeybindingHandler struct {
	keybindings map[string]config.Keybinding
}

// NewKeybindingHandler creates a handler for the merged keybindings.
func NewKeybindingHandler(keybindings map[string]config.Keybinding) *KeybindingHandler {
	return &KeybindingHandler{keybindings: keybindings}
}

// Resolve returns the action bound to key.
func (h *KeybindingHandler) Resolve(key string) (Action, bool) {
	kb, ok := h.keybindings[key]
	if !ok || kb.Action == "" {
		return Action{}, false
	}
	help := kb.Help
	if help == "" {
		help = kb.Action
	}
	return Action{Name: kb.Action, Key: key, Help: help}, true
}

// HelpBindings returns one help entry per bound key, ordered by action and
// then by key.
func (h *KeybindingHandler) HelpBindings() []key.Binding {
	order := config.Actions()
	keys := make([]string, 0, len(h.keybindings))
	for k := range h.keybindings {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia := slices.Index(order, h.keybindings[a].Action)
		ib := slices.Index(order, h.keybindings[b].Action)
		if ia != ib {
			return ia - ib
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	out := make([]key.Binding, 0, len(keys))
	for _, k := range keys {
		a, ok := h.Resolve(k)
		if !ok {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(k), key.WithHelp(k, a.Help)))
	}
	return out
}

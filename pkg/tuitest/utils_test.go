package tuitest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1mbold\x1b[0m   \nplain  \n\n"
	assert.Equal(t, "bold\nplain", StripANSI(in))
}

func TestKeyMessages(t *testing.T) {
	assert.Equal(t, "j", KeyPress('j').(tea.KeyMsg).String())
	assert.Equal(t, "down", KeyDown().(tea.KeyMsg).String())
	assert.Equal(t, "enter", KeyEnter().(tea.KeyMsg).String())
	assert.Nil(t, KeyPressString(""))
}

type tick int

func TestDrain_FollowsCommands(t *testing.T) {
	var seen []tick
	update := func(msg tea.Msg) tea.Cmd {
		n := msg.(tick)
		seen = append(seen, n)
		if n < 3 {
			return func() tea.Msg { return n + 1 }
		}
		return nil
	}

	start := tea.Batch(
		func() tea.Msg { return tick(1) },
		func() tea.Msg { return tick(10) },
	)
	Drain(start, update, 10)

	assert.ElementsMatch(t, []tick{1, 2, 3, 10}, seen)
}

func TestDrain_Limit(t *testing.T) {
	count := 0
	var loop tea.Cmd
	loop = func() tea.Msg { return tick(0) }
	Drain(loop, func(tea.Msg) tea.Cmd { count++; return loop }, 5)
	assert.Equal(t, 5, count)
}

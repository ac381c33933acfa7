package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/rowsync/internal/core/config"
	"github.com/colonyops/rowsync/internal/core/coordinator"
	"github.com/colonyops/rowsync/internal/core/sections"
	"github.com/colonyops/rowsync/internal/core/surface"
)

var (
	errNoRow     = errors.New("no row under the cursor")
	errNoSection = errors.New("no section; add one first")
)

// perform runs action a against the board's coordinator. The store is edited
// before the coordinator so that cells render the new content; if the
// coordinator rejects the call the whole list is reloaded from the store.
func (m Model) perform(a Action) (err error) {
	c := m.coordinator()
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = perr
		}
		if err != nil && !c.InBatch() {
			_ = c.ReloadData()
		}
	}()

	b := m.board
	cursor, hasCursor := b.list.Cursor()

	switch a.Name {
	case config.ActionInsert:
		if b.store.NumberOfSections() == 0 {
			return errNoSection
		}
		at := surface.Path(0, 0)
		if hasCursor {
			at = surface.Path(cursor.Section, cursor.Row+1)
		}
		v := b.newItem()
		if err := b.store.InsertRows(at.Section, []int{at.Row}, []string{v}); err != nil {
			return err
		}
		if err := c.InsertRows(at.Section, []coordinator.Post{coordinator.Post(at.Row)}, v); err != nil {
			return err
		}
		b.list.SetCursor(at)

	case config.ActionDelete:
		if !hasCursor {
			return errNoRow
		}
		if err := b.store.DeleteRows(cursor.Section, []int{cursor.Row}); err != nil {
			return err
		}
		return c.DeleteRows(cursor.Section, coordinator.Pre(cursor.Row))

	case config.ActionReload:
		if !hasCursor {
			return errNoRow
		}
		v := toggleCase(b.store.Row(cursor))
		if err := b.store.SetRow(cursor, v); err != nil {
			return err
		}
		return c.ReloadRows(cursor.Section, []coordinator.Pre{coordinator.Pre(cursor.Row)}, v)

	case config.ActionMoveUp, config.ActionMoveDown:
		if !hasCursor {
			return errNoRow
		}
		to := cursor
		if a.Name == config.ActionMoveUp {
			to.Row--
		} else {
			to.Row++
		}
		if to.Row < 0 || to.Row >= b.store.NumberOfRows(cursor.Section) {
			return nil
		}
		if err := b.store.MoveRow(cursor.Section, cursor.Row, to.Row); err != nil {
			return err
		}
		if err := c.MoveRow(cursor, to); err != nil {
			return err
		}
		b.list.SetCursor(to)

	case config.ActionAddSection:
		at := b.store.NumberOfSections()
		if hasCursor {
			at = cursor.Section + 1
		}
		s := b.newSection(m.cfg.TUI.RowsPerSection)
		if err := b.store.InsertSections([]int{at}, []sections.Section[string]{s}); err != nil {
			return err
		}
		return c.InsertSections([]coordinator.Post{coordinator.Post(at)}, s.Rows)

	case config.ActionRemoveSection:
		if b.store.NumberOfSections() == 0 {
			return errNoSection
		}
		sec := 0
		if hasCursor {
			sec = cursor.Section
		}
		if err := b.store.DeleteSections([]int{sec}); err != nil {
			return err
		}
		return c.DeleteSections(coordinator.Pre(sec))

	case config.ActionShuffle:
		if b.store.NumberOfSections() == 0 {
			return errNoSection
		}
		sec := 0
		if hasCursor {
			sec = cursor.Section
		}
		return m.shuffle(c, sec)

	case config.ActionSelect:
		if !hasCursor {
			return errNoRow
		}
		return c.SelectRow(cursor, m.cfg.Animation.Enabled, m.cfg.ScrollPosition())

	default:
		return fmt.Errorf("unknown action %q", a.Name)
	}
	return nil
}

// shuffle applies a random row diff to section sec as one batch.
func (m Model) shuffle(c *coordinator.Coordinator[string], sec int) error {
	b := m.board
	n := b.store.NumberOfRows(sec)

	var del []int
	for i := range n {
		if b.rng.IntN(3) == 0 {
			del = append(del, i)
		}
	}
	remaining := n - len(del)

	k := b.rng.IntN(3)
	if k == 0 && len(del) == 0 {
		k = 1
	}
	ins := b.rng.Perm(remaining + k)[:k]
	slices.Sort(ins)

	var mod []int
	for p := range remaining + k {
		if !slices.Contains(ins, p) && b.rng.IntN(4) == 0 {
			mod = append(mod, p)
		}
	}

	d := coordinator.RowDiff[string]{Values: make(map[coordinator.Post]string)}
	values := make([]string, len(ins))
	for i, p := range ins {
		values[i] = b.newItem()
		d.Insertions = append(d.Insertions, coordinator.Post(p))
		d.Values[coordinator.Post(p)] = values[i]
	}
	for _, p := range del {
		d.Deletions = append(d.Deletions, coordinator.Pre(p))
	}

	return c.Update(func() error {
		if err := b.store.DeleteRows(sec, del); err != nil {
			return err
		}
		if err := b.store.InsertRows(sec, ins, values); err != nil {
			return err
		}
		for _, p := range mod {
			path := surface.Path(sec, p)
			v := toggleCase(b.store.Row(path))
			if err := b.store.SetRow(path, v); err != nil {
				return err
			}
			d.Modifications = append(d.Modifications, coordinator.Post(p))
			d.Values[coordinator.Post(p)] = v
		}
		return c.ApplyRowDiff(sec, d)
	}, func(finished bool) {
		word := "landed"
		if !finished {
			word = "interrupted"
		}
		b.setStatus("shuffle of %s %s: -%d +%d ~%d", b.store.Title(sec), word, len(del), len(ins), len(mod))
	})
}

func toggleCase(s string) string {
	if up := strings.ToUpper(s); up != s {
		return up
	}
	return strings.ToLower(s)
}

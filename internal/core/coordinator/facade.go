package coordinator

import (
	"slices"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// InsertRows inserts rows into section. rows are Post positions; values pairs
// with rows and may be omitted.
func (c *Coordinator[T]) InsertRows(section int, rows []Post, values ...T) error {
	return c.mutate("insert_rows", func(anim surface.Animation) error {
		if err := c.mirror.InsertRows(section, rows, orNil(values)); err != nil {
			return err
		}
		c.pushIf(rowOp(OpInsertRows, section, rows, anim))
		return nil
	})
}

// DeleteRows removes rows (Pre positions) from section.
func (c *Coordinator[T]) DeleteRows(section int, rows ...Pre) error {
	return c.mutate("delete_rows", func(anim surface.Animation) error {
		if err := c.mirror.DeleteRows(section, rows); err != nil {
			return err
		}
		c.pushIf(rowOp(OpDeleteRows, section, rows, anim))
		return nil
	})
}

// ReloadRows redraws rows (Pre positions) of section, optionally replacing
// their payloads.
func (c *Coordinator[T]) ReloadRows(section int, rows []Pre, values ...T) error {
	return c.mutate("reload_rows", func(anim surface.Animation) error {
		if err := c.mirror.ReloadRows(section, rows, orNil(values)); err != nil {
			return err
		}
		c.pushIf(rowOp(OpReloadRows, section, rows, anim))
		return nil
	})
}

// MoveRow moves one row within its section. Moving between sections fails
// with ErrCrossSectionMove.
func (c *Coordinator[T]) MoveRow(from, to surface.IndexPath) error {
	return c.mutate("move_row", func(surface.Animation) error {
		if err := c.mirror.MoveRow(from, to); err != nil {
			return err
		}
		c.push(Op{Kind: OpMoveRow, From: from, To: to})
		return nil
	})
}

// InsertSections inserts sections at Post positions. rows pairs with
// sections and may be omitted to insert empty sections.
func (c *Coordinator[T]) InsertSections(sections []Post, rows ...[]T) error {
	return c.mutate("insert_sections", func(anim surface.Animation) error {
		if err := c.mirror.InsertSections(sections, orNil(rows)); err != nil {
			return err
		}
		c.pushIf(sectionOp(OpInsertSections, sections, anim))
		return nil
	})
}

// DeleteSections removes sections at Pre positions.
func (c *Coordinator[T]) DeleteSections(sections ...Pre) error {
	return c.mutate("delete_sections", func(anim surface.Animation) error {
		if err := c.mirror.DeleteSections(sections); err != nil {
			return err
		}
		c.pushIf(sectionOp(OpDeleteSections, sections, anim))
		return nil
	})
}

// ReloadSections redraws sections at Pre positions, optionally replacing
// their payloads. Row counts cannot change.
func (c *Coordinator[T]) ReloadSections(sections []Pre, rows ...[]T) error {
	return c.mutate("reload_sections", func(anim surface.Animation) error {
		if err := c.mirror.ReloadSections(sections, orNil(rows)); err != nil {
			return err
		}
		c.pushIf(sectionOp(OpReloadSections, sections, anim))
		return nil
	})
}

// MoveSection moves one section.
func (c *Coordinator[T]) MoveSection(from Pre, to Post) error {
	return c.mutate("move_section", func(surface.Animation) error {
		if err := c.mirror.MoveSection(from, to); err != nil {
			return err
		}
		c.push(Op{
			Kind: OpMoveSection,
			From: surface.IndexPath{Section: int(from)},
			To:   surface.IndexPath{Section: int(to)},
		})
		return nil
	})
}

// SelectRow selects path on the surface. Inside a batch path is checked
// against the batch's current shape right away, and the selection is issued
// after the batch has been submitted.
func (c *Coordinator[T]) SelectRow(path surface.IndexPath, animated bool, pos surface.ScrollPosition) error {
	return c.afterBatch("select_row", c.pathCheck(path), func() {
		c.surface.SelectRow(path, animated, pos)
	})
}

// DeselectRow clears the selection of path.
func (c *Coordinator[T]) DeselectRow(path surface.IndexPath, animated bool) error {
	return c.afterBatch("deselect_row", c.pathCheck(path), func() {
		c.surface.DeselectRow(path, animated)
	})
}

// ScrollToRow scrolls the surface so path lands at pos.
func (c *Coordinator[T]) ScrollToRow(path surface.IndexPath, pos surface.ScrollPosition, animated bool) error {
	return c.afterBatch("scroll_to_row", c.pathCheck(path), func() {
		c.surface.ScrollToRow(path, pos, animated)
	})
}

// ReconfigureRow runs the output's ConfigureCell again for path without a
// reload. Rows that are not visible are left alone.
func (c *Coordinator[T]) ReconfigureRow(path surface.IndexPath) error {
	return c.afterBatch("reconfigure_row", c.pathCheck(path), func() {
		if cell, ok := c.surface.VisibleCell(path); ok {
			c.output.ConfigureCell(cell, path)
		}
	})
}

// IndexPathFor returns the row under the center of view, which must be a
// child of the surface's visible content.
func (c *Coordinator[T]) IndexPathFor(view surface.Framed) (surface.IndexPath, bool) {
	center := view.Frame().Center()
	paths := c.surface.IndexPathsForRows(surface.Rect{X: center.X, Y: center.Y, W: 1, H: 1})
	if len(paths) == 0 {
		return surface.IndexPath{}, false
	}
	return paths[0], true
}

// BecomeFirstResponder gives the surface keyboard focus. It returns false when
// the surface cannot take focus.
func (c *Coordinator[T]) BecomeFirstResponder() bool {
	if c.focus == nil {
		return false
	}
	return c.focus.Focus()
}

// ResignFirstResponder takes keyboard focus away from the surface.
func (c *Coordinator[T]) ResignFirstResponder() bool {
	if c.focus == nil {
		return false
	}
	return c.focus.Blur()
}

func (c *Coordinator[T]) pathCheck(path surface.IndexPath) func() error {
	return func() error { return c.checkPath(path) }
}

func (c *Coordinator[T]) checkPath(path surface.IndexPath) error {
	if err := checkIndex("section", path.Section, c.mirror.NumberOfSections()); err != nil {
		return err
	}
	return checkIndex("row", path.Row, c.mirror.NumberOfRows(path.Section))
}

// rowOp builds a row primitive with sorted paths. ok is false for an empty
// index list, which issues nothing.
func rowOp[I ~int](kind OpKind, section int, rows []I, anim surface.Animation) (op Op, ok bool) {
	if len(rows) == 0 {
		return Op{}, false
	}
	idx := toInts(rows)
	slices.Sort(idx)
	return Op{Kind: kind, Paths: rowPaths(section, idx), Animation: anim}, true
}

func sectionOp[I ~int](kind OpKind, sections []I, anim surface.Animation) (op Op, ok bool) {
	if len(sections) == 0 {
		return Op{}, false
	}
	idx := toInts(sections)
	slices.Sort(idx)
	return Op{Kind: kind, Sections: idx, Animation: anim}, true
}

func (c *Coordinator[T]) pushIf(op Op, ok bool) {
	if ok {
		c.push(op)
	}
}

func orNil[V any](values []V) []V {
	if len(values) == 0 {
		return nil
	}
	return values
}

// The methods below make a Coordinator the surface's Source. Counts come from
// the Mirror; everything else is forwarded unchanged.

// NumberOfSections implements surface.Source.
func (c *Coordinator[T]) NumberOfSections() int {
	return c.mirror.NumberOfSections()
}

// NumberOfRows implements surface.Source.
func (c *Coordinator[T]) NumberOfRows(section int) int {
	return c.mirror.NumberOfRows(section)
}

// ConfigureCell implements surface.Source.
func (c *Coordinator[T]) ConfigureCell(cell surface.Cell, path surface.IndexPath) {
	c.output.ConfigureCell(cell, path)
}

// WillDisplay implements surface.Source.
func (c *Coordinator[T]) WillDisplay(cell surface.Cell, path surface.IndexPath) {
	if c.delegate != nil {
		c.delegate.WillDisplay(cell, path)
	}
}

// DidSelectRow implements surface.Source.
func (c *Coordinator[T]) DidSelectRow(path surface.IndexPath) {
	if c.delegate != nil {
		c.delegate.DidSelectRow(path)
	}
}

// DidDeselectRow implements surface.Source.
func (c *Coordinator[T]) DidDeselectRow(path surface.IndexPath) {
	if c.delegate != nil {
		c.delegate.DidDeselectRow(path)
	}
}

package coordinator

import (
	"github.com/colonyops/rowsync/internal/core/surface"
)

// RowDiff describes a structural change to the rows of one section.
//
// Deletions are measured against the section before the change. Insertions
// and Modifications are measured against the section after it.
type RowDiff[T any] struct {
	Deletions     []Pre
	Insertions    []Post
	Modifications []Post

	// Values supplies payloads for inserted and modified rows. Inserted rows
	// without an entry get the zero value; modified rows without an entry
	// keep their payload.
	Values map[Post]T
}

// Empty reports whether the diff changes nothing.
func (d RowDiff[T]) Empty() bool {
	return len(d.Deletions) == 0 && len(d.Insertions) == 0 && len(d.Modifications) == 0
}

// SectionDiff describes a structural change to the sections themselves, using
// the same index spaces as RowDiff.
type SectionDiff[T any] struct {
	Deletions     []Pre
	Insertions    []Post
	Modifications []Post

	// Rows supplies the rows of inserted sections and replacement payloads for
	// modified sections. A modified section must keep its row count.
	Rows map[Post][]T
}

// Empty reports whether the diff changes nothing.
func (d SectionDiff[T]) Empty() bool {
	return len(d.Deletions) == 0 && len(d.Insertions) == 0 && len(d.Modifications) == 0
}

// ApplyRowDiff applies d to section: deletions first, then insertions, then
// modifications. Each step is issued to the surface as one primitive. The
// whole diff is validated before anything changes.
func (c *Coordinator[T]) ApplyRowDiff(section int, d RowDiff[T]) error {
	return c.mutate("row_diff", func(anim surface.Animation) error {
		if d.Empty() {
			return ErrEmptyDiff
		}
		if err := checkIndex("section", section, c.mirror.NumberOfSections()); err != nil {
			return err
		}

		n := c.mirror.NumberOfRows(section)
		del, err := indexSet("deleted row", d.Deletions, n)
		if err != nil {
			return err
		}
		remaining := n - len(del)
		ins, err := indexSet("inserted row", d.Insertions, remaining+len(d.Insertions))
		if err != nil {
			return err
		}
		mod, err := indexSet("modified row", d.Modifications, remaining+len(ins))
		if err != nil {
			return err
		}

		if len(del) > 0 {
			if err := c.mirror.DeleteRows(section, asPre(del)); err != nil {
				return err
			}
			c.push(Op{Kind: OpDeleteRows, Paths: rowPaths(section, del), Animation: anim})
		}

		if len(ins) > 0 {
			values := make([]T, len(ins))
			for i, p := range ins {
				values[i] = d.Values[Post(p)]
			}
			if err := c.mirror.InsertRows(section, asPost(ins), values); err != nil {
				return err
			}
			c.push(Op{Kind: OpInsertRows, Paths: rowPaths(section, ins), Animation: anim})
		}

		if len(mod) > 0 {
			// Deletions and insertions have been applied, so a post-change row
			// is exactly the reload's pre-operation row.
			for _, p := range mod {
				if v, ok := d.Values[Post(p)]; ok {
					if err := c.mirror.ReloadRows(section, []Pre{Pre(p)}, []T{v}); err != nil {
						return err
					}
				}
			}
			c.push(Op{Kind: OpReloadRows, Paths: rowPaths(section, mod), Animation: anim})
		}
		return nil
	})
}

// ApplySectionDiff applies d to the section list in the same order as
// ApplyRowDiff. Nothing changes unless every step succeeds.
func (c *Coordinator[T]) ApplySectionDiff(d SectionDiff[T]) error {
	return c.mutate("section_diff", func(anim surface.Animation) error {
		if d.Empty() {
			return ErrEmptyDiff
		}

		n := c.mirror.NumberOfSections()
		del, err := indexSet("deleted section", d.Deletions, n)
		if err != nil {
			return err
		}
		remaining := n - len(del)
		ins, err := indexSet("inserted section", d.Insertions, remaining+len(d.Insertions))
		if err != nil {
			return err
		}
		mod, err := indexSet("modified section", d.Modifications, remaining+len(ins))
		if err != nil {
			return err
		}

		work := c.mirror.Clone()
		var ops []Op

		if len(del) > 0 {
			if err := work.DeleteSections(asPre(del)); err != nil {
				return err
			}
			ops = append(ops, Op{Kind: OpDeleteSections, Sections: del, Animation: anim})
		}

		if len(ins) > 0 {
			rows := make([][]T, len(ins))
			for i, p := range ins {
				rows[i] = d.Rows[Post(p)]
			}
			if err := work.InsertSections(asPost(ins), rows); err != nil {
				return err
			}
			ops = append(ops, Op{Kind: OpInsertSections, Sections: ins, Animation: anim})
		}

		if len(mod) > 0 {
			for _, p := range mod {
				if rows, ok := d.Rows[Post(p)]; ok {
					if err := work.ReloadSections([]Pre{Pre(p)}, [][]T{rows}); err != nil {
						return err
					}
				}
			}
			ops = append(ops, Op{Kind: OpReloadSections, Sections: mod, Animation: anim})
		}

		c.mirror = work
		for _, op := range ops {
			c.push(op)
		}
		return nil
	})
}

func asPre(idx []int) []Pre {
	out := make([]Pre, len(idx))
	for i, v := range idx {
		out[i] = Pre(v)
	}
	return out
}

func asPost(idx []int) []Post {
	out := make([]Post, len(idx))
	for i, v := range idx {
		out[i] = Post(v)
	}
	return out
}

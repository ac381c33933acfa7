package coordinator

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// step applies one randomly generated call to c.
type step func(r *rand.Rand, c *Coordinator[string]) error

func pick(r *rand.Rand, n, k int) []int {
	return r.Perm(n)[:k]
}

func randomSection(r *rand.Rand, c *Coordinator[string]) (int, bool) {
	n := c.mirror.NumberOfSections()
	if n == 0 {
		return 0, false
	}
	return r.IntN(n), true
}

var steps = []step{
	func(r *rand.Rand, c *Coordinator[string]) error { // insert rows
		s, ok := randomSection(r, c)
		if !ok {
			return nil
		}
		k := r.IntN(3) + 1
		return c.InsertRows(s, asPost(pick(r, c.mirror.NumberOfRows(s)+k, k)))
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // delete rows
		s, ok := randomSection(r, c)
		if !ok || c.mirror.NumberOfRows(s) == 0 {
			return nil
		}
		n := c.mirror.NumberOfRows(s)
		return c.DeleteRows(s, asPre(pick(r, n, r.IntN(min(n, 3))+1))...)
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // reload rows
		s, ok := randomSection(r, c)
		if !ok || c.mirror.NumberOfRows(s) == 0 {
			return nil
		}
		n := c.mirror.NumberOfRows(s)
		return c.ReloadRows(s, asPre(pick(r, n, r.IntN(n)+1)))
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // move row
		s, ok := randomSection(r, c)
		if !ok || c.mirror.NumberOfRows(s) == 0 {
			return nil
		}
		n := c.mirror.NumberOfRows(s)
		return c.MoveRow(surface.Path(s, r.IntN(n)), surface.Path(s, r.IntN(n)))
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // insert sections
		k := r.IntN(2) + 1
		pos := pick(r, c.mirror.NumberOfSections()+k, k)
		rows := make([][]string, k)
		for i := range rows {
			rows[i] = make([]string, r.IntN(4))
		}
		return c.InsertSections(asPost(pos), rows...)
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // delete sections
		n := c.mirror.NumberOfSections()
		if n < 2 {
			return nil
		}
		return c.DeleteSections(asPre(pick(r, n, r.IntN(min(n-1, 2))+1))...)
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // move section
		n := c.mirror.NumberOfSections()
		if n == 0 {
			return nil
		}
		return c.MoveSection(Pre(r.IntN(n)), Post(r.IntN(n)))
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // row diff
		s, ok := randomSection(r, c)
		if !ok {
			return nil
		}
		n := c.mirror.NumberOfRows(s)
		del := pick(r, n, r.IntN(min(n, 2)+1))
		remaining := n - len(del)
		ki := r.IntN(3)
		ins := pick(r, remaining+ki, ki)
		final := remaining + ki
		mod := pick(r, final, r.IntN(min(final, 2)+1))

		err := c.ApplyRowDiff(s, RowDiff[string]{
			Deletions:     asPre(del),
			Insertions:    asPost(ins),
			Modifications: asPost(mod),
		})
		if errors.Is(err, ErrEmptyDiff) {
			return nil
		}
		return err
	},
	func(r *rand.Rand, c *Coordinator[string]) error { // out of range, must be rejected
		s, ok := randomSection(r, c)
		if !ok {
			return nil
		}
		before := c.Shape()
		err := c.DeleteRows(s, Pre(c.mirror.NumberOfRows(s)))
		if !errors.Is(err, ErrInvalidIndex) {
			return errors.New("out-of-range delete was accepted")
		}
		if !slices.Equal(before, c.Shape()) {
			return errors.New("rejected delete changed the shape")
		}
		return nil
	},
}

// TestRandomSequences_SurfaceAgreesWithMirror drives random operations and
// batches through the coordinator and checks that the simulator, which tracks
// its own shape from the primitives alone, accepts every update and ends up
// with the same shape as the Mirror.
func TestRandomSequences_SurfaceAgreesWithMirror(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*31))
		f := newFixture(t, Options{}, make([]string, 4), nil, make([]string, 2))

		for i := range 200 {
			var err error
			if r.IntN(4) == 0 {
				err = f.c.PerformBatch(Batch{Animated: r.IntN(2) == 0}, func() error {
					for range r.IntN(5) + 1 {
						if err := steps[r.IntN(len(steps))](r, f.c); err != nil {
							return err
						}
					}
					return nil
				})
			} else {
				err = steps[r.IntN(len(steps))](r, f.c)
			}
			require.NoError(t, err, "seed %d step %d", seed, i)
			require.Empty(t, f.sim.Violations(), "seed %d step %d", seed, i)
			require.Equal(t, f.c.Shape(), f.sim.Shape(), "seed %d step %d", seed, i)

			if r.IntN(3) == 0 {
				f.sim.Flush()
			}
		}
	}
}

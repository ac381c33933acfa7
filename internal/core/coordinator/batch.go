package coordinator

import (
	"fmt"

	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/surface"
)

type batchState int

const (
	stateIdle batchState = iota
	stateOpen
	stateSubmitting
)

func (s batchState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Batch describes how a transaction is submitted to the surface.
type Batch struct {
	Animated  bool
	Animation surface.Animation

	// Completion, when set, runs exactly once after the surface finishes the
	// visual update. finished is false when the update was interrupted.
	Completion func(finished bool)
}

type pendingBatch[T any] struct {
	id       uint64
	opts     Batch
	implicit bool

	// snapshot is nil for implicit batches: their single operation validates
	// before it mutates, so there is nothing to roll back.
	snapshot *Mirror[T]
	ops      []Op
	deferred []func()
}

// PerformBatch runs body and submits every mutation it makes as one update.
// Mutations inside body apply to the Mirror immediately, so later calls in
// the same body see earlier ones. If body returns an error (or panics) the
// Mirror is restored and nothing reaches the surface.
//
// Starting a batch while another is open or being submitted fails with
// ErrReentrantBatch.
func (c *Coordinator[T]) PerformBatch(b Batch, body func() error) error {
	return c.perform(b, false, body)
}

// Update is PerformBatch with the coordinator's default animation settings.
func (c *Coordinator[T]) Update(body func() error, completion func(finished bool)) error {
	b := c.implicitBatch()
	b.Completion = completion
	return c.perform(b, false, body)
}

func (c *Coordinator[T]) implicitBatch() Batch {
	return Batch{Animated: c.opts.Animated, Animation: c.opts.Animation}
}

func (c *Coordinator[T]) perform(b Batch, implicit bool, body func() error) error {
	if c.state != stateIdle {
		return c.fail("batch", fmt.Errorf("%w: batch %d is %s", ErrReentrantBatch, c.pending.id, c.state))
	}

	c.lastBatch++
	p := &pendingBatch[T]{id: c.lastBatch, opts: b, implicit: implicit}
	if !implicit {
		p.snapshot = c.mirror.Clone()
	}
	c.pending = p
	c.state = stateOpen

	committed := false
	defer func() {
		if !committed {
			c.rollback(p)
		}
	}()

	if err := body(); err != nil {
		return err
	}

	committed = true
	c.commit(p)
	return nil
}

func (c *Coordinator[T]) rollback(p *pendingBatch[T]) {
	if c.pending != p {
		return
	}
	if p.snapshot != nil {
		c.mirror = p.snapshot
	}
	c.pending = nil
	c.state = stateIdle
	c.log.Debug().Uint64("batch", p.id).Int("discarded", len(p.ops)).Msg("batch rolled back")
}

func (c *Coordinator[T]) commit(p *pendingBatch[T]) {
	if p.implicit && len(p.ops) == 0 {
		c.pending = nil
		c.state = stateIdle
		return
	}

	c.state = stateSubmitting
	defer func() {
		if c.pending == p {
			c.pending = nil
			c.state = stateIdle
		}
	}()

	var (
		fired bool
		early []bool
	)
	completion := func(finished bool) {
		if fired {
			c.log.Warn().Uint64("batch", p.id).Msg("surface reported completion twice")
			return
		}
		fired = true
		if c.pending == p {
			// Reported from inside EndUpdates; hold it until the batch is closed.
			early = append(early, finished)
			return
		}
		c.complete(p, finished)
	}

	c.surface.BeginUpdates()
	for _, op := range p.ops {
		op.issue(c.surface)
	}
	c.surface.EndUpdates(p.opts.Animated, completion)

	c.pending = nil
	c.state = stateIdle

	names := make([]string, len(p.ops))
	for i, op := range p.ops {
		names[i] = op.String()
	}
	c.log.Debug().
		Uint64("batch", p.id).
		Strs("ops", names).
		Bool("animated", p.opts.Animated).
		Msg("batch committed")
	c.bus.PublishBatchCommitted(eventbus.BatchCommittedPayload{
		Owner:    c.opts.Owner,
		BatchID:  p.id,
		Ops:      names,
		Animated: p.opts.Animated,
		Implicit: p.implicit,
	})

	for _, fn := range p.deferred {
		fn()
	}
	if len(early) > 0 {
		c.complete(p, early[0])
	}
}

func (c *Coordinator[T]) complete(p *pendingBatch[T], finished bool) {
	c.log.Debug().Uint64("batch", p.id).Bool("finished", finished).Msg("batch completed")
	c.bus.PublishBatchCompleted(eventbus.BatchCompletedPayload{
		Owner:    c.opts.Owner,
		BatchID:  p.id,
		Finished: finished,
	})
	if p.opts.Completion != nil {
		p.opts.Completion(finished)
	}
}

// mutate runs a structural change inside the open batch, or inside an
// implicit single-operation batch when none is open. apply receives the
// animation for the primitive it records.
func (c *Coordinator[T]) mutate(name string, apply func(anim surface.Animation) error) error {
	switch c.state {
	case stateOpen:
		if err := apply(c.pending.opts.Animation); err != nil {
			return c.fail(name, err)
		}
		return nil
	case stateSubmitting:
		return c.fail(name, fmt.Errorf("%w: %s while batch %d is being submitted", ErrReentrantBatch, name, c.pending.id))
	}

	return c.perform(c.implicitBatch(), true, func() error {
		return c.mutate(name, apply)
	})
}

// afterBatch runs a non-structural surface call. check validates it against
// the Mirror and its error goes straight back to the caller. Inside an open
// batch run is queued until the batch has been submitted and check is run
// again then, since later calls in the batch may have removed the target.
func (c *Coordinator[T]) afterBatch(name string, check func() error, run func()) error {
	switch c.state {
	case stateOpen:
		if err := check(); err != nil {
			return c.fail(name, err)
		}
		c.pending.deferred = append(c.pending.deferred, func() {
			if err := check(); err != nil {
				_ = c.fail(name, fmt.Errorf("dropped after submit: %w", err))
				return
			}
			run()
		})
		return nil
	case stateSubmitting:
		return c.fail(name, fmt.Errorf("%w: %s while batch %d is being submitted", ErrReentrantBatch, name, c.pending.id))
	}

	if err := check(); err != nil {
		return c.fail(name, err)
	}
	run()
	return nil
}

func (c *Coordinator[T]) push(op Op) {
	c.pending.ops = append(c.pending.ops, op)
}

// Package coordinator keeps a sectioned list model in agreement with an
// imperative rendering surface.
//
// A Coordinator owns a Mirror of the structure the surface shows. Every
// mutation is validated against the Mirror, applied to it, and recorded as a
// primitive in the pending batch; the batch is replayed onto the surface
// between BeginUpdates and EndUpdates when it commits. Outside a batch the
// Mirror and the surface always have the same shape.
//
// A Coordinator is not safe for concurrent use. Call it from the goroutine
// that drives the surface.
package coordinator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// Output is the owner-side collaborator: it holds the real content and
// configures the cells the surface displays.
type Output[T any] interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	Row(path surface.IndexPath) T
	ConfigureCell(cell surface.Cell, path surface.IndexPath)
}

// Delegate receives display and selection events from the surface.
type Delegate interface {
	WillDisplay(cell surface.Cell, path surface.IndexPath)
	DidSelectRow(path surface.IndexPath)
	DidDeselectRow(path surface.IndexPath)
}

// Options configures a Coordinator.
type Options struct {
	// Owner identifies the coordinator in logs and events.
	Owner string

	// Strict turns every rejected call into a panic.
	Strict bool

	// Animated and Animation apply to implicit single-operation batches.
	Animated  bool
	Animation surface.Animation

	// Bus is optional.
	Bus *eventbus.EventBus

	// Logger defaults to the "coordinator" component logger.
	Logger *zerolog.Logger
}

// Coordinator synchronizes one owner's content with one surface.
type Coordinator[T any] struct {
	surface  surface.Surface
	output   Output[T]
	delegate Delegate
	focus    surface.Focusable

	mirror *Mirror[T]
	opts   Options
	log    zerolog.Logger
	bus    *eventbus.EventBus

	state     batchState
	pending   *pendingBatch[T]
	lastBatch uint64
}

// New creates a Coordinator with an empty Mirror and binds it to s as the
// surface's source. d may be nil.
func New[T any](s surface.Surface, out Output[T], d Delegate, opts Options) *Coordinator[T] {
	logger := logging.Owned("coordinator", opts.Owner)
	if opts.Logger != nil {
		logger = *opts.Logger
		if opts.Owner != "" {
			logger = logger.With().Str("owner", opts.Owner).Logger()
		}
	}

	c := &Coordinator[T]{
		surface:  s,
		output:   out,
		delegate: d,
		mirror:   NewMirror[T](),
		opts:     opts,
		log:      logger,
		bus:      opts.Bus,
	}
	if f, ok := s.(surface.Focusable); ok {
		c.focus = f
	}

	s.Bind(c)
	return c
}

// Owner returns the owner ID the coordinator was created with.
func (c *Coordinator[T]) Owner() string {
	return c.opts.Owner
}

// Shape returns the mirrored row count of every section.
func (c *Coordinator[T]) Shape() []int {
	return c.mirror.Shape()
}

// Rows returns the mirrored payloads of section.
func (c *Coordinator[T]) Rows(section int) []T {
	return c.mirror.Rows(section)
}

// Row returns the mirrored payload at path.
func (c *Coordinator[T]) Row(path surface.IndexPath) (T, bool) {
	return c.mirror.Row(path)
}

// InBatch reports whether a batch is being built or submitted.
func (c *Coordinator[T]) InBatch() bool {
	return c.state != stateIdle
}

// ReloadData rebuilds the Mirror from the output and tells the surface to
// reload everything. It cannot run inside a batch.
func (c *Coordinator[T]) ReloadData() error {
	if c.state != stateIdle {
		return c.fail("reload", fmt.Errorf("%w: reload while batch %d is %s", ErrReentrantBatch, c.pending.id, c.state))
	}

	counts := make([]int, c.output.NumberOfSections())
	for s := range counts {
		counts[s] = c.output.NumberOfRows(s)
	}
	if err := c.mirror.ReloadAll(counts, c.output.Row); err != nil {
		return c.fail("reload", err)
	}

	c.surface.ReloadData()
	c.log.Debug().Ints("shape", counts).Msg("data reloaded")
	c.bus.PublishDataReloaded(eventbus.DataReloadedPayload{Owner: c.opts.Owner, Shape: counts})
	return nil
}

// fail reports a rejected call. In strict mode it panics; otherwise it logs,
// publishes a diagnostic and hands err back to the caller.
func (c *Coordinator[T]) fail(op string, err error) error {
	c.log.Error().Err(err).Str("op", op).Msg("call rejected")
	c.bus.PublishDiagnosticReported(eventbus.DiagnosticReportedPayload{
		Owner: c.opts.Owner,
		Op:    op,
		Err:   err,
	})
	if c.opts.Strict {
		panic(fmt.Errorf("rowsync: %s: %w", op, err))
	}
	return err
}

package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/sections"
	"github.com/colonyops/rowsync/internal/core/surface"
	"github.com/colonyops/rowsync/internal/tui/listview"
)

// board owns the demo's content and its list. Its address keys the
// coordinator registry.
type board struct {
	store *sections.Store[string]
	list  *listview.Model
	rng   *rand.Rand

	items    int
	sections int

	status    string
	statusErr bool
	displayed int
}

func newBoard(seed uint64, sectionCount, rowsPerSection int) *board {
	b := &board{
		store: sections.New[string](nil),
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	initial := make([]sections.Section[string], sectionCount)
	for i := range initial {
		initial[i] = b.newSection(rowsPerSection)
	}
	b.store.Set(initial)
	return b
}

func (b *board) newItem() string {
	b.items++
	return fmt.Sprintf("item %d", b.items)
}

func (b *board) newSection(rows int) sections.Section[string] {
	b.sections++
	s := sections.Section[string]{Title: fmt.Sprintf("list %d", b.sections)}
	for range rows {
		s.Rows = append(s.Rows, b.newItem())
	}
	return s
}

func (b *board) setStatus(format string, args ...any) {
	b.status = fmt.Sprintf(format, args...)
	b.statusErr = false
}

func (b *board) setError(err error) {
	b.status = err.Error()
	b.statusErr = true
}

// subscribe reports owner's coordinator activity in the status line.
func (b *board) subscribe(bus *eventbus.EventBus, owner string) {
	bus.SubscribeBatchCommitted(func(p eventbus.BatchCommittedPayload) {
		if p.Owner != owner {
			return
		}
		b.setStatus("batch #%d: %s", p.BatchID, strings.Join(p.Ops, "; "))
	})
	bus.SubscribeBatchCompleted(func(p eventbus.BatchCompletedPayload) {
		if p.Owner != owner {
			return
		}
		if p.Finished {
			b.setStatus("batch #%d landed", p.BatchID)
		} else {
			b.setStatus("batch #%d interrupted", p.BatchID)
		}
	})
	bus.SubscribeDiagnosticReported(func(p eventbus.DiagnosticReportedPayload) {
		if p.Owner != owner {
			return
		}
		b.setError(fmt.Errorf("%s: %w", p.Op, p.Err))
	})
}

// WillDisplay implements coordinator.Delegate.
func (b *board) WillDisplay(surface.Cell, surface.IndexPath) {
	b.displayed++
}

// DidSelectRow implements coordinator.Delegate.
func (b *board) DidSelectRow(p surface.IndexPath) {
	v, _ := b.store.Lookup(p)
	b.setStatus("selected %q", v)
}

// DidDeselectRow implements coordinator.Delegate.
func (b *board) DidDeselectRow(p surface.IndexPath) {
	v, _ := b.store.Lookup(p)
	b.setStatus("deselected %q", v)
}

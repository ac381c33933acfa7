// Package testbus records everything published on a real EventBus so tests
// can assert on it.
package testbus

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/rowsync/internal/core/eventbus"
)

// Record is one published event.
type Record struct {
	Event   eventbus.Event
	Payload any
}

// Bus is an EventBus that remembers what it published.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	records []Record
}

// New returns a recording bus. Recording uses the publish hook, so events
// nobody subscribes to are captured too.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New()}
	tb.OnPublish(func(event eventbus.Event, payload any) {
		tb.mu.Lock()
		tb.records = append(tb.records, Record{Event: event, Payload: payload})
		tb.mu.Unlock()
	})
	return tb
}

// Records returns every recorded event in publish order.
func (tb *Bus) Records() []Record {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.records)
}

// Of returns the payloads recorded for event, in publish order.
func (tb *Bus) Of(event eventbus.Event) []any {
	var out []any
	for _, r := range tb.Records() {
		if r.Event == event {
			out = append(out, r.Payload)
		}
	}
	return out
}

// Payloads returns the recorded payloads of type P.
func Payloads[P any](tb *Bus) []P {
	var out []P
	for _, r := range tb.Records() {
		if p, ok := r.Payload.(P); ok {
			out = append(out, p)
		}
	}
	return out
}

func (tb *Bus) Reset() {
	tb.mu.Lock()
	tb.records = nil
	tb.mu.Unlock()
}

func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	assert.NotEmpty(t, tb.Of(event), "expected %q to be published", event)
}

func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	assert.Empty(t, tb.Of(event), "expected %q not to be published", event)
}

package eventbus

import "sync"

// EventBus dispatches typed events to subscribers. A nil *EventBus is valid
// and drops every event.
type EventBus struct {
	mu   sync.RWMutex
	subs map[Event][]func(any)

	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Event][]func(any))}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) subscribers(event Event) []func(any) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	subs := make([]func(any), len(bus.subs[event]))
	copy(subs, bus.subs[event])
	return subs
}

// SubscribeBatchCommitted registers fn for EventBatchCommitted.
func (bus *EventBus) SubscribeBatchCommitted(fn func(BatchCommittedPayload)) {
	bus.subscribe(EventBatchCommitted, func(p any) { fn(p.(BatchCommittedPayload)) })
}

// SubscribeBatchCompleted registers fn for EventBatchCompleted.
func (bus *EventBus) SubscribeBatchCompleted(fn func(BatchCompletedPayload)) {
	bus.subscribe(EventBatchCompleted, func(p any) { fn(p.(BatchCompletedPayload)) })
}

// SubscribeDataReloaded registers fn for EventDataReloaded.
func (bus *EventBus) SubscribeDataReloaded(fn func(DataReloadedPayload)) {
	bus.subscribe(EventDataReloaded, func(p any) { fn(p.(DataReloadedPayload)) })
}

// SubscribeDiagnosticReported registers fn for EventDiagnosticReported.
func (bus *EventBus) SubscribeDiagnosticReported(fn func(DiagnosticReportedPayload)) {
	bus.subscribe(EventDiagnosticReported, func(p any) { fn(p.(DiagnosticReportedPayload)) })
}

// PublishBatchCommitted dispatches EventBatchCommitted.
func (bus *EventBus) PublishBatchCommitted(p BatchCommittedPayload) {
	bus.send(EventBatchCommitted, p)
}

// PublishBatchCompleted dispatches EventBatchCompleted.
func (bus *EventBus) PublishBatchCompleted(p BatchCompletedPayload) {
	bus.send(EventBatchCompleted, p)
}

// PublishDataReloaded dispatches EventDataReloaded.
func (bus *EventBus) PublishDataReloaded(p DataReloadedPayload) {
	bus.send(EventDataReloaded, p)
}

// PublishDiagnosticReported dispatches EventDiagnosticReported.
func (bus *EventBus) PublishDiagnosticReported(p DiagnosticReportedPayload) {
	bus.send(EventDiagnosticReported, p)
}

package eventbus

import (
	"slices"
	"sync"
)

// hooks holds the lifecycle hook state for the EventBus.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// OnPublish registers a hook that fires after an event has been dispatched.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPublish = append(bus.hooks.onPublish, fn)
	bus.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	bus.hooks.mu.Lock()
	bus.hooks.onSubscribe = append(bus.hooks.onSubscribe, fn)
	bus.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPanic = append(bus.hooks.onPanic, fn)
	bus.hooks.mu.Unlock()
}

// send runs every subscriber for event, then the publish hooks. A panicking
// subscriber is reported to the panic hooks and does not stop the others.
func (bus *EventBus) send(event Event, payload any) {
	if bus == nil {
		return
	}
	for _, fn := range bus.subscribers(event) {
		bus.dispatch(event, payload, fn)
	}
	bus.runOnPublish(event, payload)
}

func (bus *EventBus) dispatch(event Event, payload any, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(event, payload, r)
		}
	}()
	fn(payload)
}

// snapshot copies a hook list so hooks run without holding the lock.
func snapshot[F any](mu *sync.RWMutex, fns *[]F) []F {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Clone(*fns)
}

func (bus *EventBus) runOnPublish(event Event, payload any) {
	for _, fn := range snapshot(&bus.hooks.mu, &bus.hooks.onPublish) {
		fn(event, payload)
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range snapshot(&bus.hooks.mu, &bus.hooks.onSubscribe) {
		fn(event)
	}
}

// runOnPanic swallows panics from the hooks themselves.
func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range snapshot(&bus.hooks.mu, &bus.hooks.onPanic) {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}

package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing and OnPanic for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		switch p := payload.(type) {
		case BatchCommittedPayload:
			e = e.Str("owner", p.Owner).Uint64("batch", p.BatchID).Strs("ops", p.Ops)
		case BatchCompletedPayload:
			e = e.Str("owner", p.Owner).Uint64("batch", p.BatchID).Bool("finished", p.Finished)
		case DiagnosticReportedPayload:
			e = e.Str("owner", p.Owner).Str("op", p.Op).AnErr("diagnostic", p.Err)
		case DataReloadedPayload:
			e = e.Str("owner", p.Owner).Ints("shape", p.Shape)
		}
		e.Msg("event fired")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

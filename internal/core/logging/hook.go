package logging

import "github.com/rs/zerolog"

// ContextHook copies the replay script and step carried by an event's context
// onto the event. Events logged without Ctx are untouched.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	if name := GetScript(ctx); name != "" {
		e.Str("script", name)
	}
	if step, ok := GetStep(ctx); ok {
		e.Int("step", step)
	}
}

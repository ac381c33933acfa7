package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Owned is Component with the owner the logger acts for. An empty owner is
// left out.
func Owned(name, owner string) zerolog.Logger {
	ctx := log.With().Str("cmp", name)
	if owner != "" {
		ctx = ctx.Str("owner", owner)
	}
	return ctx.Logger()
}

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the page offset from an event's context into the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if offset, ok := GetPageOffset(ctx); ok {
		e.Int("page_offset", offset)
	}
}

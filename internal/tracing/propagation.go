package tracing

import (
	"context"

	"github.com/rs/zerolog"
)

// PropagateToLogger adds tracing context to a zerolog logger
func PropagateToLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)

	c := logger.With()
	if tc.TraceID != "" {
		c = c.Str("trace_id", tc.TraceID)
	}
	if _, ok := GetUpdateID(ctx); ok {
		c = c.Int("update_id", tc.UpdateID)
	}
	if tc.HasChat {
		c = c.Int64("chat_id", tc.ChatID)
	}

	return c.Logger()
}

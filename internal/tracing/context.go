package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// UpdateIDKey is the context key for the Telegram update ID
	UpdateIDKey ContextKey = "update_id"
	// ChatIDKey is the context key for the originating chat ID
	ChatIDKey ContextKey = "chat_id"
)

// TraceContext holds tracing information for one update
type TraceContext struct {
	TraceID  string
	UpdateID int
	ChatID   int64
	HasChat  bool
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithUpdateID adds a Telegram update ID to the context
func WithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, UpdateIDKey, updateID)
}

// WithChatID adds a chat ID to the context
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, ChatIDKey, chatID)
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetUpdateID retrieves the update ID from the context
func GetUpdateID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UpdateIDKey).(int)
	return id, ok
}

// GetChatID retrieves the chat ID from the context
func GetChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ChatIDKey).(int64)
	return id, ok
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	tc := &TraceContext{TraceID: GetTraceID(ctx)}
	tc.UpdateID, _ = GetUpdateID(ctx)
	tc.ChatID, tc.HasChat = GetChatID(ctx)
	return tc
}

// NewUpdateContext tags ctx with the update ID and assigns a trace ID
// unless an active span already provided one
func NewUpdateContext(ctx context.Context, updateID int) context.Context {
	if GetTraceID(ctx) == "" {
		ctx = WithTraceID(ctx, NewTraceID())
	}
	return WithUpdateID(ctx, updateID)
}

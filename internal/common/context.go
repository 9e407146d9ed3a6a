package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyPageID contextKey = "page_id"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithPageID adds a page ID to the context
func WithPageID(ctx context.Context, pageID string) context.Context {
	return context.WithValue(ctx, ContextKeyPageID, pageID)
}

// PageIDFromContext extracts the page ID from context
func PageIDFromContext(ctx context.Context) string {
	if pageID, ok := ctx.Value(ContextKeyPageID).(string); ok {
		return pageID
	}
	return ""
}

// WithTimeout creates a context with the specified timeout; a non-positive
// timeout returns a plain cancelable context.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

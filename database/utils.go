package database

import (
	"context"
	"time"
)

// Common timeout durations for store operations
const (
	// ShortTimeout for pings and single-row lookups
	ShortTimeout = 5 * time.Second

	// MediumTimeout for a day's worth of matches
	MediumTimeout = 10 * time.Second

	// LongTimeout for the full historical pick set
	LongTimeout = 30 * time.Second
)

// ContextWithTimeout derives a context with timeout from parent.
// A nil parent is treated as context.Background().
func ContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// WithShortTimeout derives a context with ShortTimeout
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return ContextWithTimeout(parent, ShortTimeout)
}

// WithMediumTimeout derives a context with MediumTimeout
func WithMediumTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return ContextWithTimeout(parent, MediumTimeout)
}

// WithLongTimeout derives a context with LongTimeout
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return ContextWithTimeout(parent, LongTimeout)
}

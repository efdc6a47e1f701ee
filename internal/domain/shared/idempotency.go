package shared

import (
	"context"
	"time"
)

// AttemptStore records submission attempt IDs so that a retried "place order"
// request for the same logical attempt does not produce a second order.
type AttemptStore interface {
	// MarkProcessed marks an attempt as processed with a TTL.
	// Returns true if the attempt was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, attemptID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an attempt has already been processed
	IsProcessed(ctx context.Context, attemptID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// AttemptConfig holds configuration for submission attempt deduplication
type AttemptConfig struct {
	// TTL is the time-to-live for processed attempt IDs.
	// After this duration, the same attempt ID can be processed again.
	TTL time.Duration

	// Enabled determines whether attempt deduplication is enabled
	Enabled bool
}

// DefaultAttemptConfig returns the default attempt deduplication configuration
func DefaultAttemptConfig() AttemptConfig {
	return AttemptConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

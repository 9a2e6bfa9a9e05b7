package ports

import "context"

// Notifier delivers human-readable messages to the configured chat channel.
// Delivery failures are logged by callers and never affect trade state.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

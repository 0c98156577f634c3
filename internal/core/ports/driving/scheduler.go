package driving

import "context"

// Scheduler runs background polling.
type Scheduler interface {
	// Start begins running scheduled passes.
	// Blocks until context is cancelled, Stop is called, or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for an in-flight pass.
	Stop() error
}

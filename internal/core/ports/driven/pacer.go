package driven

import "context"

// Pacer spaces out provider calls during batch ingestion.
type Pacer interface {
	// Wait blocks until the next call may be issued or ctx is done.
	Wait(ctx context.Context) error
}

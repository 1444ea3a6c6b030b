package queue

import "context"

// Job handles every message whose Type matches. MemoryQueue calls Handle
// from its workers and retries it on error, so Handle must be safe to
// repeat for the same payload.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type routed to this job, e.g. "forecast.record".
	Type() string

	// Handle processes one payload. The context carries the job timeout.
	Handle(ctx context.Context, payload interface{}) error
}

// Package queue defines the boundary between the external result transport
// and the pipeline. The transport's wire framing and delivery mechanics stay
// outside; the pipeline sees a plain handler function and returns an
// acknowledgement decision.
package queue

import (
	"context"

	"github.com/mathlilypeng/github-app/internal/task"
)

// AckDecision tells the transport what to do with a delivered result
type AckDecision int

const (
	// Ack removes the result from the queue. Every task ends in Ack: failures
	// are terminal diagnostics, not implicit retries
	Ack AckDecision = iota

	// Requeue asks the transport to redeliver. The pipeline itself never
	// returns this; it exists so transports with their own redelivery policy
	// can express it at this boundary
	Requeue
)

// Handler processes one patch result. It is invoked by an external dispatcher
// and must acknowledge exactly once per task, via its return value
type Handler func(ctx context.Context, res task.PatchResult) AckDecision

// Listener delivers results to a handler until the context is cancelled
type Listener interface {
	Listen(ctx context.Context, handle Handler) error
}

// Package notify publishes domain events for downstream consumers
// (notification service, analytics, fulfilment). Publishing is best-effort
// and happens after the owning transaction commits; a failed publish is
// logged, never rolled back into the order flow.
package notify

import (
	"context"
)

// Event subjects.
const (
	SubjectOrderConfirmed = "order.confirmed"
	SubjectOrderCancelled = "order.cancelled"
	SubjectReturnApproved = "return.approved"
	SubjectReturnRefunded = "return.refunded"
)

// Publisher publishes domain events by subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Package domain provides the core business types and context helpers for
// the checkout and promotion-pricing core.
//
// Context helpers centralize request-scoped data access: the identity service
// and attribution capture are external collaborators, and the rest of the
// core consumes them only through these accessors.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// userContextKey stores the authenticated user's id.
	userContextKey contextKey = iota

	// attributionContextKey stores marketing attribution fields.
	attributionContextKey
)

// Attribution is opaque marketing context (source, medium, campaign, utm_*)
// captured at the edge and stored verbatim on orders. The core never
// interprets it.
type Attribution map[string]string

// --- Identity helpers ---

// NewContextWithUserID returns a new context with the user id attached.
func NewContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserIDFromContext retrieves the current user's id from context.
// Returns uuid.Nil if no user is present (guest or unauthenticated caller).
func UserIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userContextKey).(uuid.UUID)
	return id
}

// --- Attribution helpers ---

// NewContextWithAttribution returns a new context with attribution attached.
func NewContextWithAttribution(ctx context.Context, attr Attribution) context.Context {
	return context.WithValue(ctx, attributionContextKey, attr)
}

// AttributionFromContext retrieves attribution from context.
// Returns nil when none was captured.
func AttributionFromContext(ctx context.Context) Attribution {
	attr, _ := ctx.Value(attributionContextKey).(Attribution)
	return attr
}

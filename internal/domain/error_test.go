package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Code: EINVALID, Message: "cart is empty"},
			want: "cart is empty",
		},
		{
			name: "with op",
			err:  &Error{Code: ECONFLICT, Op: "checkout.reserve", Message: "insufficient stock"},
			want: "checkout.reserve: insufficient stock",
		},
		{
			name: "with wrapped error",
			err:  &Error{Code: EINTERNAL, Op: "order.create", Message: "failed to save order", Err: errors.New("boom")},
			want: "order.create: failed to save order: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(nil); got != "" {
		t.Errorf("ErrorCode(nil) = %q, want empty", got)
	}
	if got := ErrorCode(errors.New("plain")); got != EINTERNAL {
		t.Errorf("ErrorCode(plain) = %q, want EINTERNAL", got)
	}
	if got := ErrorCode(Conflict("op", "busy")); got != ECONFLICT {
		t.Errorf("ErrorCode(conflict) = %q, want ECONFLICT", got)
	}

	// Wrapped domain errors keep their code through fmt.Errorf chains.
	wrapped := fmt.Errorf("outer: %w", ErrInsufficientStock)
	if got := ErrorCode(wrapped); got != ECONFLICT {
		t.Errorf("ErrorCode(wrapped) = %q, want ECONFLICT", got)
	}
}

func TestErrorMessageHidesInternals(t *testing.T) {
	msg := ErrorMessage(Internal(errors.New("pq: connection refused"), "order.create", "failed to save order"))
	if msg != "An internal error occurred. Please try again later." {
		t.Errorf("internal errors must not leak details, got %q", msg)
	}

	msg = ErrorMessage(Invariant("refund.compute", "negative discount"))
	if msg != "An internal error occurred. Please try again later." {
		t.Errorf("invariant errors must not leak details, got %q", msg)
	}

	msg = ErrorMessage(Invalid("checkout.place_order", "cart is empty"))
	if msg != "cart is empty" {
		t.Errorf("validation messages are user-facing, got %q", msg)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, EINTERNAL, "op", "msg") != nil {
		t.Error("WrapError(nil) should be nil")
	}

	base := errors.New("socket closed")
	err := WrapError(base, EEXTERNAL, "returns.refund", "refund gateway unavailable")
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the base error")
	}
	if !IsCode(err, EEXTERNAL) {
		t.Errorf("IsCode = false, code = %s", ErrorCode(err))
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Return-related domain errors.
var (
	ErrReturnNotFound      = &Error{Code: ENOTFOUND, Message: "Return request not found"}
	ErrReturnNotDelivered  = &Error{Code: EINVALID, Message: "Only delivered orders can be returned"}
	ErrReturnWindowClosed  = &Error{Code: EINVALID, Message: "Return window has closed for this order"}
	ErrReturnAlreadyExists = &Error{Code: ECONFLICT, Message: "A return request already exists for this order"}
)

// ReturnStatus is the lifecycle state of a return request. Transitions happen
// only via admin action; Refunded and Rejected are terminal.
type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
	ReturnRefunded ReturnStatus = "refunded"
)

// ReturnDecision is an admin resolution action on a return request.
type ReturnDecision string

const (
	DecisionApprove ReturnDecision = "approve"
	DecisionReject  ReturnDecision = "reject"
	DecisionRefund  ReturnDecision = "refund"
)

// ReturnLine pairs an order line with the quantity being returned.
type ReturnLine struct {
	OrderLineID uuid.UUID
	Quantity    int32
}

// ReturnRequest is a customer-initiated reversal of part or all of a
// delivered order. RefundCents is computed from the order lines' frozen
// prices and discounts at request time.
type ReturnRequest struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Lines       []ReturnLine
	Reason      string
	Status      ReturnStatus
	RefundCents int64
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

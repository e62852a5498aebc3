package enums

import "fmt"

// FulfillmentStatus tracks how far an order has moved toward delivery.
type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusShipped    FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered  FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusProcessing,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
	FulfillmentStatusCancelled,
}

// fulfillmentTransitions is the only legal forward path; cancellation is
// handled separately because it is reachable from every non-terminal state.
var fulfillmentTransitions = map[FulfillmentStatus]FulfillmentStatus{
	FulfillmentStatusPending:    FulfillmentStatusProcessing,
	FulfillmentStatusProcessing: FulfillmentStatusShipped,
	FulfillmentStatusShipped:    FulfillmentStatusDelivered,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (f FulfillmentStatus) IsTerminal() bool {
	return f == FulfillmentStatusDelivered || f == FulfillmentStatusCancelled
}

// CanTransitionTo reports whether moving from f to next is a legal step.
func (f FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	if !next.IsValid() || f.IsTerminal() {
		return false
	}
	if next == FulfillmentStatusCancelled {
		return true
	}
	return fulfillmentTransitions[f] == next
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}

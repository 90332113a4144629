package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map onto HTTP responses.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled in this course")
	ErrDuplicatePurchase  = errors.New("a purchase already exists for this course")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// IntegrityError means a verified gateway event referenced a purchase the
// ledger has no record of. It cannot be resolved by redelivery; it is
// logged, recorded as an orphaned webhook event and left for an operator.
type IntegrityError struct {
	EventID    string
	EventType  string
	PurchaseID string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error: event %s (%s) references unknown purchase %q",
		e.EventID, e.EventType, e.PurchaseID)
}

package stripe

import (
	"context"
	"encoding/json"
)

// Event types the reconciler cares about. Anything else is acknowledged
// and logged without a state transition.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventCheckoutSessionExpired   = "checkout.session.expired"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

// Event is a verified webhook notification. Raw holds the exact bytes the
// signature was computed over.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`

	Raw []byte `json:"-"`
}

// CheckoutSession mirrors the fields of a hosted checkout session this
// service reads: the redirect URL handed back to the caller and the
// metadata that carries the purchase id through the gateway round-trip.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntent is the slice of a payment_intent object needed to correlate
// a failure event back to its checkout session.
type PaymentIntent struct {
	ID string `json:"id"`
}

// CheckoutSessionParams describes one single-item hosted checkout.
type CheckoutSessionParams struct {
	ProductName string
	ImageURL    string
	Currency    string
	UnitAmount  int64 // minor currency units
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Gateway is the payment-gateway surface the checkout and reconciliation
// services depend on. Client implements it against the live API; tests
// substitute fakes.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	// ListCheckoutSessions returns the sessions created for a payment
	// intent, used when a failure event lacks the embedded purchase id.
	ListCheckoutSessions(ctx context.Context, paymentIntentID string) ([]CheckoutSession, error)
}

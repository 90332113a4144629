package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/stripe"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookService reconciles verified gateway events into purchase-ledger
// transitions. It only ever sees events that already passed signature
// verification.
//
// Every transition is guarded by "purchase currently pending" through the
// store's conditional write, which makes the endpoint safe under
// at-least-once delivery: a replayed or out-of-order event finds the
// purchase already terminal and becomes a recorded no-op. A nil return
// means "acknowledge to the gateway"; an error return asks for redelivery.
type WebhookService struct {
	store       database.Storage
	enrollments *EnrollmentService
	gateway     stripe.Gateway
}

// NewWebhookService creates the event reconciler.
func NewWebhookService(store database.Storage, enrollments *EnrollmentService, gateway stripe.Gateway) *WebhookService {
	return &WebhookService{
		store:       store,
		enrollments: enrollments,
		gateway:     gateway,
	}
}

// HandleEvent dispatches one verified event through the state machine.
func (s *WebhookService) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventCheckoutSessionCompleted:
		session, err := parseSession(event)
		if err != nil {
			return err
		}
		return s.completeCheckout(ctx, event, session.Metadata["purchaseId"])

	case stripe.EventCheckoutSessionExpired:
		session, err := parseSession(event)
		if err != nil {
			return err
		}
		return s.transition(ctx, event, session.Metadata["purchaseId"], model.PurchaseStatusExpired)

	case stripe.EventPaymentIntentFailed:
		return s.failPayment(ctx, event)

	default:
		log.Printf("[webhook] unhandled stripe event type: %s", event.Type)
		s.record(ctx, event, "", model.WebhookEventSkipped, "unhandled event type")
		return nil
	}
}

// completeCheckout moves the purchase to success and applies enrollment in
// one transaction, so the ledger is never marked success without the
// enrollment also being durable.
func (s *WebhookService) completeCheckout(ctx context.Context, event stripe.Event, purchaseID string) error {
	purchase, err := s.lookupPurchase(ctx, event, purchaseID)
	if err != nil || purchase == nil {
		return err
	}

	var moved bool
	err = s.store.Transact(ctx, func(tx database.Storage) error {
		var txErr error
		moved, txErr = tx.TransitionPurchase(ctx, purchase.ID, model.PurchaseStatusPending, model.PurchaseStatusSuccess)
		if txErr != nil || !moved {
			return txErr
		}
		return s.enrollments.ApplyIn(ctx, tx, purchase.UserID, purchase.CourseID)
	})
	if err != nil {
		return err
	}

	if !moved {
		s.record(ctx, event, purchase.ID, model.WebhookEventSkipped, "purchase already in terminal state")
		return nil
	}
	s.record(ctx, event, purchase.ID, model.WebhookEventProcessed, "")
	return nil
}

// transition applies a pending-only status change with no side effects.
func (s *WebhookService) transition(ctx context.Context, event stripe.Event, purchaseID string, to model.PurchaseStatus) error {
	purchase, err := s.lookupPurchase(ctx, event, purchaseID)
	if err != nil || purchase == nil {
		return err
	}

	moved, err := s.store.TransitionPurchase(ctx, purchase.ID, model.PurchaseStatusPending, to)
	if err != nil {
		return err
	}

	if !moved {
		s.record(ctx, event, purchase.ID, model.WebhookEventSkipped, "purchase already in terminal state")
		return nil
	}
	s.record(ctx, event, purchase.ID, model.WebhookEventProcessed, "")
	return nil
}

// failPayment resolves the purchase indirectly: the failure event carries a
// payment intent, not the session, so the gateway is asked which session
// that intent belongs to and the purchase id is read from its metadata.
func (s *WebhookService) failPayment(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return fmt.Errorf("failed to parse payment_intent object: %w", err)
	}

	sessions, err := s.gateway.ListCheckoutSessions(ctx, intent.ID)
	if err != nil {
		// Correlation failed for a transient reason; ask for redelivery.
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if len(sessions) == 0 {
		s.record(ctx, event, "", model.WebhookEventSkipped, "no checkout session for payment intent "+intent.ID)
		return nil
	}

	return s.transition(ctx, event, sessions[0].Metadata["purchaseId"], model.PurchaseStatusFailed)
}

// lookupPurchase resolves the purchase an event references. A missing or
// unknown id is a ledger/gateway divergence: it is logged, recorded as an
// orphaned event for operator follow-up and acknowledged (nil, nil) —
// redelivery cannot help when the record genuinely does not exist.
func (s *WebhookService) lookupPurchase(ctx context.Context, event stripe.Event, purchaseID string) (*model.Purchase, error) {
	if purchaseID == "" {
		integrity := &IntegrityError{EventID: event.ID, EventType: event.Type, PurchaseID: ""}
		log.Printf("[webhook] %v", integrity)
		s.record(ctx, event, "", model.WebhookEventOrphaned, "event carries no purchase id metadata")
		return nil, nil
	}

	purchase, err := s.store.GetPurchase(ctx, purchaseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		integrity := &IntegrityError{EventID: event.ID, EventType: event.Type, PurchaseID: purchaseID}
		log.Printf("[webhook] %v", integrity)
		s.record(ctx, event, purchaseID, model.WebhookEventOrphaned, integrity.Error())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// record appends the audit row. Failures are logged, not propagated: the
// audit trail must never turn a processed event into a gateway retry.
func (s *WebhookService) record(ctx context.Context, event stripe.Event, purchaseID, status, detail string) {
	row := &model.WebhookEvent{
		Provider:   "stripe",
		EventID:    event.ID,
		EventType:  event.Type,
		PurchaseID: purchaseID,
		Status:     status,
		Detail:     detail,
		Payload:    datatypes.JSON(event.Raw),
	}
	if err := s.store.RecordWebhookEvent(ctx, row); err != nil {
		log.Printf("[webhook] failed to record event %s: %v", event.ID, err)
	}
}

func parseSession(event stripe.Event) (stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return session, fmt.Errorf("failed to parse checkout session object: %w", err)
	}
	return session, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvent(t *testing.T, id, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)

	event := stripe.Event{ID: id, Type: eventType}
	event.Data.Object = raw

	full, err := json.Marshal(map[string]interface{}{
		"id":   id,
		"type": eventType,
		"data": map[string]interface{}{"object": object},
	})
	require.NoError(t, err)
	event.Raw = full
	return event
}

func sessionEvent(t *testing.T, id, eventType, purchaseID string) stripe.Event {
	t.Helper()
	return makeEvent(t, id, eventType, stripe.CheckoutSession{
		ID:       "cs_" + id,
		Metadata: map[string]string{"purchaseId": purchaseID},
	})
}

func newWebhookFixture(gateway *fakeGateway) (*WebhookService, *database.MemoryStore) {
	store := database.NewMemoryStore()
	enrollments := NewEnrollmentService(store)
	return NewWebhookService(store, enrollments, gateway), store
}

func seedPendingPurchase(t *testing.T, store *database.MemoryStore, id string) {
	t.Helper()
	require.NoError(t, store.CreatePurchase(context.Background(), &model.Purchase{
		ID:       id,
		UserID:   "user-1",
		CourseID: "course-1",
		Amount:   80,
		Status:   model.PurchaseStatusPending,
	}))
}

func eventsWithStatus(store *database.MemoryStore, status string) []model.WebhookEvent {
	var out []model.WebhookEvent
	for _, e := range store.Events() {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

func TestCompletedEventEnrollsAndRecords(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	event := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, "purchase-1")
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusSuccess, purchase.Status)

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	processed := eventsWithStatus(store, model.WebhookEventProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, "evt_1", processed[0].EventID)
	assert.Equal(t, "purchase-1", processed[0].PurchaseID)
	assert.NotEmpty(t, processed[0].Payload)
}

func TestReplayedCompletedEventIsRecordedNoOp(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	event := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, "purchase-1")
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.HandleEvent(context.Background(), event),
			"replays must be acknowledged, not errored")
	}

	assert.Equal(t, 1, store.EnrollmentCount())

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusSuccess, purchase.Status)

	assert.Len(t, eventsWithStatus(store, model.WebhookEventProcessed), 1)
	assert.Len(t, eventsWithStatus(store, model.WebhookEventSkipped), 3)
}

func TestConcurrentCompletedDeliveriesApplyOnce(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	event := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, "purchase-1")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.HandleEvent(context.Background(), event)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, store.EnrollmentCount())
	assert.Len(t, eventsWithStatus(store, model.WebhookEventProcessed), 1,
		"exactly one delivery wins the pending->success transition")
}

func TestExpiredEventMovesPendingToExpired(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	event := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionExpired, "purchase-1")
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusExpired, purchase.Status)
	assert.Equal(t, 0, store.EnrollmentCount())
}

func TestExpiredAfterCompletedLeavesSuccess(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	completed := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, "purchase-1")
	require.NoError(t, svc.HandleEvent(context.Background(), completed))

	// Late out-of-order expiry for the same purchase.
	expired := sessionEvent(t, "evt_2", stripe.EventCheckoutSessionExpired, "purchase-1")
	require.NoError(t, svc.HandleEvent(context.Background(), expired))

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusSuccess, purchase.Status,
		"a terminal state is never overwritten")

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestPaymentFailedResolvesPurchaseViaGateway(t *testing.T) {
	gateway := &fakeGateway{
		listSessions: []stripe.CheckoutSession{{
			ID:       "cs_1",
			Metadata: map[string]string{"purchaseId": "purchase-1"},
		}},
	}
	svc, store := newWebhookFixture(gateway)
	seedPendingPurchase(t, store, "purchase-1")

	event := makeEvent(t, "evt_1", stripe.EventPaymentIntentFailed, stripe.PaymentIntent{ID: "pi_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusFailed, purchase.Status)
	assert.Equal(t, 0, store.EnrollmentCount())
}

func TestPaymentFailedGatewayDownAsksForRedelivery(t *testing.T) {
	gateway := &fakeGateway{listErr: errors.New("connection refused")}
	svc, store := newWebhookFixture(gateway)
	seedPendingPurchase(t, store, "purchase-1")

	event := makeEvent(t, "evt_1", stripe.EventPaymentIntentFailed, stripe.PaymentIntent{ID: "pi_1"})
	err := svc.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	purchase, getErr := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, getErr)
	assert.Equal(t, model.PurchaseStatusPending, purchase.Status,
		"a transient correlation failure must leave the purchase untouched")
}

func TestPaymentFailedWithoutSessionIsSkipped(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})
	seedPendingPurchase(t, store, "purchase-1")

	event := makeEvent(t, "evt_1", stripe.EventPaymentIntentFailed, stripe.PaymentIntent{ID: "pi_unknown"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Len(t, eventsWithStatus(store, model.WebhookEventSkipped), 1)

	purchase, err := store.GetPurchase(context.Background(), "purchase-1")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusPending, purchase.Status)
}

func TestUnknownPurchaseIsOrphanedAndAcknowledged(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})

	event := sessionEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, "no-such-purchase")
	require.NoError(t, svc.HandleEvent(context.Background(), event),
		"redelivery cannot fix a missing record, so the event is acknowledged")

	orphaned := eventsWithStatus(store, model.WebhookEventOrphaned)
	require.Len(t, orphaned, 1)
	assert.Equal(t, "no-such-purchase", orphaned[0].PurchaseID)

	assert.Empty(t, store.Purchases())
	assert.Equal(t, 0, store.EnrollmentCount())
}

func TestEventWithoutPurchaseMetadataIsOrphaned(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})

	event := makeEvent(t, "evt_1", stripe.EventCheckoutSessionCompleted, stripe.CheckoutSession{ID: "cs_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.Len(t, eventsWithStatus(store, model.WebhookEventOrphaned), 1)
}

func TestUnhandledEventTypeIsAcknowledged(t *testing.T) {
	svc, store := newWebhookFixture(&fakeGateway{})

	event := makeEvent(t, "evt_1", "invoice.paid", map[string]string{"id": "in_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	skipped := eventsWithStatus(store, model.WebhookEventSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, "unhandled event type", skipped[0].Detail)
}

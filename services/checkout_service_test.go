package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory stripe.Gateway for service tests.
type fakeGateway struct {
	createCalls  int
	lastParams   stripe.CheckoutSessionParams
	createErr    error
	session      *stripe.CheckoutSession
	listSessions []stripe.CheckoutSession
	listErr      error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.createCalls++
	g.lastParams = params
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.session != nil {
		return g.session, nil
	}
	return &stripe.CheckoutSession{
		ID:       "cs_test_123",
		URL:      "https://checkout.stripe.com/pay/cs_test_123",
		Metadata: params.Metadata,
	}, nil
}

func (g *fakeGateway) ListCheckoutSessions(ctx context.Context, paymentIntentID string) ([]stripe.CheckoutSession, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.listSessions, nil
}

func newCheckoutFixture(gateway *fakeGateway) (*CheckoutService, *database.MemoryStore) {
	store := database.NewMemoryStore()
	enrollments := NewEnrollmentService(store)
	checkout := NewCheckoutService(store, enrollments, gateway, CheckoutConfig{
		Currency:    "usd",
		FrontendURL: "https://edemy.test",
	})
	return checkout, store
}

func TestFinalAmount(t *testing.T) {
	tests := []struct {
		price    float64
		discount float64
		want     float64
	}{
		{100, 20, 80},
		{19.99, 0, 19.99},
		{33.33, 10, 30.00},
		{49.99, 15, 42.49},
		{0, 50, 0},
		{100, 100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FinalAmount(tt.price, tt.discount))
	}
}

func TestPurchaseCourseFreeEnrollsImmediately(t *testing.T) {
	gateway := &fakeGateway{}
	checkout, store := newCheckoutFixture(gateway)
	store.AddCourse(model.Course{ID: "course-1", Title: "Intro", Price: 0})

	result, err := checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, result.Enrolled)
	assert.Empty(t, result.SessionURL)

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	purchases := store.Purchases()
	require.Len(t, purchases, 1)
	assert.Equal(t, model.PurchaseStatusSuccess, purchases[0].Status)
	assert.Equal(t, 0.0, purchases[0].Amount)

	assert.Zero(t, gateway.createCalls, "free courses must not touch the gateway")
}

func TestPurchaseCoursePaidCreatesSession(t *testing.T) {
	gateway := &fakeGateway{}
	checkout, store := newCheckoutFixture(gateway)
	store.AddCourse(model.Course{ID: "course-1", Title: "Go Deep", Price: 100, Discount: 20})

	result, err := checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.False(t, result.Enrolled)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", result.SessionURL)

	require.Equal(t, 1, gateway.createCalls)
	assert.Equal(t, int64(8000), gateway.lastParams.UnitAmount)
	assert.Equal(t, "usd", gateway.lastParams.Currency)
	assert.Equal(t, result.PurchaseID, gateway.lastParams.Metadata["purchaseId"])
	assert.Equal(t, "https://edemy.test/loading/my-enrollments", gateway.lastParams.SuccessURL)
	assert.Equal(t, "https://edemy.test/course/course-1", gateway.lastParams.CancelURL)

	purchase, err := store.GetPurchase(context.Background(), result.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusPending, purchase.Status)
	assert.Equal(t, 80.0, purchase.Amount)
	assert.Equal(t, "cs_test_123", purchase.StripeSessionID)

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.False(t, enrolled, "paid checkout must not enroll before payment confirms")
}

func TestPurchaseCourseUnknownCourse(t *testing.T) {
	checkout, _ := newCheckoutFixture(&fakeGateway{})

	_, err := checkout.PurchaseCourse(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestPurchaseCourseAlreadyEnrolled(t *testing.T) {
	gateway := &fakeGateway{}
	checkout, store := newCheckoutFixture(gateway)
	store.AddCourse(model.Course{ID: "course-1", Price: 50})
	require.NoError(t, store.Enroll(context.Background(), "user-1", "course-1"))

	_, err := checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Zero(t, gateway.createCalls)
}

func TestPurchaseCourseDuplicatePurchase(t *testing.T) {
	gateway := &fakeGateway{}
	checkout, store := newCheckoutFixture(gateway)
	store.AddCourse(model.Course{ID: "course-1", Price: 50})

	_, err := checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)

	_, err = checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	assert.ErrorIs(t, err, ErrDuplicatePurchase)
	assert.Equal(t, 1, gateway.createCalls, "a duplicate attempt must not mint a second session")
}

func TestPurchaseCourseGatewayFailureLeavesPending(t *testing.T) {
	gateway := &fakeGateway{createErr: errors.New("connection refused")}
	checkout, store := newCheckoutFixture(gateway)
	store.AddCourse(model.Course{ID: "course-1", Price: 50})

	_, err := checkout.PurchaseCourse(context.Background(), "user-1", "course-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	// The pending entry stays for the expiry sweep; nothing is enrolled.
	purchases := store.Purchases()
	require.Len(t, purchases, 1)
	assert.Equal(t, model.PurchaseStatusPending, purchases[0].Status)

	enrolled, err := store.IsEnrolled(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.False(t, enrolled)
}

func TestPurchaseCourseCreatesUserOnFirstContact(t *testing.T) {
	checkout, store := newCheckoutFixture(&fakeGateway{})
	store.AddCourse(model.Course{ID: "course-1", Price: 0})

	_, err := checkout.PurchaseCourse(context.Background(), "new-user", "course-1")
	require.NoError(t, err)

	user, err := store.GetUser(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, "new-user", user.ID)
}

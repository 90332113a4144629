package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/stripe"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutService decides the free-vs-paid purchase path. Free courses are
// enrolled synchronously with an amount-0 audit purchase; paid courses get
// a pending ledger entry and a hosted checkout session whose metadata
// carries the purchase id back on later webhook events.
type CheckoutService struct {
	store       database.Storage
	enrollments *EnrollmentService
	gateway     stripe.Gateway
	currency    string
	frontendURL string
}

// CheckoutConfig carries the request-independent checkout settings.
type CheckoutConfig struct {
	Currency    string // ISO 4217 code, e.g. "usd"
	FrontendURL string // base URL for success/cancel redirects
}

// NewCheckoutService creates the checkout initiator.
func NewCheckoutService(store database.Storage, enrollments *EnrollmentService, gateway stripe.Gateway, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		store:       store,
		enrollments: enrollments,
		gateway:     gateway,
		currency:    cfg.Currency,
		frontendURL: cfg.FrontendURL,
	}
}

// CheckoutResult is the outcome of a purchase request: either an immediate
// enrollment (free course) or a redirect to the hosted checkout.
type CheckoutResult struct {
	PurchaseID string
	Enrolled   bool
	SessionURL string
}

// FinalAmount applies the percentage discount and rounds half-up to two
// decimals (currency minor-unit precision).
func FinalAmount(price, discount float64) float64 {
	return math.Round((price-discount*price/100)*100) / 100
}

// PurchaseCourse runs one checkout attempt for (userID, courseID).
//
// The duplicate-purchase check is a best-effort guard against creating two
// checkout sessions for one course; exactly-once enrollment itself is
// enforced downstream by the enrollment applier, not here.
func (s *CheckoutService) PurchaseCourse(ctx context.Context, userID, courseID string) (*CheckoutResult, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := s.store.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.store.IsEnrolled(ctx, user.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	if course.Price == 0 {
		return s.enrollFree(ctx, user.ID, course.ID)
	}

	// Best-effort duplicate guard: any prior purchase for this course,
	// pending or terminal, rejects a second checkout session.
	if _, err := s.store.FindPurchaseByUserAndCourse(ctx, user.ID, course.ID); err == nil {
		return nil, ErrDuplicatePurchase
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	amount := FinalAmount(course.Price, course.Discount)
	purchase := &model.Purchase{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		CourseID: course.ID,
		Amount:   amount,
		Status:   model.PurchaseStatusPending,
	}
	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		ProductName: course.Title,
		ImageURL:    course.Thumbnail,
		Currency:    s.currency,
		UnitAmount:  int64(math.Round(amount * 100)),
		SuccessURL:  s.frontendURL + "/loading/my-enrollments",
		CancelURL:   s.frontendURL + "/course/" + course.ID,
		Metadata:    map[string]string{"purchaseId": purchase.ID},
	})
	if err != nil {
		// The pending purchase stays in the ledger; if no session ever
		// completes it, the expiry job moves it to expired. No silent
		// retry here: that could mint two sessions for one purchase.
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := s.store.SetPurchaseSession(ctx, purchase.ID, session.ID); err != nil {
		log.Printf("failed to link session %s to purchase %s: %v", session.ID, purchase.ID, err)
	}

	return &CheckoutResult{PurchaseID: purchase.ID, SessionURL: session.URL}, nil
}

// enrollFree applies enrollment and writes the amount-0 audit purchase in
// one unit of work. No gateway call is made.
func (s *CheckoutService) enrollFree(ctx context.Context, userID, courseID string) (*CheckoutResult, error) {
	purchase := &model.Purchase{
		ID:       uuid.NewString(),
		UserID:   userID,
		CourseID: courseID,
		Amount:   0,
		Status:   model.PurchaseStatusSuccess,
	}

	err := s.store.Transact(ctx, func(tx database.Storage) error {
		if err := s.enrollments.ApplyIn(ctx, tx, userID, courseID); err != nil {
			return err
		}
		return tx.CreatePurchase(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{PurchaseID: purchase.ID, Enrolled: true}, nil
}

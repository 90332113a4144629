package database

import (
	"context"

	"github.com/edemy/lms-server/model"
)

// Storage is the persistence contract the purchase and enrollment engine is
// written against. Two implementations exist: GORMStore (PostgreSQL) and
// MemoryStore (tests, local development).
//
// Concurrency contract, independent of the backing technology:
//   - TransitionPurchase is a conditional write: of N concurrent calls moving
//     the same purchase out of a given status, exactly one observes moved=true.
//   - Enroll is add-if-absent: concurrent calls for the same (user, course)
//     pair net exactly one row and all return nil.
type Storage interface {
	HealthCheck() error

	// Transact runs fn against a transaction-bound Storage. When the
	// implementation has no real transactions it serializes fn calls
	// instead; the conditional primitives above carry the correctness
	// guarantees either way.
	Transact(ctx context.Context, fn func(Storage) error) error

	// Users
	GetUser(ctx context.Context, id string) (*model.User, error)
	// EnsureUser returns the existing user or creates a bare record for a
	// first interaction. Conflict policy: return existing, never overwrite.
	EnsureUser(ctx context.Context, id string) (*model.User, error)
	UpsertUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error

	// Courses
	GetCourse(ctx context.Context, id string) (*model.Course, error)

	// Purchase ledger
	CreatePurchase(ctx context.Context, purchase *model.Purchase) error
	GetPurchase(ctx context.Context, id string) (*model.Purchase, error)
	FindPurchaseByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Purchase, error)
	// TransitionPurchase atomically moves a purchase from one status to
	// another. moved=false with a nil error means the purchase was not in
	// the expected prior status (typically: already terminal).
	TransitionPurchase(ctx context.Context, id string, from, to model.PurchaseStatus) (moved bool, err error)
	SetPurchaseSession(ctx context.Context, id, sessionID string) error

	// Enrollment relation
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	Enroll(ctx context.Context, userID, courseID string) error

	// Webhook audit trail
	RecordWebhookEvent(ctx context.Context, event *model.WebhookEvent) error

	// GetDB exposes the underlying handle (a *gorm.DB for GORMStore) for
	// the plain read/write handlers that don't go through the contract.
	GetDB() interface{}
}

package services

import (
	"context"

	"github.com/edemy/lms-server/database"
)

// EnrollmentService is the only component allowed to write the user<->course
// enrollment relation. Both the free-course checkout path and the webhook
// reconciler go through it; nothing else touches user_courses.
//
// Application is idempotent and atomic per pair: the store's add-if-absent
// primitive guarantees that two concurrent applications (say, a replayed
// webhook racing the original delivery) net exactly one enrollment, with
// both calls returning success. No removal path exists here; enrollment is
// monotonic.
type EnrollmentService struct {
	store database.Storage
}

// NewEnrollmentService creates the enrollment applier.
func NewEnrollmentService(store database.Storage) *EnrollmentService {
	return &EnrollmentService{store: store}
}

// Apply ensures the (user, course) pair is enrolled.
func (s *EnrollmentService) Apply(ctx context.Context, userID, courseID string) error {
	return s.ApplyIn(ctx, s.store, userID, courseID)
}

// ApplyIn is Apply against a caller-supplied store, letting the reconciler
// run enrollment inside the same transaction as the purchase transition.
func (s *EnrollmentService) ApplyIn(ctx context.Context, store database.Storage, userID, courseID string) error {
	return store.Enroll(ctx, userID, courseID)
}

package database

import (
	"context"
	"sync"

	"github.com/edemy/lms-server/model"
	"gorm.io/gorm"
)

// MemoryStore is an in-memory Storage used by tests and local development.
// It honors the same conditional-write contract as GORMStore: transitions
// and enrollments are atomic under its mutex, so the engine's guarantees do
// not depend on PostgreSQL being the backing store.
type MemoryStore struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	users       map[string]model.User
	courses     map[string]model.Course
	purchases   map[string]model.Purchase
	enrollments map[string]map[string]bool // userID -> set of courseIDs
	events      []model.WebhookEvent
	nextEventID uint
}

var _ Storage = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]model.User),
		courses:     make(map[string]model.Course),
		purchases:   make(map[string]model.Purchase),
		enrollments: make(map[string]map[string]bool),
	}
}

func (s *MemoryStore) HealthCheck() error { return nil }

func (s *MemoryStore) GetDB() interface{} { return nil }

// Transact serializes units of work. There is no rollback; the individual
// conditional primitives stay atomic on their own, which is what the
// engine's correctness rests on.
func (s *MemoryStore) Transact(ctx context.Context, fn func(Storage) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *MemoryStore) EnsureUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	user := model.User{ID: id}
	s.users[id] = user
	return &user, nil
}

func (s *MemoryStore) UpsertUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &course, nil
}

// AddCourse seeds a course. Test helper, not part of the Storage contract.
func (s *MemoryStore) AddCourse(course model.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = course
}

func (s *MemoryStore) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchase.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.purchases[purchase.ID] = *purchase
	return nil
}

func (s *MemoryStore) GetPurchase(ctx context.Context, id string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &purchase, nil
}

func (s *MemoryStore) FindPurchaseByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.Purchase
	for _, p := range s.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			if found == nil || p.CreatedAt.After(found.CreatedAt) {
				cp := p
				found = &cp
			}
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (s *MemoryStore) TransitionPurchase(ctx context.Context, id string, from, to model.PurchaseStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[id]
	if !ok || purchase.Status != from {
		return false, nil
	}
	purchase.Status = to
	s.purchases[id] = purchase
	return true, nil
}

func (s *MemoryStore) SetPurchaseSession(ctx context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	purchase.StripeSessionID = sessionID
	s.purchases[id] = purchase
	return nil
}

func (s *MemoryStore) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollments[userID][courseID], nil
}

func (s *MemoryStore) Enroll(ctx context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrollments[userID] == nil {
		s.enrollments[userID] = make(map[string]bool)
	}
	s.enrollments[userID][courseID] = true
	return nil
}

func (s *MemoryStore) RecordWebhookEvent(ctx context.Context, event *model.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	event.ID = s.nextEventID
	s.events = append(s.events, *event)
	return nil
}

// Inspection helpers for tests.

// Purchases returns a snapshot of all ledger entries.
func (s *MemoryStore) Purchases() []model.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, p)
	}
	return out
}

// EnrollmentCount returns how many pairs the enrollment relation holds.
func (s *MemoryStore) EnrollmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, courses := range s.enrollments {
		n += len(courses)
	}
	return n
}

// Events returns a snapshot of the webhook audit trail.
func (s *MemoryStore) Events() []model.WebhookEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WebhookEvent, len(s.events))
	copy(out, s.events)
	return out
}

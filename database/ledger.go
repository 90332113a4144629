package database

import (
	"context"

	"github.com/edemy/lms-server/model"
)

// CreatePurchase inserts a new ledger entry.
func (s *GORMStore) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	return s.db.WithContext(ctx).Create(purchase).Error
}

// GetPurchase fetches a ledger entry by id.
func (s *GORMStore) GetPurchase(ctx context.Context, id string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := s.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindPurchaseByUserAndCourse returns the most recent purchase a user holds
// for a course, in any status. Used as the duplicate-checkout guard.
func (s *GORMStore) FindPurchaseByUserAndCourse(ctx context.Context, userID, courseID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at DESC").
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// TransitionPurchase is the single mutation primitive for purchase status.
// The WHERE clause on the prior status makes it a conditional write: under
// concurrent delivery of the same event only one caller sees moved=true,
// and a purchase already in a terminal state is never touched.
func (s *GORMStore) TransitionPurchase(ctx context.Context, id string, from, to model.PurchaseStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetPurchaseSession links a hosted checkout session to its ledger entry.
func (s *GORMStore) SetPurchaseSession(ctx context.Context, id, sessionID string) error {
	return s.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ?", id).
		Update("stripe_session_id", sessionID).Error
}

// RecordWebhookEvent appends an audit row for a processed notification.
func (s *GORMStore) RecordWebhookEvent(ctx context.Context, event *model.WebhookEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

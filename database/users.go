package database

import (
	"context"

	"github.com/edemy/lms-server/model"
	"gorm.io/gorm/clause"
)

// GetUser fetches a user by identity-provider id.
func (s *GORMStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser returns the user, creating a bare record on first interaction.
// The insert is ON CONFLICT DO NOTHING so racing calls both end up reading
// the same row.
func (s *GORMStore) EnsureUser(ctx context.Context, id string) (*model.User, error) {
	user := model.User{ID: id}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error; err != nil {
		return nil, err
	}

	// Re-read: on conflict the Create above leaves the struct as-is.
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates or refreshes a user projection from an identity event.
func (s *GORMStore) UpsertUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "image_url"}),
		}).
		Create(user).Error
}

// DeleteUser removes a user projection after a user.deleted event.
func (s *GORMStore) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

package database

import (
	"context"

	"github.com/edemy/lms-server/model"
	"gorm.io/gorm/clause"
)

// IsEnrolled reports whether the (user, course) pair is present in the
// enrollment relation.
func (s *GORMStore) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Enroll adds the (user, course) pair if absent. The composite primary key
// plus ON CONFLICT DO NOTHING makes concurrent calls net exactly one row,
// with every caller returning success.
func (s *GORMStore) Enroll(ctx context.Context, userID, courseID string) error {
	enrollment := model.UserCourse{UserID: userID, CourseID: courseID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollment).Error
}

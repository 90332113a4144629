package database

import (
	"context"

	"github.com/edemy/lms-server/model"
)

// GetCourse fetches a course by id.
func (s *GORMStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

package model

import (
	"time"
)

// Course represents a published (or draft) course in the marketplace.
// Content itself (chapters, lectures, media) lives in external systems;
// this record only carries what catalog, checkout and ratings need.
type Course struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EducatorID  string    `gorm:"type:varchar(64);not null;index" json:"educator_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Price       float64   `gorm:"not null" json:"price"`              // >= 0, major currency units
	Discount    float64   `gorm:"default:0" json:"discount"`          // percentage, 0-100
	IsPublished bool      `gorm:"default:false;index" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Ratings     []CourseRating `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
	Enrollments []UserCourse   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// CourseRating stores at most one rating per (user, course) pair.
// Re-submitting overwrites the previous value (last write wins).
type CourseRating struct {
	CourseID  string    `gorm:"type:varchar(36);primaryKey" json:"course_id"`
	UserID    string    `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for CourseRating
func (CourseRating) TableName() string {
	return "course_ratings"
}

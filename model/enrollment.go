package model

// UserCourse is the authoritative user<->course enrollment relation.
// The composite primary key makes inserts naturally idempotent: enrolling
// an already-enrolled pair conflicts and is ignored. Rows are never
// deleted by the purchase subsystem; enrollment is monotonic.
type UserCourse struct {
	UserID     string `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	CourseID   string `gorm:"type:varchar(36);primaryKey" json:"course_id"`
	EnrolledAt int64  `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for UserCourse
func (UserCourse) TableName() string {
	return "user_courses"
}

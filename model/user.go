package model

import (
	"time"
)

// User is the local projection of an identity-provider account.
// The ID is the provider's user id; records are created either by the
// identity webhook (user.created) or lazily on a user's first interaction.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"index" json:"email"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Enrollments []UserCourse `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Purchases   []Purchase   `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

package model

import (
	"time"
)

// PurchaseStatus is the lifecycle state of a purchase ledger entry.
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "pending"
	PurchaseStatusSuccess PurchaseStatus = "success"
	PurchaseStatusFailed  PurchaseStatus = "failed"
	PurchaseStatusExpired PurchaseStatus = "expired"
)

// IsTerminal reports whether the status admits no further transitions.
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusSuccess || s == PurchaseStatusFailed || s == PurchaseStatusExpired
}

// Purchase is the ledger record of one checkout attempt. Valid transitions
// are pending->success, pending->failed and pending->expired; terminal rows
// are immutable and never deleted. Free enrollments are recorded directly
// in status success with amount 0 as an audit trail.
type Purchase struct {
	ID              string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string         `gorm:"type:varchar(64);not null;index" json:"user_id"`
	CourseID        string         `gorm:"type:varchar(36);not null;index" json:"course_id"`
	Amount          float64        `gorm:"not null" json:"amount"` // major units, 2 decimals
	Status          PurchaseStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	StripeSessionID string         `gorm:"type:varchar(100)" json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}

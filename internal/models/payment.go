package models

import (
	"time"
)

// PaymentStatus represents the status of a collections grid cell
type PaymentStatus string

const (
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusOverdue       PaymentStatus = "overdue"
	PaymentStatusNotApplicable PaymentStatus = "not_applicable"
)

// Payment represents one cell of the annual collections matrix: at most one
// row per (client, year, month), enforced by the composite unique index.
// Rows are written via upsert on that key, never duplicated.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint          `gorm:"uniqueIndex:idx_payments_client_period,priority:1" json:"client_id"`
	Year     int           `gorm:"uniqueIndex:idx_payments_client_period,priority:2" json:"year"`
	Month    int           `gorm:"uniqueIndex:idx_payments_client_period,priority:3" json:"month"` // 1-12
	Amount   float64       `gorm:"type:decimal(15,2)" json:"amount"`
	Status   PaymentStatus `gorm:"type:varchar(20)" json:"status"`
	PaidAt   *time.Time    `json:"paid_at"`

	// Relationships
	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

package models

import (
	"time"
)

// InstallmentStatus represents the payment status of a single installment.
// "overdue" is derived by the sweep, never set by users.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// PolicyInstallment represents one scheduled monthly payment of a policy ("cuota")
type PolicyInstallment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PolicyID uint              `gorm:"index" json:"policy_id"`
	Number   int               `json:"number"` // 1..policy.Installments
	DueDate  time.Time         `json:"due_date"`
	Amount   float64           `gorm:"type:decimal(15,2)" json:"amount"`
	Status   InstallmentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt   *time.Time        `json:"paid_at"`

	// Relationships
	Policy Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
}

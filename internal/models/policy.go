package models

import (
	"time"
)

// PolicyType represents the kind of coverage a policy provides
type PolicyType string

const (
	PolicyTypeAuto     PolicyType = "auto"
	PolicyTypeHome     PolicyType = "home"
	PolicyTypeLife     PolicyType = "life"
	PolicyTypeCommerce PolicyType = "commerce"
	PolicyTypeOther    PolicyType = "other"
)

// PolicyStatus represents the lifecycle status of a policy.
// Except for "cancelled", the status is derived from end_date by the sweep.
type PolicyStatus string

const (
	PolicyStatusActive       PolicyStatus = "active"
	PolicyStatusExpiringSoon PolicyStatus = "expiring_soon"
	PolicyStatusExpired      PolicyStatus = "expired"
	PolicyStatusCancelled    PolicyStatus = "cancelled"
)

// Policy represents an insurance contract for a client
type Policy struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID      uint         `gorm:"index" json:"client_id"`
	PolicyNumber  string       `gorm:"type:varchar(50);uniqueIndex" json:"policy_number"`
	Type          PolicyType   `gorm:"type:varchar(20)" json:"type"`
	Dominio       string       `gorm:"type:varchar(20)" json:"dominio"` // vehicle plate, empty for non-auto
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"` // start_date + installments months, fixed at creation
	MonthlyAmount float64      `gorm:"type:decimal(15,2)" json:"monthly_amount"`
	Installments  int          `json:"installments"`
	Status        PolicyStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Notes         string       `gorm:"type:text" json:"notes"`

	// Relationships
	Client             Client              `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	PolicyInstallments []PolicyInstallment `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE" json:"policy_installments,omitempty"`
}

// monthIndex flattens a calendar month to a comparable integer
func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// CoversMonth reports whether the given calendar month falls within the
// policy's coverage window [start_month, start_month + installments).
func (p Policy) CoversMonth(year int, month time.Month) bool {
	m := monthIndex(year, month)
	start := monthIndex(p.StartDate.Year(), p.StartDate.Month())
	return m >= start && m < start+p.Installments
}

// DueDay returns the day-of-month of the policy start date, used as the
// monthly due day for the collections grid.
func (p Policy) DueDay() int {
	return p.StartDate.Day()
}

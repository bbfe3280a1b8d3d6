package models

import (
	"time"
)

// Client represents an insured person ("asegurado")
type Client struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName string `gorm:"type:varchar(255)" json:"full_name"`
	DNI      string `gorm:"type:varchar(20);uniqueIndex" json:"dni"`
	Phone    string `gorm:"type:varchar(50)" json:"phone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Policies []Policy  `gorm:"foreignKey:ClientID" json:"policies,omitempty"`
	Payments []Payment `gorm:"foreignKey:ClientID" json:"payments,omitempty"`
}

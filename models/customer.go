package models

import (
	"strings"
	"time"
)

// Customer represents a CRM customer belonging to a business
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusinessID uint      `gorm:"index:idx_customers_business_id;not null" json:"business_id"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100" json:"last_name"`
	Phone      *string   `gorm:"size:20;index:idx_customers_phone" json:"phone,omitempty"`
	Email      *string   `gorm:"size:255" json:"email,omitempty"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// FullName returns the customer's display name
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	BusinessID *uint
	Phone      *string
	Email      *string
}

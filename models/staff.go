package models

import "time"

// Staff represents an employee who can be assigned to jobs and appointments
type Staff struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusinessID uint      `gorm:"index:idx_staff_business_id;not null" json:"business_id"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100" json:"last_name"`
	Phone      *string   `gorm:"size:20" json:"phone,omitempty"`
	Email      *string   `gorm:"size:255" json:"email,omitempty"`
	IsActive   *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

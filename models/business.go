package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessStatus represents the lifecycle state of a business account
type BusinessStatus string

const (
	BusinessStatusActive    BusinessStatus = "active"
	BusinessStatusSuspended BusinessStatus = "suspended"
	BusinessStatusClosed    BusinessStatus = "closed"
)

// Business represents a tenant on the platform
type Business struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	Phone             *string        `gorm:"size:20" json:"phone,omitempty"`
	Email             *string        `gorm:"size:255" json:"email,omitempty"`
	Timezone          string         `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	Status            BusinessStatus `gorm:"size:20;not null;default:'active';index:idx_businesses_status" json:"status"`
	ReminderLeadHours *int           `json:"reminder_lead_hours,omitempty"` // overrides the global lead window when set
	CreatedAt         time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Business) TableName() string { return "businesses" }

// BusinessFilter represents filter criteria for business queries
type BusinessFilter struct {
	Status *BusinessStatus
	Name   *string
}

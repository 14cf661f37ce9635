package models

import "time"

// Service represents a bookable service offered by a business
type Service struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BusinessID      uint      `gorm:"index:idx_services_business_id;not null" json:"business_id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     *string   `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents"`
	IsActive        *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Service) TableName() string { return "services" }

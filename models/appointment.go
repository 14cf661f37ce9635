package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// String returns the string representation of the status
func (s AppointmentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AppointmentStatus
func (s *AppointmentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AppointmentStatus(v)
	case []byte:
		*s = AppointmentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AppointmentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AppointmentStatus
func (s AppointmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AppointmentStatus: %s", s)
	}
	return string(s), nil
}

// Appointment represents a booked appointment. The scheduler only reads
// appointments and flags them as reminded; booking flows own the rest of
// the lifecycle.
type Appointment struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	BusinessID     uint              `gorm:"index:idx_appointments_business_start;not null" json:"business_id"`
	CustomerID     uint              `gorm:"index:idx_appointments_customer_id;not null" json:"customer_id"`
	ServiceID      *uint             `json:"service_id,omitempty"`
	StaffID        *uint             `json:"staff_id,omitempty"`
	StartDate      time.Time         `gorm:"index:idx_appointments_business_start;not null" json:"start_date"`
	EndDate        time.Time         `gorm:"not null" json:"end_date"`
	Status         AppointmentStatus `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Notes          *string           `gorm:"type:text" json:"notes,omitempty"`
	ReminderSentAt *time.Time        `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

// ReminderSent reports whether a reminder has already gone out for this appointment
func (a Appointment) ReminderSent() bool {
	return a.ReminderSentAt != nil
}

// AppointmentFilter represents filter criteria for appointment queries
type AppointmentFilter struct {
	BusinessID  *uint
	CustomerID  *uint
	Status      *AppointmentStatus
	StartAfter  *time.Time
	StartBefore *time.Time
}

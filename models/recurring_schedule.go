package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// RecurringFrequency represents the cadence unit of a recurring schedule
type RecurringFrequency string

const (
	RecurringFrequencyDaily   RecurringFrequency = "daily"
	RecurringFrequencyWeekly  RecurringFrequency = "weekly"
	RecurringFrequencyMonthly RecurringFrequency = "monthly"
)

// Valid checks if the frequency is valid
func (f RecurringFrequency) Valid() bool {
	switch f {
	case RecurringFrequencyDaily, RecurringFrequencyWeekly, RecurringFrequencyMonthly:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RecurringFrequency
func (f *RecurringFrequency) Scan(value any) error {
	if value == nil {
		*f = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*f = RecurringFrequency(v)
	case []byte:
		*f = RecurringFrequency(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RecurringFrequency", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for RecurringFrequency
func (f RecurringFrequency) Value() (driver.Value, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid RecurringFrequency: %s", f)
	}
	return string(f), nil
}

// RecurringScheduleStatus represents the lifecycle state of a recurring schedule
type RecurringScheduleStatus string

const (
	RecurringScheduleStatusActive    RecurringScheduleStatus = "active"
	RecurringScheduleStatusPaused    RecurringScheduleStatus = "paused"
	RecurringScheduleStatusCompleted RecurringScheduleStatus = "completed"
	RecurringScheduleStatusCancelled RecurringScheduleStatus = "cancelled"
)

// String returns the string representation of the status
func (s RecurringScheduleStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s RecurringScheduleStatus) Valid() bool {
	switch s {
	case RecurringScheduleStatusActive, RecurringScheduleStatusPaused,
		RecurringScheduleStatusCompleted, RecurringScheduleStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RecurringScheduleStatus
func (s *RecurringScheduleStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = RecurringScheduleStatus(v)
	case []byte:
		*s = RecurringScheduleStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RecurringScheduleStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for RecurringScheduleStatus
func (s RecurringScheduleStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RecurringScheduleStatus: %s", s)
	}
	return string(s), nil
}

// RecurringSchedule represents a user-defined rule that generates repeated
// jobs (and optionally invoices) on a computed cadence.
//
// Invariant: NextRunDate >= StartDate and is monotonically non-decreasing
// across processing runs. A schedule with EndDate in the past is never due.
type RecurringSchedule struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	BusinessID uint  `gorm:"index:idx_recurring_schedules_business_id;not null" json:"business_id"`
	CustomerID uint  `gorm:"index:idx_recurring_schedules_customer_id;not null" json:"customer_id"`
	ServiceID  *uint `json:"service_id,omitempty"`
	StaffID    *uint `json:"staff_id,omitempty"`

	Frequency      RecurringFrequency `gorm:"size:16;not null" json:"frequency"`
	RepeatInterval int                `gorm:"column:repeat_interval;not null;default:1" json:"repeat_interval"`
	DayOfWeek      *int               `json:"day_of_week,omitempty"`  // 0=Sunday .. 6=Saturday
	DayOfMonth     *int               `json:"day_of_month,omitempty"` // 1..31, clamped to month length

	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	NextRunDate time.Time  `gorm:"index:idx_recurring_schedules_next_run;not null" json:"next_run_date"`
	LastRunDate *time.Time `json:"last_run_date,omitempty"`

	Status           RecurringScheduleStatus `gorm:"size:20;not null;default:'active';index:idx_recurring_schedules_status" json:"status"`
	TotalJobsCreated int                     `gorm:"not null;default:0" json:"total_jobs_created"`

	// Job/invoice template applied to each materialized occurrence
	JobTitle                 string  `gorm:"size:255;not null" json:"job_title"`
	JobDescription           *string `gorm:"type:text" json:"job_description,omitempty"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes,omitempty"`
	AutoCreateInvoice        *bool   `gorm:"default:false" json:"auto_create_invoice"`
	InvoiceAmountCents       int64   `gorm:"not null;default:0" json:"invoice_amount_cents"`
	InvoiceTaxCents          int64   `gorm:"not null;default:0" json:"invoice_tax_cents"`
	InvoiceNotes             *string `gorm:"type:text" json:"invoice_notes,omitempty"`

	Items []RecurringScheduleItem `gorm:"foreignKey:ScheduleID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (RecurringSchedule) TableName() string { return "recurring_schedules" }

// RecurringScheduleItem represents an ordered line-item template copied onto
// invoices generated from the schedule
type RecurringScheduleItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ScheduleID     uint   `gorm:"index:idx_recurring_schedule_items_schedule_id;not null" json:"schedule_id"`
	Position       int    `gorm:"not null;default:0" json:"position"`
	Description    string `gorm:"size:500;not null" json:"description"`
	Quantity       int    `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents int64  `gorm:"not null;default:0" json:"unit_price_cents"`
	AmountCents    int64  `gorm:"not null;default:0" json:"amount_cents"`
}

func (RecurringScheduleItem) TableName() string { return "recurring_schedule_items" }

// RecurringJobHistory records one materialized occurrence of a schedule.
// The unique index on (schedule_id, scheduled_for) is the engine's core
// idempotency guarantee.
type RecurringJobHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ScheduleID   uint      `gorm:"uniqueIndex:uq_recurring_job_history_occurrence;not null" json:"schedule_id"`
	JobID        uint      `gorm:"not null" json:"job_id"`
	InvoiceID    *uint     `json:"invoice_id,omitempty"`
	ScheduledFor time.Time `gorm:"uniqueIndex:uq_recurring_job_history_occurrence;not null" json:"scheduled_for"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
}

func (RecurringJobHistory) TableName() string { return "recurring_job_history" }

// RecurringScheduleFilter represents filter criteria for schedule queries
type RecurringScheduleFilter struct {
	BusinessID *uint
	CustomerID *uint
	Status     *RecurringScheduleStatus
}

package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Valid checks if the status is valid
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusScheduled, JobStatusInProgress,
		JobStatusCompleted, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = JobStatus(v)
	case []byte:
		*s = JobStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into JobStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid JobStatus: %s", s)
	}
	return string(s), nil
}

// Job represents a unit of work for a business, either created manually or
// materialized from a recurring schedule
type Job struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	BusinessID               uint       `gorm:"index:idx_jobs_business_id;not null" json:"business_id"`
	CustomerID               uint       `gorm:"index:idx_jobs_customer_id;not null" json:"customer_id"`
	ServiceID                *uint      `json:"service_id,omitempty"`
	StaffID                  *uint      `json:"staff_id,omitempty"`
	Title                    string     `gorm:"size:255;not null" json:"title"`
	Description              *string    `gorm:"type:text" json:"description,omitempty"`
	ScheduledFor             time.Time  `gorm:"index:idx_jobs_scheduled_for;not null" json:"scheduled_for"`
	EstimatedDurationMinutes *int       `json:"estimated_duration_minutes,omitempty"`
	Status                   JobStatus  `gorm:"size:20;not null;default:'pending'" json:"status"`
	RecurringScheduleID      *uint      `gorm:"index:idx_jobs_recurring_schedule_id" json:"recurring_schedule_id,omitempty"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`
	CreatedAt                time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }

// JobFilter represents filter criteria for job queries
type JobFilter struct {
	BusinessID          *uint
	CustomerID          *uint
	Status              *JobStatus
	RecurringScheduleID *uint
}

// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// BusinessRepository defines operations for businesses
type BusinessRepository interface {
	Repository[models.Business, models.BusinessFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Business, error)
	ListActive(ctx context.Context) ([]*models.Business, error)
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]*models.Customer, error)
}

// AppointmentRepository defines operations for appointments
type AppointmentRepository interface {
	Repository[models.Appointment, models.AppointmentFilter]
	// ListNeedingReminder returns appointments for the business starting within
	// [now, now+lead] that are scheduled or confirmed and not yet reminded.
	ListNeedingReminder(ctx context.Context, businessID uint, now time.Time, lead time.Duration) ([]*models.Appointment, error)
	MarkReminded(ctx context.Context, appointmentID uint, at time.Time) error
}

// JobRepository defines operations for jobs
type JobRepository interface {
	Repository[models.Job, models.JobFilter]
	ListBySchedule(ctx context.Context, scheduleID uint) ([]*models.Job, error)
}

// InvoiceRepository defines operations for invoices
type InvoiceRepository interface {
	Repository[models.Invoice, models.InvoiceFilter]
	// NextInvoiceNumber allocates the next sequential invoice number for a business
	NextInvoiceNumber(ctx context.Context, businessID uint) (string, error)
}

// RecurringScheduleRepository defines operations for recurring schedules
type RecurringScheduleRepository interface {
	Repository[models.RecurringSchedule, models.RecurringScheduleFilter]
	// ListDue returns active schedules whose next_run_date has arrived and
	// whose end_date (when set) has not been passed by next_run_date.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.RecurringSchedule, error)
	ListItems(ctx context.Context, scheduleID uint) ([]*models.RecurringScheduleItem, error)
	Update(ctx context.Context, schedule *models.RecurringSchedule) error
	UpdateStatus(ctx context.Context, scheduleID uint, status models.RecurringScheduleStatus) error
}

// RecurringJobHistoryRepository defines operations for recurring job history rows
type RecurringJobHistoryRepository interface {
	Repository[models.RecurringJobHistory, any]
	ExistsForOccurrence(ctx context.Context, scheduleID uint, scheduledFor time.Time) (bool, error)
	ListBySchedule(ctx context.Context, scheduleID uint, limit, offset int) ([]*models.RecurringJobHistory, error)
}

package repository

import (
	"context"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"gorm.io/gorm"
)

// AppointmentRepositoryImpl implements AppointmentRepository
type AppointmentRepositoryImpl struct {
	*BaseRepository[models.Appointment, models.AppointmentFilter]
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &AppointmentRepositoryImpl{BaseRepository: NewBaseRepository[models.Appointment, models.AppointmentFilter](db)}
}

// ListNeedingReminder returns reminder candidates: start within [now, now+lead],
// status scheduled or confirmed, reminder not yet sent.
func (r *AppointmentRepositoryImpl) ListNeedingReminder(ctx context.Context, businessID uint, now time.Time, lead time.Duration) ([]*models.Appointment, error) {
	db := r.getDB(ctx)
	var rows []*models.Appointment
	if err := db.
		Where("business_id = ?", businessID).
		Where("start_date >= ? AND start_date <= ?", now, now.Add(lead)).
		Where("status IN ?", []models.AppointmentStatus{models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed}).
		Where("reminder_sent_at IS NULL").
		Order("start_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepositoryImpl) MarkReminded(ctx context.Context, appointmentID uint, at time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Updates(map[string]any{"reminder_sent_at": at, "updated_at": at}).Error
}

func (r *AppointmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AppointmentFilter, orderBy string, limit, offset int) ([]*models.Appointment, error) {
	db := r.applyFilter(r.getDB(ctx), filter)
	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	var rows []*models.Appointment
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepositoryImpl) Count(ctx context.Context, filter models.AppointmentFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Appointment{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AppointmentRepositoryImpl) applyFilter(db *gorm.DB, filter models.AppointmentFilter) *gorm.DB {
	if filter.BusinessID != nil {
		db = db.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.StartAfter != nil {
		db = db.Where("start_date >= ?", *filter.StartAfter)
	}
	if filter.StartBefore != nil {
		db = db.Where("start_date <= ?", *filter.StartBefore)
	}
	return db
}

package repository

import (
	"context"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"gorm.io/gorm"
)

// RecurringScheduleRepositoryImpl implements RecurringScheduleRepository
type RecurringScheduleRepositoryImpl struct {
	*BaseRepository[models.RecurringSchedule, models.RecurringScheduleFilter]
}

func NewRecurringScheduleRepository(db *gorm.DB) RecurringScheduleRepository {
	return &RecurringScheduleRepositoryImpl{BaseRepository: NewBaseRepository[models.RecurringSchedule, models.RecurringScheduleFilter](db)}
}

// ListDue returns active schedules with next_run_date <= now, excluding
// schedules whose end_date has already been passed by next_run_date.
func (r *RecurringScheduleRepositoryImpl) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.RecurringSchedule, error) {
	if limit <= 0 {
		limit = utils.DefaultRecurringBatchLimit
	}
	db := r.getDB(ctx)
	var rows []*models.RecurringSchedule
	if err := db.
		Where("status = ?", models.RecurringScheduleStatusActive).
		Where("next_run_date <= ?", now).
		Where("end_date IS NULL OR next_run_date <= end_date").
		Order("next_run_date ASC, id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RecurringScheduleRepositoryImpl) ListItems(ctx context.Context, scheduleID uint) ([]*models.RecurringScheduleItem, error) {
	db := r.getDB(ctx)
	var rows []*models.RecurringScheduleItem
	if err := db.Where("schedule_id = ?", scheduleID).
		Order("position ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RecurringScheduleRepositoryImpl) Update(ctx context.Context, schedule *models.RecurringSchedule) error {
	db := r.getDB(ctx)
	return db.Save(schedule).Error
}

func (r *RecurringScheduleRepositoryImpl) UpdateStatus(ctx context.Context, scheduleID uint, status models.RecurringScheduleStatus) error {
	db := r.getDB(ctx)
	return db.Model(&models.RecurringSchedule{}).
		Where("id = ?", scheduleID).
		Updates(map[string]any{"status": status, "updated_at": utils.UTCNow()}).Error
}

func (r *RecurringScheduleRepositoryImpl) ByFilter(ctx context.Context, filter models.RecurringScheduleFilter, orderBy string, limit, offset int) ([]*models.RecurringSchedule, error) {
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
	var rows []*models.RecurringSchedule
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RecurringScheduleRepositoryImpl) Count(ctx context.Context, filter models.RecurringScheduleFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.RecurringSchedule{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RecurringScheduleRepositoryImpl) applyFilter(db *gorm.DB, filter models.RecurringScheduleFilter) *gorm.DB {
	if filter.BusinessID != nil {
		db = db.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return db
}

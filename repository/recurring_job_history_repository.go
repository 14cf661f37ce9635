package repository

import (
	"context"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"gorm.io/gorm"
)

// RecurringJobHistoryRepositoryImpl implements RecurringJobHistoryRepository
type RecurringJobHistoryRepositoryImpl struct {
	*BaseRepository[models.RecurringJobHistory, any]
}

func NewRecurringJobHistoryRepository(db *gorm.DB) RecurringJobHistoryRepository {
	return &RecurringJobHistoryRepositoryImpl{BaseRepository: NewBaseRepository[models.RecurringJobHistory, any](db)}
}

// ExistsForOccurrence reports whether a history row already exists for the
// (schedule, occurrence date) pair. Backed by the unique index on the same
// pair, which also guards against concurrent inserts.
func (r *RecurringJobHistoryRepositoryImpl) ExistsForOccurrence(ctx context.Context, scheduleID uint, scheduledFor time.Time) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.RecurringJobHistory{}).
		Where("schedule_id = ? AND scheduled_for = ?", scheduleID, scheduledFor).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RecurringJobHistoryRepositoryImpl) ListBySchedule(ctx context.Context, scheduleID uint, limit, offset int) ([]*models.RecurringJobHistory, error) {
	db := r.getDB(ctx).Where("schedule_id = ?", scheduleID).Order("scheduled_for DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	var rows []*models.RecurringJobHistory
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ByFilter: since no filter is defined, apply order/limit/offset only
func (r *RecurringJobHistoryRepositoryImpl) ByFilter(ctx context.Context, _ any, orderBy string, limit, offset int) ([]*models.RecurringJobHistory, error) {
	db := r.getDB(ctx)
	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	var rows []*models.RecurringJobHistory
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RecurringJobHistoryRepositoryImpl) Count(ctx context.Context, _ any) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.RecurringJobHistory{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

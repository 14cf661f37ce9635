package repository

import (
	"context"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"gorm.io/gorm"
)

// JobRepositoryImpl implements JobRepository
type JobRepositoryImpl struct {
	*BaseRepository[models.Job, models.JobFilter]
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{BaseRepository: NewBaseRepository[models.Job, models.JobFilter](db)}
}

func (r *JobRepositoryImpl) ListBySchedule(ctx context.Context, scheduleID uint) ([]*models.Job, error) {
	db := r.getDB(ctx)
	var rows []*models.Job
	if err := db.Where("recurring_schedule_id = ?", scheduleID).
		Order("scheduled_for ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *JobRepositoryImpl) ByFilter(ctx context.Context, filter models.JobFilter, orderBy string, limit, offset int) ([]*models.Job, error) {
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
	var rows []*models.Job
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *JobRepositoryImpl) Count(ctx context.Context, filter models.JobFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Job{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *JobRepositoryImpl) applyFilter(db *gorm.DB, filter models.JobFilter) *gorm.DB {
	if filter.BusinessID != nil {
		db = db.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.RecurringScheduleID != nil {
		db = db.Where("recurring_schedule_id = ?", *filter.RecurringScheduleID)
	}
	return db
}

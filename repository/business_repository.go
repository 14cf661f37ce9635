package repository

import (
	"context"
	"errors"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"gorm.io/gorm"
)

// BusinessRepositoryImpl implements BusinessRepository
type BusinessRepositoryImpl struct {
	*BaseRepository[models.Business, models.BusinessFilter]
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &BusinessRepositoryImpl{BaseRepository: NewBaseRepository[models.Business, models.BusinessFilter](db)}
}

func (r *BusinessRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Business, error) {
	db := r.getDB(ctx)
	var row models.Business
	if err := db.Where("uuid = ?", uuid).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *BusinessRepositoryImpl) ListActive(ctx context.Context) ([]*models.Business, error) {
	db := r.getDB(ctx)
	var rows []*models.Business
	if err := db.Where("status = ?", models.BusinessStatusActive).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BusinessRepositoryImpl) ByFilter(ctx context.Context, filter models.BusinessFilter, orderBy string, limit, offset int) ([]*models.Business, error) {
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
	var rows []*models.Business
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BusinessRepositoryImpl) Count(ctx context.Context, filter models.BusinessFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Business{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BusinessRepositoryImpl) applyFilter(db *gorm.DB, filter models.BusinessFilter) *gorm.DB {
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	return db
}

package repository

import (
	"context"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"gorm.io/gorm"
)

// CustomerRepositoryImpl implements CustomerRepository
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &CustomerRepositoryImpl{BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](db)}
}

func (r *CustomerRepositoryImpl) ListByBusiness(ctx context.Context, businessID uint, limit, offset int) ([]*models.Customer, error) {
	db := r.getDB(ctx).Where("business_id = ?", businessID).Order("id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	var rows []*models.Customer
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomerRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
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
	var rows []*models.Customer
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomerRepositoryImpl) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Customer{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CustomerRepositoryImpl) applyFilter(db *gorm.DB, filter models.CustomerFilter) *gorm.DB {
	if filter.BusinessID != nil {
		db = db.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.Phone != nil {
		db = db.Where("phone = ?", *filter.Phone)
	}
	if filter.Email != nil {
		db = db.Where("email = ?", *filter.Email)
	}
	return db
}

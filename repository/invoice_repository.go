package repository

import (
	"context"
	"fmt"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"gorm.io/gorm"
)

// InvoiceRepositoryImpl implements InvoiceRepository
type InvoiceRepositoryImpl struct {
	*BaseRepository[models.Invoice, models.InvoiceFilter]
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &InvoiceRepositoryImpl{BaseRepository: NewBaseRepository[models.Invoice, models.InvoiceFilter](db)}
}

// NextInvoiceNumber allocates the next sequential invoice number for a
// business. Collisions under concurrent allocation are absorbed by the unique
// index on invoice_number.
func (r *InvoiceRepositoryImpl) NextInvoiceNumber(ctx context.Context, businessID uint) (string, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.Invoice{}).
		Where("business_id = ?", businessID).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count invoices for business %d: %w", businessID, err)
	}
	return fmt.Sprintf("%s%d-%05d", utils.InvoiceNumberPrefix, businessID, count+1), nil
}

func (r *InvoiceRepositoryImpl) ByFilter(ctx context.Context, filter models.InvoiceFilter, orderBy string, limit, offset int) ([]*models.Invoice, error) {
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
	var rows []*models.Invoice
	if err := db.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InvoiceRepositoryImpl) Count(ctx context.Context, filter models.InvoiceFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Invoice{}), filter)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *InvoiceRepositoryImpl) applyFilter(db *gorm.DB, filter models.InvoiceFilter) *gorm.DB {
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

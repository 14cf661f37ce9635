package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a unit of work inside a persistence transaction. Collaborators
// depend on this instead of *gorm.DB directly so they can be exercised with
// in-memory fakes.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// GormTransactor implements Transactor on top of WithTransaction
type GormTransactor struct {
	DB *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &GormTransactor{DB: db}
}

func (t *GormTransactor) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return WithTransaction(ctx, t.DB, fn)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Invoice represents an invoice issued to a customer. Monetary amounts are
// stored in cents to avoid floating point drift.
type Invoice struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	UUID                uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	BusinessID          uint          `gorm:"index:idx_invoices_business_id;not null" json:"business_id"`
	CustomerID          uint          `gorm:"index:idx_invoices_customer_id;not null" json:"customer_id"`
	JobID               *uint         `gorm:"index:idx_invoices_job_id" json:"job_id,omitempty"`
	InvoiceNumber       string        `gorm:"size:32;uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate         time.Time     `gorm:"not null" json:"invoice_date"`
	SubtotalCents       int64         `gorm:"not null;default:0" json:"subtotal_cents"`
	TaxCents            int64         `gorm:"not null;default:0" json:"tax_cents"`
	TotalCents          int64         `gorm:"not null;default:0" json:"total_cents"`
	Status              InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Notes               *string       `gorm:"type:text" json:"notes,omitempty"`
	RecurringScheduleID *uint         `json:"recurring_schedule_id,omitempty"`
	Items               []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt           time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"created_at"`
	UpdatedAt           time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	InvoiceID      uint   `gorm:"index:idx_invoice_items_invoice_id;not null" json:"invoice_id"`
	Position       int    `gorm:"not null;default:0" json:"position"`
	Description    string `gorm:"size:500;not null" json:"description"`
	Quantity       int    `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents int64  `gorm:"not null;default:0" json:"unit_price_cents"`
	AmountCents    int64  `gorm:"not null;default:0" json:"amount_cents"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// InvoiceFilter represents filter criteria for invoice queries
type InvoiceFilter struct {
	BusinessID *uint
	CustomerID *uint
	Status     *InvoiceStatus
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/repository"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/google/uuid"
)

// ScheduleResult reports the outcome of processing one due schedule within a tick
type ScheduleResult struct {
	ScheduleID       uint
	Success          bool
	AlreadyProcessed bool
	JobID            *uint
	InvoiceID        *uint
	Err              error
}

// RecurringProcessor materializes due occurrences of recurring schedules into
// jobs (and optionally invoices), records history, and advances each
// schedule's next-run pointer.
type RecurringProcessor struct {
	schedRepo   repository.RecurringScheduleRepository
	historyRepo repository.RecurringJobHistoryRepository
	jobRepo     repository.JobRepository
	invoiceRepo repository.InvoiceRepository
	tx          repository.Transactor
	logger      *log.Logger
	batchLimit  int
}

func NewRecurringProcessor(
	schedRepo repository.RecurringScheduleRepository,
	historyRepo repository.RecurringJobHistoryRepository,
	jobRepo repository.JobRepository,
	invoiceRepo repository.InvoiceRepository,
	tx repository.Transactor,
	logger *log.Logger,
	batchLimit int,
) *RecurringProcessor {
	if logger == nil {
		logger = log.Default()
	}
	if batchLimit <= 0 {
		batchLimit = utils.DefaultRecurringBatchLimit
	}
	return &RecurringProcessor{
		schedRepo:   schedRepo,
		historyRepo: historyRepo,
		jobRepo:     jobRepo,
		invoiceRepo: invoiceRepo,
		tx:          tx,
		logger:      logger,
		batchLimit:  batchLimit,
	}
}

// ProcessDueSchedules handles one bounded unit of work: every active schedule
// whose next_run_date has arrived gets exactly one occurrence materialized.
// Failure of one schedule never aborts the others; each schedule's mutations
// happen inside a single transaction.
func (p *RecurringProcessor) ProcessDueSchedules(ctx context.Context, now time.Time) []ScheduleResult {
	due, err := p.schedRepo.ListDue(ctx, now, p.batchLimit)
	if err != nil {
		p.logger.Printf("recurring: list due schedules failed: %v", err)
		return nil
	}
	if len(due) == 0 {
		return nil
	}
	p.logger.Printf("recurring: %d schedules due", len(due))

	results := make([]ScheduleResult, 0, len(due))
	for _, s := range due {
		res := p.processSchedule(ctx, s, now)
		switch {
		case res.AlreadyProcessed:
			recurringOccurrencesTotal.WithLabelValues("already_processed").Inc()
			p.logger.Printf("recurring: schedule id=%d occurrence %s already processed, skipped",
				s.ID, s.NextRunDate.Format("2006-01-02"))
		case res.Success:
			recurringOccurrencesTotal.WithLabelValues("created").Inc()
			p.logger.Printf("recurring: schedule id=%d created job id=%d (invoice=%v)",
				s.ID, derefUint(res.JobID), res.InvoiceID != nil)
		default:
			recurringOccurrencesTotal.WithLabelValues("failed").Inc()
			p.logger.Printf("recurring: schedule id=%d failed: %v", s.ID, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// processSchedule materializes one occurrence for one schedule. The new
// next-run date is computed from the schedule's current next_run_date, not
// from wall clock, so gaps are measured on the logical cadence.
func (p *RecurringProcessor) processSchedule(ctx context.Context, s *models.RecurringSchedule, now time.Time) ScheduleResult {
	res := ScheduleResult{ScheduleID: s.ID}
	scheduledFor := s.NextRunDate

	// Misconfigured cadence fails fast before any writes.
	newNextRun, err := NextRunDate(s, scheduledFor)
	if err != nil {
		res.Err = err
		return res
	}

	err = p.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		exists, err := p.historyRepo.ExistsForOccurrence(txCtx, s.ID, scheduledFor)
		if err != nil {
			return fmt.Errorf("check occurrence history: %w", err)
		}
		if exists {
			res.AlreadyProcessed = true
			return nil
		}

		job := &models.Job{
			BusinessID:               s.BusinessID,
			CustomerID:               s.CustomerID,
			ServiceID:                s.ServiceID,
			StaffID:                  s.StaffID,
			Title:                    s.JobTitle,
			Description:              s.JobDescription,
			ScheduledFor:             scheduledFor,
			EstimatedDurationMinutes: s.EstimatedDurationMinutes,
			Status:                   models.JobStatusScheduled,
			RecurringScheduleID:      &s.ID,
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		if err := p.jobRepo.Save(txCtx, job); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		res.JobID = &job.ID

		var invoiceID *uint
		if utils.IsTrue(s.AutoCreateInvoice) {
			invoice, err := p.createInvoice(txCtx, s, job, scheduledFor, now)
			if err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			invoiceID = &invoice.ID
			res.InvoiceID = invoiceID
		}

		history := &models.RecurringJobHistory{
			ScheduleID:   s.ID,
			JobID:        job.ID,
			InvoiceID:    invoiceID,
			ScheduledFor: scheduledFor,
			CreatedAt:    now,
		}
		if err := p.historyRepo.Save(txCtx, history); err != nil {
			return fmt.Errorf("record occurrence history: %w", err)
		}

		s.LastRunDate = &scheduledFor
		s.NextRunDate = newNextRun
		s.TotalJobsCreated++
		if s.EndDate != nil && newNextRun.After(*s.EndDate) {
			s.Status = models.RecurringScheduleStatusCompleted
		}
		s.UpdatedAt = now
		if err := p.schedRepo.Update(txCtx, s); err != nil {
			return fmt.Errorf("advance schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		res.JobID = nil
		res.InvoiceID = nil
		res.Err = err
		return res
	}

	res.Success = !res.AlreadyProcessed
	return res
}

// createInvoice builds an invoice from the schedule's template, copying
// schedule line items when present and falling back to a single line from the
// schedule's amount otherwise.
func (p *RecurringProcessor) createInvoice(ctx context.Context, s *models.RecurringSchedule, job *models.Job, scheduledFor, now time.Time) (*models.Invoice, error) {
	number, err := p.invoiceRepo.NextInvoiceNumber(ctx, s.BusinessID)
	if err != nil {
		return nil, err
	}

	templateItems, err := p.schedRepo.ListItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	var items []models.InvoiceItem
	var subtotal int64
	if len(templateItems) > 0 {
		items = make([]models.InvoiceItem, 0, len(templateItems))
		for i, it := range templateItems {
			items = append(items, models.InvoiceItem{
				Position:       i,
				Description:    it.Description,
				Quantity:       it.Quantity,
				UnitPriceCents: it.UnitPriceCents,
				AmountCents:    it.AmountCents,
			})
			subtotal += it.AmountCents
		}
	} else {
		subtotal = s.InvoiceAmountCents
		items = []models.InvoiceItem{{
			Position:       0,
			Description:    s.JobTitle,
			Quantity:       1,
			UnitPriceCents: s.InvoiceAmountCents,
			AmountCents:    s.InvoiceAmountCents,
		}}
	}

	invoice := &models.Invoice{
		UUID:                uuid.New(),
		BusinessID:          s.BusinessID,
		CustomerID:          s.CustomerID,
		JobID:               &job.ID,
		InvoiceNumber:       number,
		InvoiceDate:         scheduledFor,
		SubtotalCents:       subtotal,
		TaxCents:            s.InvoiceTaxCents,
		TotalCents:          subtotal + s.InvoiceTaxCents,
		Status:              models.InvoiceStatusDraft,
		Notes:               s.InvoiceNotes,
		RecurringScheduleID: &s.ID,
		Items:               items,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := p.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

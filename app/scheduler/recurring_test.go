package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes. The transactor is a pass-through; per-occurrence atomicity
// is covered by the store-level tests against a real database.

type fakeTransactor struct {
	err error
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeScheduleRepo struct {
	schedules []*models.RecurringSchedule
	items     map[uint][]*models.RecurringScheduleItem
	updated   int
}

func (f *fakeScheduleRepo) ByID(_ context.Context, id uint) (*models.RecurringSchedule, error) {
	for _, s := range f.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeScheduleRepo) ByFilter(_ context.Context, _ models.RecurringScheduleFilter, _ string, _, _ int) ([]*models.RecurringSchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleRepo) Save(_ context.Context, s *models.RecurringSchedule) error {
	f.schedules = append(f.schedules, s)
	return nil
}

func (f *fakeScheduleRepo) SaveBatch(_ context.Context, ss []*models.RecurringSchedule) error {
	f.schedules = append(f.schedules, ss...)
	return nil
}

func (f *fakeScheduleRepo) Count(_ context.Context, _ models.RecurringScheduleFilter) (int64, error) {
	return int64(len(f.schedules)), nil
}

func (f *fakeScheduleRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*models.RecurringSchedule, error) {
	var due []*models.RecurringSchedule
	for _, s := range f.schedules {
		if s.Status != models.RecurringScheduleStatusActive {
			continue
		}
		if s.NextRunDate.After(now) {
			continue
		}
		if s.EndDate != nil && s.NextRunDate.After(*s.EndDate) {
			continue
		}
		due = append(due, s)
		if limit > 0 && len(due) >= limit {
			break
		}
	}
	return due, nil
}

func (f *fakeScheduleRepo) ListItems(_ context.Context, scheduleID uint) ([]*models.RecurringScheduleItem, error) {
	return f.items[scheduleID], nil
}

func (f *fakeScheduleRepo) Update(_ context.Context, _ *models.RecurringSchedule) error {
	f.updated++
	return nil
}

func (f *fakeScheduleRepo) UpdateStatus(_ context.Context, scheduleID uint, status models.RecurringScheduleStatus) error {
	for _, s := range f.schedules {
		if s.ID == scheduleID {
			s.Status = status
			return nil
		}
	}
	return fmt.Errorf("schedule %d not found", scheduleID)
}

type fakeHistoryRepo struct {
	rows    []*models.RecurringJobHistory
	saveErr error
}

func (f *fakeHistoryRepo) ByID(_ context.Context, id uint) (*models.RecurringJobHistory, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeHistoryRepo) ByFilter(_ context.Context, _ any, _ string, _, _ int) ([]*models.RecurringJobHistory, error) {
	return f.rows, nil
}

func (f *fakeHistoryRepo) Save(_ context.Context, r *models.RecurringJobHistory) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	r.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeHistoryRepo) SaveBatch(_ context.Context, rs []*models.RecurringJobHistory) error {
	f.rows = append(f.rows, rs...)
	return nil
}

func (f *fakeHistoryRepo) Count(_ context.Context, _ any) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeHistoryRepo) ExistsForOccurrence(_ context.Context, scheduleID uint, scheduledFor time.Time) (bool, error) {
	for _, r := range f.rows {
		if r.ScheduleID == scheduleID && r.ScheduledFor.Equal(scheduledFor) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistoryRepo) ListBySchedule(_ context.Context, scheduleID uint, _, _ int) ([]*models.RecurringJobHistory, error) {
	var out []*models.RecurringJobHistory
	for _, r := range f.rows {
		if r.ScheduleID == scheduleID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs []*models.Job

	// failTitles forces Save to error for jobs with these titles
	failTitles map[string]bool
}

func (f *fakeJobRepo) ByID(_ context.Context, id uint) (*models.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRepo) ByFilter(_ context.Context, _ models.JobFilter, _ string, _, _ int) ([]*models.Job, error) {
	return f.jobs, nil
}

func (f *fakeJobRepo) Save(_ context.Context, j *models.Job) error {
	if f.failTitles[j.Title] {
		return fmt.Errorf("insert failed for %q", j.Title)
	}
	j.ID = uint(len(f.jobs) + 1)
	f.jobs = append(f.jobs, j)
	return nil
}

func (f *fakeJobRepo) SaveBatch(_ context.Context, js []*models.Job) error {
	f.jobs = append(f.jobs, js...)
	return nil
}

func (f *fakeJobRepo) Count(_ context.Context, _ models.JobFilter) (int64, error) {
	return int64(len(f.jobs)), nil
}

func (f *fakeJobRepo) ListBySchedule(_ context.Context, scheduleID uint) ([]*models.Job, error) {
	var out []*models.Job
	for _, j := range f.jobs {
		if j.RecurringScheduleID != nil && *j.RecurringScheduleID == scheduleID {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeInvoiceRepo struct {
	invoices []*models.Invoice
}

func (f *fakeInvoiceRepo) ByID(_ context.Context, id uint) (*models.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) ByFilter(_ context.Context, _ models.InvoiceFilter, _ string, _, _ int) ([]*models.Invoice, error) {
	return f.invoices, nil
}

func (f *fakeInvoiceRepo) Save(_ context.Context, inv *models.Invoice) error {
	inv.ID = uint(len(f.invoices) + 1)
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeInvoiceRepo) SaveBatch(_ context.Context, invs []*models.Invoice) error {
	f.invoices = append(f.invoices, invs...)
	return nil
}

func (f *fakeInvoiceRepo) Count(_ context.Context, _ models.InvoiceFilter) (int64, error) {
	return int64(len(f.invoices)), nil
}

func (f *fakeInvoiceRepo) NextInvoiceNumber(_ context.Context, businessID uint) (string, error) {
	return fmt.Sprintf("INV-%d-%05d", businessID, len(f.invoices)+1), nil
}

func newTestProcessor(schedRepo *fakeScheduleRepo) (*RecurringProcessor, *fakeHistoryRepo, *fakeJobRepo, *fakeInvoiceRepo) {
	historyRepo := &fakeHistoryRepo{}
	jobRepo := &fakeJobRepo{}
	invoiceRepo := &fakeInvoiceRepo{}
	p := NewRecurringProcessor(schedRepo, historyRepo, jobRepo, invoiceRepo, &fakeTransactor{}, nil, 0)
	return p, historyRepo, jobRepo, invoiceRepo
}

func weeklySchedule(id uint, nextRun time.Time) *models.RecurringSchedule {
	return &models.RecurringSchedule{
		ID:                 id,
		BusinessID:         1,
		CustomerID:         10,
		Frequency:          models.RecurringFrequencyWeekly,
		RepeatInterval:     1,
		StartDate:          nextRun.AddDate(0, -1, 0),
		NextRunDate:        nextRun,
		Status:             models.RecurringScheduleStatusActive,
		JobTitle:           "Weekly lawn maintenance",
		AutoCreateInvoice:  utils.ToPtr(true),
		InvoiceAmountCents: 7500,
		InvoiceTaxCents:    600,
	}
}

func TestProcessDueSchedules_CreatesJobInvoiceAndHistory(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, historyRepo, jobRepo, invoiceRepo := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 1)
	res := results[0]
	assert.True(t, res.Success)
	assert.False(t, res.AlreadyProcessed)
	require.NotNil(t, res.JobID)
	require.NotNil(t, res.InvoiceID)

	require.Len(t, jobRepo.jobs, 1)
	job := jobRepo.jobs[0]
	assert.Equal(t, "Weekly lawn maintenance", job.Title)
	assert.Equal(t, models.JobStatusScheduled, job.Status)
	assert.True(t, job.ScheduledFor.Equal(now))
	require.NotNil(t, job.RecurringScheduleID)
	assert.Equal(t, uint(1), *job.RecurringScheduleID)

	require.Len(t, invoiceRepo.invoices, 1)
	inv := invoiceRepo.invoices[0]
	assert.Equal(t, "INV-1-00001", inv.InvoiceNumber)
	assert.Equal(t, int64(7500), inv.SubtotalCents)
	assert.Equal(t, int64(8100), inv.TotalCents)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Weekly lawn maintenance", inv.Items[0].Description)

	require.Len(t, historyRepo.rows, 1)
	assert.Equal(t, uint(1), historyRepo.rows[0].ScheduleID)
	assert.True(t, historyRepo.rows[0].ScheduledFor.Equal(now))

	// Schedule advanced one week and counted the occurrence
	assert.True(t, s.NextRunDate.Equal(now.AddDate(0, 0, 7)))
	require.NotNil(t, s.LastRunDate)
	assert.True(t, s.LastRunDate.Equal(now))
	assert.Equal(t, 1, s.TotalJobsCreated)
	assert.Equal(t, models.RecurringScheduleStatusActive, s.Status)
	assert.Equal(t, 1, schedRepo.updated)
}

func TestProcessDueSchedules_InvoiceCopiesTemplateItems(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	schedRepo := &fakeScheduleRepo{
		schedules: []*models.RecurringSchedule{s},
		items: map[uint][]*models.RecurringScheduleItem{
			1: {
				{ScheduleID: 1, Position: 0, Description: "Mowing", Quantity: 1, UnitPriceCents: 5000, AmountCents: 5000},
				{ScheduleID: 1, Position: 1, Description: "Edging", Quantity: 2, UnitPriceCents: 1500, AmountCents: 3000},
			},
		},
	}
	p, _, _, invoiceRepo := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 1)
	require.True(t, results[0].Success)

	require.Len(t, invoiceRepo.invoices, 1)
	inv := invoiceRepo.invoices[0]
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Mowing", inv.Items[0].Description)
	assert.Equal(t, "Edging", inv.Items[1].Description)
	// Items win over the schedule's flat amount
	assert.Equal(t, int64(8000), inv.SubtotalCents)
	assert.Equal(t, int64(8600), inv.TotalCents)
}

func TestProcessDueSchedules_SkipsWithoutInvoiceWhenDisabled(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	s.AutoCreateInvoice = utils.ToPtr(false)
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, historyRepo, jobRepo, invoiceRepo := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Nil(t, results[0].InvoiceID)
	assert.Len(t, jobRepo.jobs, 1)
	assert.Empty(t, invoiceRepo.invoices)
	require.Len(t, historyRepo.rows, 1)
	assert.Nil(t, historyRepo.rows[0].InvoiceID)
}

func TestProcessDueSchedules_SecondRunForSameOccurrenceIsIdempotent(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, historyRepo, jobRepo, _ := newTestProcessor(schedRepo)

	first := p.ProcessDueSchedules(context.Background(), now)
	require.Len(t, first, 1)
	require.True(t, first[0].Success)

	// Roll the pointer back to simulate a stale instance revisiting the same
	// occurrence.
	s.NextRunDate = now
	second := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, second, 1)
	assert.True(t, second[0].AlreadyProcessed)
	assert.False(t, second[0].Success)
	assert.Nil(t, second[0].JobID)
	assert.Len(t, jobRepo.jobs, 1, "no duplicate job")
	assert.Len(t, historyRepo.rows, 1, "no duplicate history row")
}

func TestProcessDueSchedules_CompletesWhenNextRunPassesEndDate(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	s.EndDate = utils.ToPtr(date(2024, time.June, 10))
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, _, jobRepo, _ := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Len(t, jobRepo.jobs, 1, "final occurrence still materializes")
	assert.Equal(t, models.RecurringScheduleStatusCompleted, s.Status)
}

func TestProcessDueSchedules_FailureIsolatedPerSchedule(t *testing.T) {
	now := date(2024, time.June, 5)
	bad := weeklySchedule(1, now)
	bad.JobTitle = "boom"
	good := weeklySchedule(2, now)
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{bad, good}}

	historyRepo := &fakeHistoryRepo{}
	jobRepo := &fakeJobRepo{failTitles: map[string]bool{"boom": true}}
	invoiceRepo := &fakeInvoiceRepo{}
	p := NewRecurringProcessor(schedRepo, historyRepo, jobRepo, invoiceRepo, &fakeTransactor{}, nil, 0)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	require.Error(t, results[0].Err)
	assert.True(t, results[1].Success, "second schedule processed despite first failing")

	require.Len(t, jobRepo.jobs, 1)
	assert.Equal(t, uint(2), *jobRepo.jobs[0].RecurringScheduleID)

	// Failed schedule keeps its pointer so the next pass retries
	assert.True(t, bad.NextRunDate.Equal(now))
	assert.Equal(t, 0, bad.TotalJobsCreated)
}

func TestProcessDueSchedules_MisconfiguredCadenceFailsWithoutWrites(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	s.RepeatInterval = 0
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, historyRepo, jobRepo, invoiceRepo := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.ErrorIs(t, results[0].Err, ErrInvalidInterval)
	assert.Empty(t, jobRepo.jobs)
	assert.Empty(t, invoiceRepo.invoices)
	assert.Empty(t, historyRepo.rows)
}

func TestProcessDueSchedules_NothingDue(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now.AddDate(0, 0, 3))
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, _, jobRepo, _ := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	assert.Empty(t, results)
	assert.Empty(t, jobRepo.jobs)
}

func TestProcessDueSchedules_PausedScheduleNeverDue(t *testing.T) {
	now := date(2024, time.June, 5)
	s := weeklySchedule(1, now)
	s.Status = models.RecurringScheduleStatusPaused
	schedRepo := &fakeScheduleRepo{schedules: []*models.RecurringSchedule{s}}
	p, _, jobRepo, _ := newTestProcessor(schedRepo)

	results := p.ProcessDueSchedules(context.Background(), now)

	assert.Empty(t, results)
	assert.Empty(t, jobRepo.jobs)
}

package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/services"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBusinessRepo struct {
	businesses []*models.Business
}

func (f *fakeBusinessRepo) ByID(_ context.Context, id uint) (*models.Business, error) {
	for _, b := range f.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBusinessRepo) ByFilter(_ context.Context, _ models.BusinessFilter, _ string, _, _ int) ([]*models.Business, error) {
	return f.businesses, nil
}

func (f *fakeBusinessRepo) Save(_ context.Context, b *models.Business) error {
	f.businesses = append(f.businesses, b)
	return nil
}

func (f *fakeBusinessRepo) SaveBatch(_ context.Context, bs []*models.Business) error {
	f.businesses = append(f.businesses, bs...)
	return nil
}

func (f *fakeBusinessRepo) Count(_ context.Context, _ models.BusinessFilter) (int64, error) {
	return int64(len(f.businesses)), nil
}

func (f *fakeBusinessRepo) ByUUID(_ context.Context, u string) (*models.Business, error) {
	for _, b := range f.businesses {
		if b.UUID.String() == u {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBusinessRepo) ListActive(_ context.Context) ([]*models.Business, error) {
	var out []*models.Business
	for _, b := range f.businesses {
		if b.Status == models.BusinessStatusActive {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments []*models.Appointment
	markErr      error
}

func (f *fakeAppointmentRepo) ByID(_ context.Context, id uint) (*models.Appointment, error) {
	for _, a := range f.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) ByFilter(_ context.Context, _ models.AppointmentFilter, _ string, _, _ int) ([]*models.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAppointmentRepo) Save(_ context.Context, a *models.Appointment) error {
	f.appointments = append(f.appointments, a)
	return nil
}

func (f *fakeAppointmentRepo) SaveBatch(_ context.Context, as []*models.Appointment) error {
	f.appointments = append(f.appointments, as...)
	return nil
}

func (f *fakeAppointmentRepo) Count(_ context.Context, _ models.AppointmentFilter) (int64, error) {
	return int64(len(f.appointments)), nil
}

func (f *fakeAppointmentRepo) ListNeedingReminder(_ context.Context, businessID uint, now time.Time, lead time.Duration) ([]*models.Appointment, error) {
	cutoff := now.Add(lead)
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.BusinessID != businessID || a.ReminderSent() {
			continue
		}
		if a.Status != models.AppointmentStatusScheduled && a.Status != models.AppointmentStatusConfirmed {
			continue
		}
		if a.StartDate.Before(now) || a.StartDate.After(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) MarkReminded(_ context.Context, appointmentID uint, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, a := range f.appointments {
		if a.ID == appointmentID {
			a.ReminderSentAt = &at
			return nil
		}
	}
	return fmt.Errorf("appointment %d not found", appointmentID)
}

type fakeCustomerRepo struct {
	customers []*models.Customer
}

func (f *fakeCustomerRepo) ByID(_ context.Context, id uint) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) ByFilter(_ context.Context, _ models.CustomerFilter, _ string, _, _ int) ([]*models.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomerRepo) Save(_ context.Context, c *models.Customer) error {
	f.customers = append(f.customers, c)
	return nil
}

func (f *fakeCustomerRepo) SaveBatch(_ context.Context, cs []*models.Customer) error {
	f.customers = append(f.customers, cs...)
	return nil
}

func (f *fakeCustomerRepo) Count(_ context.Context, _ models.CustomerFilter) (int64, error) {
	return int64(len(f.customers)), nil
}

func (f *fakeCustomerRepo) ListByBusiness(_ context.Context, businessID uint, _, _ int) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range f.customers {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

type reminderFixture struct {
	dispatcher      *ReminderDispatcher
	businessRepo    *fakeBusinessRepo
	appointmentRepo *fakeAppointmentRepo
	customerRepo    *fakeCustomerRepo
	sms             *services.MockSMSService
	email           *services.MockEmailProvider
}

func newReminderFixture() *reminderFixture {
	businessRepo := &fakeBusinessRepo{
		businesses: []*models.Business{{
			ID:       1,
			UUID:     uuid.New(),
			Name:     "Ace Plumbing",
			Timezone: "UTC",
			Status:   models.BusinessStatusActive,
		}},
	}
	appointmentRepo := &fakeAppointmentRepo{}
	customerRepo := &fakeCustomerRepo{}
	sms := services.NewMockSMSService()
	email := services.NewMockEmailProvider()
	notifier := services.NewNotificationService(sms, email)

	return &reminderFixture{
		dispatcher:      NewReminderDispatcher(businessRepo, appointmentRepo, customerRepo, notifier, nil, 24*time.Hour),
		businessRepo:    businessRepo,
		appointmentRepo: appointmentRepo,
		customerRepo:    customerRepo,
		sms:             sms,
		email:           email,
	}
}

func (fx *reminderFixture) addCustomer(id uint, phone, email *string) {
	fx.customerRepo.customers = append(fx.customerRepo.customers, &models.Customer{
		ID:         id,
		BusinessID: 1,
		FirstName:  "Jane",
		LastName:   "Smith",
		Phone:      phone,
		Email:      email,
	})
}

func (fx *reminderFixture) addAppointment(id, customerID uint, start time.Time) *models.Appointment {
	a := &models.Appointment{
		ID:         id,
		BusinessID: 1,
		CustomerID: customerID,
		StartDate:  start,
		EndDate:    start.Add(time.Hour),
		Status:     models.AppointmentStatusScheduled,
	}
	fx.appointmentRepo.appointments = append(fx.appointmentRepo.appointments, a)
	return a
}

func TestSendUpcomingReminders_SMSPreferred(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.addCustomer(10, utils.ToPtr("+15551234567"), utils.ToPtr("jane@example.com"))
	appt := fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeSent, results[0].Outcome)
	assert.Equal(t, "sms", results[0].Channel)

	msgs := fx.sms.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+15551234567", msgs[0].Recipient)
	assert.Contains(t, msgs[0].Message, "Jane")
	assert.Contains(t, msgs[0].Message, "Ace Plumbing")
	assert.Empty(t, fx.email.Sent, "email not used when SMS succeeds")

	assert.True(t, appt.ReminderSent())
}

func TestSendUpcomingReminders_EmailFallback(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.addCustomer(10, nil, utils.ToPtr("jane@example.com"))
	appt := fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeSent, results[0].Outcome)
	assert.Equal(t, "email", results[0].Channel)
	require.Len(t, fx.email.Sent, 1)
	assert.Equal(t, "jane@example.com", fx.email.Sent[0].Recipient)
	assert.True(t, appt.ReminderSent())
}

func TestSendUpcomingReminders_NoContactSkipped(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.addCustomer(10, nil, nil)
	appt := fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeSkipped, results[0].Outcome)
	assert.False(t, appt.ReminderSent(), "skipped appointments stay unmarked")
}

func TestSendUpcomingReminders_DeliveryFailureLeavesMarkerUnset(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.sms.FailFor = map[string]bool{"+15551234567": true}
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	appt := fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeFailed, results[0].Outcome)
	require.Error(t, results[0].Err)
	assert.False(t, appt.ReminderSent(), "failed delivery leaves the appointment eligible for retry")
}

func TestSendUpcomingReminders_FailureIsolatedPerAppointment(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.sms.FailFor = map[string]bool{"+15550000001": true}
	fx.addCustomer(10, utils.ToPtr("+15550000001"), nil)
	fx.addCustomer(11, utils.ToPtr("+15550000002"), nil)
	fx.addAppointment(100, 10, now.Add(2*time.Hour))
	good := fx.addAppointment(101, 11, now.Add(3*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 2)
	assert.Equal(t, ReminderOutcomeFailed, results[0].Outcome)
	assert.Equal(t, ReminderOutcomeSent, results[1].Outcome)
	assert.True(t, good.ReminderSent())
}

func TestSendUpcomingReminders_AlreadyRemindedNotRepeated(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	fx.addAppointment(100, 10, now.Add(6*time.Hour))

	first := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)
	require.Len(t, first, 1)
	require.Equal(t, ReminderOutcomeSent, first[0].Outcome)

	second := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)
	assert.Empty(t, second, "reminded appointments drop out of the window query")
	assert.Len(t, fx.sms.Messages(), 1)
}

func TestSendUpcomingReminders_OutsideLeadWindowIgnored(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	fx.addAppointment(100, 10, now.Add(48*time.Hour)) // beyond 24h lead
	fx.addAppointment(101, 10, now.Add(-time.Hour))   // already started

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	assert.Empty(t, results)
	assert.Empty(t, fx.sms.Messages())
}

func TestSendUpcomingReminders_BusinessLeadOverride(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.businessRepo.businesses[0].ReminderLeadHours = utils.ToPtr(72)
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	fx.addAppointment(100, 10, now.Add(48*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeSent, results[0].Outcome)
}

func TestSendUpcomingReminders_InactiveBusinessSkipped(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.businessRepo.businesses[0].Status = models.BusinessStatusSuspended
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	assert.Empty(t, results)
	assert.Empty(t, fx.sms.Messages())
}

func TestSendUpcomingReminders_MarkRemindedFailureReportedAsFailed(t *testing.T) {
	now := date(2024, time.June, 5)
	fx := newReminderFixture()
	fx.appointmentRepo.markErr = fmt.Errorf("connection reset")
	fx.addCustomer(10, utils.ToPtr("+15551234567"), nil)
	fx.addAppointment(100, 10, now.Add(6*time.Hour))

	results := fx.dispatcher.SendUpcomingReminders(context.Background(), 1, now)

	require.Len(t, results, 1)
	assert.Equal(t, ReminderOutcomeFailed, results[0].Outcome)
}

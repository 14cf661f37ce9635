package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestBusiness creates an active business with a unique name
func (tf *TestFixtures) CreateTestBusiness() (*models.Business, error) {
	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)
	business := &models.Business{
		UUID:     uuid.New(),
		Name:     fmt.Sprintf("Test Plumbing Co %s", suffix),
		Phone:    utils.ToPtr(fmt.Sprintf("+1555%s", suffix)),
		Email:    utils.ToPtr(fmt.Sprintf("owner.%s@example.com", suffix)),
		Timezone: "America/New_York",
		Status:   models.BusinessStatusActive,
	}
	if err := tf.DB.DB.Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to create test business: %w", err)
	}
	return business, nil
}

// CreateTestCustomer creates a customer for the business with both phone and email
func (tf *TestFixtures) CreateTestCustomer(businessID uint) (*models.Customer, error) {
	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)
	customer := &models.Customer{
		BusinessID: businessID,
		FirstName:  "Jane",
		LastName:   "Smith",
		Phone:      utils.ToPtr(fmt.Sprintf("+1444%s", suffix)),
		Email:      utils.ToPtr(fmt.Sprintf("jane.smith.%s@example.com", suffix)),
	}
	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateTestAppointment creates a scheduled appointment starting at the given time
func (tf *TestFixtures) CreateTestAppointment(businessID, customerID uint, start time.Time) (*models.Appointment, error) {
	appointment := &models.Appointment{
		BusinessID: businessID,
		CustomerID: customerID,
		StartDate:  start,
		EndDate:    start.Add(time.Hour),
		Status:     models.AppointmentStatusScheduled,
	}
	if err := tf.DB.DB.Create(appointment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test appointment: %w", err)
	}
	return appointment, nil
}

// CreateTestRecurringSchedule creates an active weekly schedule due at nextRun
func (tf *TestFixtures) CreateTestRecurringSchedule(businessID, customerID uint, nextRun time.Time) (*models.RecurringSchedule, error) {
	schedule := &models.RecurringSchedule{
		BusinessID:         businessID,
		CustomerID:         customerID,
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
	if err := tf.DB.DB.Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test recurring schedule: %w", err)
	}
	return schedule, nil
}

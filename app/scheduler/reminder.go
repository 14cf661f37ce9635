package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/services"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/repository"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
)

// ReminderOutcome classifies what happened to one appointment during a
// dispatch pass
type ReminderOutcome string

const (
	ReminderOutcomeSent    ReminderOutcome = "sent"
	ReminderOutcomeSkipped ReminderOutcome = "skipped"
	ReminderOutcomeFailed  ReminderOutcome = "failed"
)

// ReminderResult reports the outcome of one appointment reminder attempt
type ReminderResult struct {
	AppointmentID uint
	Outcome       ReminderOutcome
	Channel       string // "sms" or "email" when sent
	Err           error
}

// ReminderDispatcher sends upcoming-appointment reminders for a single
// business. Each appointment is handled independently; a delivery failure
// leaves the appointment eligible for the next pass.
type ReminderDispatcher struct {
	businessRepo    repository.BusinessRepository
	appointmentRepo repository.AppointmentRepository
	customerRepo    repository.CustomerRepository
	notifier        services.NotificationService
	logger          *log.Logger
	defaultLead     time.Duration
}

func NewReminderDispatcher(
	businessRepo repository.BusinessRepository,
	appointmentRepo repository.AppointmentRepository,
	customerRepo repository.CustomerRepository,
	notifier services.NotificationService,
	logger *log.Logger,
	defaultLead time.Duration,
) *ReminderDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	if defaultLead <= 0 {
		defaultLead = time.Duration(utils.DefaultReminderLeadHours) * time.Hour
	}
	return &ReminderDispatcher{
		businessRepo:    businessRepo,
		appointmentRepo: appointmentRepo,
		customerRepo:    customerRepo,
		notifier:        notifier,
		logger:          logger,
		defaultLead:     defaultLead,
	}
}

// SendUpcomingReminders dispatches reminders for every appointment of the
// business starting within the lead window. The business's own lead-hours
// setting overrides the dispatcher default when present.
func (d *ReminderDispatcher) SendUpcomingReminders(ctx context.Context, businessID uint, now time.Time) []ReminderResult {
	business, err := d.businessRepo.ByID(ctx, businessID)
	if err != nil {
		d.logger.Printf("reminders: load business id=%d failed: %v", businessID, err)
		return nil
	}
	if business == nil {
		d.logger.Printf("reminders: business id=%d not found", businessID)
		return nil
	}
	if business.Status != models.BusinessStatusActive {
		d.logger.Printf("reminders: business id=%d is %s, skipping", businessID, business.Status)
		return nil
	}

	lead := d.defaultLead
	if business.ReminderLeadHours != nil && *business.ReminderLeadHours > 0 {
		lead = time.Duration(*business.ReminderLeadHours) * time.Hour
	}

	appointments, err := d.appointmentRepo.ListNeedingReminder(ctx, businessID, now, lead)
	if err != nil {
		d.logger.Printf("reminders: list appointments for business id=%d failed: %v", businessID, err)
		return nil
	}
	if len(appointments) == 0 {
		return nil
	}
	d.logger.Printf("reminders: business id=%d has %d appointments in the next %s", businessID, len(appointments), lead)

	results := make([]ReminderResult, 0, len(appointments))
	for _, appt := range appointments {
		res := d.remind(ctx, business, appt, now)
		remindersTotal.WithLabelValues(string(res.Outcome)).Inc()
		switch res.Outcome {
		case ReminderOutcomeSent:
			d.logger.Printf("reminders: appointment id=%d reminded via %s", appt.ID, res.Channel)
		case ReminderOutcomeSkipped:
			d.logger.Printf("reminders: appointment id=%d skipped: %v", appt.ID, res.Err)
		case ReminderOutcomeFailed:
			d.logger.Printf("reminders: appointment id=%d failed: %v", appt.ID, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// remind attempts delivery for one appointment. The reminded marker is only
// set after a successful send, so transient delivery failures retry on the
// next pass.
func (d *ReminderDispatcher) remind(ctx context.Context, business *models.Business, appt *models.Appointment, now time.Time) ReminderResult {
	res := ReminderResult{AppointmentID: appt.ID}

	customer, err := d.customerRepo.ByID(ctx, appt.CustomerID)
	if err != nil {
		res.Outcome = ReminderOutcomeFailed
		res.Err = fmt.Errorf("load customer: %w", err)
		return res
	}
	if customer == nil {
		res.Outcome = ReminderOutcomeSkipped
		res.Err = fmt.Errorf("customer id=%d not found", appt.CustomerID)
		return res
	}

	message := renderReminderMessage(business, customer, appt)

	switch {
	case customer.Phone != nil && strings.TrimSpace(*customer.Phone) != "":
		if err := d.notifier.SendSMS(ctx, *customer.Phone, message); err != nil {
			res.Outcome = ReminderOutcomeFailed
			res.Err = fmt.Errorf("send sms: %w", err)
			return res
		}
		res.Channel = "sms"
	case customer.Email != nil && strings.TrimSpace(*customer.Email) != "":
		subject := fmt.Sprintf("Appointment reminder from %s", business.Name)
		if err := d.notifier.SendEmail(ctx, *customer.Email, subject, message); err != nil {
			res.Outcome = ReminderOutcomeFailed
			res.Err = fmt.Errorf("send email: %w", err)
			return res
		}
		res.Channel = "email"
	default:
		res.Outcome = ReminderOutcomeSkipped
		res.Err = fmt.Errorf("customer id=%d has no phone or email", customer.ID)
		return res
	}

	if err := d.appointmentRepo.MarkReminded(ctx, appt.ID, now); err != nil {
		// Delivery happened but the marker write failed; surface as failure so
		// operators can spot possible duplicate reminders on the next pass.
		res.Outcome = ReminderOutcomeFailed
		res.Err = fmt.Errorf("mark reminded: %w", err)
		return res
	}

	res.Outcome = ReminderOutcomeSent
	return res
}

// renderReminderMessage formats the reminder in the appointment's local time
// when the business timezone is resolvable, UTC otherwise.
func renderReminderMessage(business *models.Business, customer *models.Customer, appt *models.Appointment) string {
	when := appt.StartDate
	if loc, err := time.LoadLocation(business.Timezone); err == nil {
		when = when.In(loc)
	}
	return fmt.Sprintf(
		"Hi %s, this is a reminder of your appointment with %s on %s at %s. Reply or call us if you need to reschedule.",
		customer.FirstName,
		business.Name,
		when.Format("Monday, January 2"),
		when.Format("3:04 PM"),
	)
}

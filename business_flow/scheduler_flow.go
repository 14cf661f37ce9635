package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/dto"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/scheduler"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/config"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/repository"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/redis/go-redis/v9"
)

// SchedulerFlow defines the operational surface of the scheduling engine:
// status inspection, manual runs, and schedule pause/resume.
type SchedulerFlow interface {
	Status(ctx context.Context) (*dto.SchedulerStatusResponse, error)
	RunRecurringNow(ctx context.Context) (*dto.RunRecurringResponse, error)
	RunRemindersNow(ctx context.Context, businessID uint) (*dto.RunRemindersResponse, error)
	PauseSchedule(ctx context.Context, scheduleID uint) (*dto.UpdateScheduleStatusResponse, error)
	ResumeSchedule(ctx context.Context, scheduleID uint) (*dto.UpdateScheduleStatusResponse, error)
}

// SchedulerFlowImpl implements SchedulerFlow.
type SchedulerFlowImpl struct {
	supervisor   *scheduler.Supervisor
	recurring    *scheduler.RecurringProcessor
	reminders    *scheduler.ReminderDispatcher
	schedRepo    repository.RecurringScheduleRepository
	businessRepo repository.BusinessRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
	schedConfig  *config.SchedulerConfig
}

// NewSchedulerFlow creates a new scheduler flow.
func NewSchedulerFlow(
	supervisor *scheduler.Supervisor,
	recurring *scheduler.RecurringProcessor,
	reminders *scheduler.ReminderDispatcher,
	schedRepo repository.RecurringScheduleRepository,
	businessRepo repository.BusinessRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	schedConfig *config.SchedulerConfig,
) SchedulerFlow {
	return &SchedulerFlowImpl{
		supervisor:   supervisor,
		recurring:    recurring,
		reminders:    reminders,
		schedRepo:    schedRepo,
		businessRepo: businessRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
		schedConfig:  schedConfig,
	}
}

func (f *SchedulerFlowImpl) statusCacheKey() string {
	prefix := "smallbizagent"
	if f.cacheConfig != nil && f.cacheConfig.RedisPrefix != "" {
		prefix = f.cacheConfig.RedisPrefix
	}
	return prefix + ":scheduler:status"
}

// Status reports the running timers. The response is cached briefly so a
// polling dashboard does not hit the registry mutex on every request.
func (f *SchedulerFlowImpl) Status(ctx context.Context) (*dto.SchedulerStatusResponse, error) {
	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, f.statusCacheKey()).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.SchedulerStatusResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	keys := f.supervisor.Keys()
	resp := &dto.SchedulerStatusResponse{
		Enabled:     f.schedConfig.Enabled,
		ActiveCount: len(keys),
		Timers:      keys,
		GeneratedAt: utils.UTCNowRFC3339(),
	}

	if f.rc != nil && f.cacheConfig != nil && f.cacheConfig.StatusTTL > 0 {
		if bs, err := json.Marshal(resp); err == nil {
			_ = f.rc.Set(ctx, f.statusCacheKey(), bs, f.cacheConfig.StatusTTL).Err()
		}
	}
	return resp, nil
}

// RunRecurringNow executes one recurring-schedule pass outside the timer.
// Safe to call while the timer is running because occurrence history makes
// each occurrence idempotent.
func (f *SchedulerFlowImpl) RunRecurringNow(ctx context.Context) (*dto.RunRecurringResponse, error) {
	results := f.recurring.ProcessDueSchedules(ctx, utils.UTCNow())

	resp := &dto.RunRecurringResponse{
		Message:   "Recurring schedule pass completed",
		Processed: len(results),
		Results:   make([]dto.RecurringRunResult, 0, len(results)),
	}
	for _, r := range results {
		item := dto.RecurringRunResult{
			ScheduleID:       r.ScheduleID,
			Success:          r.Success,
			AlreadyProcessed: r.AlreadyProcessed,
			JobID:            r.JobID,
			InvoiceID:        r.InvoiceID,
		}
		switch {
		case r.AlreadyProcessed:
			resp.AlreadyProcessed++
		case r.Success:
			resp.Created++
		default:
			resp.Failed++
			if r.Err != nil {
				item.Error = r.Err.Error()
			}
		}
		resp.Results = append(resp.Results, item)
	}
	return resp, nil
}

// RunRemindersNow executes one reminder pass for a business outside the timer.
func (f *SchedulerFlowImpl) RunRemindersNow(ctx context.Context, businessID uint) (*dto.RunRemindersResponse, error) {
	business, err := f.businessRepo.ByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if business == nil {
		return nil, NewBusinessError("BUSINESS_NOT_FOUND", "business not found", ErrBusinessNotFound)
	}
	if business.Status != models.BusinessStatusActive {
		return nil, NewBusinessErrorf("BUSINESS_INACTIVE", "business %d is %s", ErrBusinessInactive, businessID, business.Status)
	}

	results := f.reminders.SendUpcomingReminders(ctx, businessID, utils.UTCNow())

	resp := &dto.RunRemindersResponse{
		Message:    "Reminder pass completed",
		BusinessID: businessID,
		Results:    make([]dto.ReminderRunResult, 0, len(results)),
	}
	for _, r := range results {
		item := dto.ReminderRunResult{
			AppointmentID: r.AppointmentID,
			Outcome:       string(r.Outcome),
			Channel:       r.Channel,
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		switch r.Outcome {
		case scheduler.ReminderOutcomeSent:
			resp.Sent++
		case scheduler.ReminderOutcomeSkipped:
			resp.Skipped++
		case scheduler.ReminderOutcomeFailed:
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp, nil
}

// PauseSchedule moves an active schedule to paused. Paused schedules are
// never selected as due; NextRunDate is left untouched so resuming picks up
// the original cadence.
func (f *SchedulerFlowImpl) PauseSchedule(ctx context.Context, scheduleID uint) (*dto.UpdateScheduleStatusResponse, error) {
	return f.transition(ctx, scheduleID,
		models.RecurringScheduleStatusActive, models.RecurringScheduleStatusPaused,
		"SCHEDULE_NOT_ACTIVE", ErrScheduleNotActive, "Schedule paused")
}

// ResumeSchedule moves a paused schedule back to active. Occurrences that
// fell due while paused materialize one per pass starting with the next one.
func (f *SchedulerFlowImpl) ResumeSchedule(ctx context.Context, scheduleID uint) (*dto.UpdateScheduleStatusResponse, error) {
	return f.transition(ctx, scheduleID,
		models.RecurringScheduleStatusPaused, models.RecurringScheduleStatusActive,
		"SCHEDULE_NOT_PAUSED", ErrScheduleNotPaused, "Schedule resumed")
}

func (f *SchedulerFlowImpl) transition(
	ctx context.Context,
	scheduleID uint,
	from, to models.RecurringScheduleStatus,
	code string, sentinel error, message string,
) (*dto.UpdateScheduleStatusResponse, error) {
	schedule, err := f.schedRepo.ByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if schedule == nil {
		return nil, NewBusinessError("SCHEDULE_NOT_FOUND", "recurring schedule not found", ErrScheduleNotFound)
	}
	if schedule.Status != from {
		return nil, NewBusinessErrorf(code, "schedule %d is %s, expected %s", sentinel, scheduleID, schedule.Status, from)
	}

	if err := f.schedRepo.UpdateStatus(ctx, scheduleID, to); err != nil {
		return nil, fmt.Errorf("update schedule status: %w", err)
	}

	return &dto.UpdateScheduleStatusResponse{
		Message:    message,
		ScheduleID: scheduleID,
		Status:     to.String(),
	}, nil
}

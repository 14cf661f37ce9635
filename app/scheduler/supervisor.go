package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/config"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RecurringTimerKey identifies the single global recurring-schedule timer.
const RecurringTimerKey = "recurring-jobs"

// ReminderTimerKey identifies the per-business reminder timer.
func ReminderTimerKey(businessID uint) string {
	return fmt.Sprintf("reminder-%d", businessID)
}

// NewSchedulerLogger builds the engine's logger, writing to stdout and a
// size-rotated file.
func NewSchedulerLogger(cfg config.LoggingConfig) *log.Logger {
	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	return log.New(io.MultiWriter(os.Stdout, rotator), "[scheduler] ", log.LstdFlags|log.LUTC)
}

// timerHandle identifies one registered timer goroutine. The pointer itself
// distinguishes a timer from a later re-registration under the same key.
type timerHandle struct {
	cancel context.CancelFunc
}

// Supervisor owns every background timer in the engine. Starting a key that
// is already running is a no-op, as is stopping one that is not; all registry
// access is serialized through a single mutex.
type Supervisor struct {
	mu     sync.Mutex
	timers map[string]*timerHandle

	recurring    *RecurringProcessor
	reminders    *ReminderDispatcher
	businessRepo repository.BusinessRepository
	cfg          config.SchedulerConfig
	logger       *log.Logger
}

func NewSupervisor(
	recurring *RecurringProcessor,
	reminders *ReminderDispatcher,
	businessRepo repository.BusinessRepository,
	cfg config.SchedulerConfig,
	logger *log.Logger,
) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		timers:       make(map[string]*timerHandle),
		recurring:    recurring,
		reminders:    reminders,
		businessRepo: businessRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers a timer under key and begins ticking. The task runs once
// immediately, then every interval. Returns false when the key is already
// running.
func (s *Supervisor) Start(ctx context.Context, key string, interval time.Duration, task func(context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.timers[key]; running {
		return false
	}

	timerCtx, cancel := context.WithCancel(ctx)
	handle := &timerHandle{cancel: cancel}
	s.timers[key] = handle
	activeTimers.Inc()
	s.logger.Printf("timer %q started, interval %s", key, interval)

	go s.run(timerCtx, key, handle, interval, task)
	return true
}

// Stop cancels the timer registered under key. Returns false when no such
// timer is running.
func (s *Supervisor) Stop(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, running := s.timers[key]
	if !running {
		return false
	}
	handle.cancel()
	delete(s.timers, key)
	activeTimers.Dec()
	s.logger.Printf("timer %q stopped", key)
	return true
}

// StopAll cancels every running timer.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, handle := range s.timers {
		handle.cancel()
		delete(s.timers, key)
		activeTimers.Dec()
		s.logger.Printf("timer %q stopped", key)
	}
}

// deregister removes the registry entry for a timer goroutine that exited on
// its own, after its owning context was cancelled without Stop. The handle
// check keeps it from touching a newer timer re-registered under the same key.
func (s *Supervisor) deregister(key string, handle *timerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, running := s.timers[key]; running && current == handle {
		delete(s.timers, key)
		activeTimers.Dec()
		s.logger.Printf("timer %q stopped, context cancelled", key)
	}
}

// Running reports whether a timer is registered under key.
func (s *Supervisor) Running(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, running := s.timers[key]
	return running
}

// Keys returns the sorted keys of all running timers.
func (s *Supervisor) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StartAll starts the global recurring timer plus one reminder timer per
// active business.
func (s *Supervisor) StartAll(ctx context.Context) error {
	s.Start(ctx, RecurringTimerKey, s.cfg.RecurringInterval, func(tickCtx context.Context) {
		s.recurring.ProcessDueSchedules(tickCtx, time.Now().UTC())
	})

	businesses, err := s.businessRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active businesses: %w", err)
	}
	for _, b := range businesses {
		s.StartReminderTimer(ctx, b.ID)
	}
	s.logger.Printf("started %d timers", len(s.Keys()))
	return nil
}

// StartReminderTimer starts the reminder timer for one business.
func (s *Supervisor) StartReminderTimer(ctx context.Context, businessID uint) bool {
	return s.Start(ctx, ReminderTimerKey(businessID), s.cfg.ReminderInterval, func(tickCtx context.Context) {
		s.reminders.SendUpcomingReminders(tickCtx, businessID, time.Now().UTC())
	})
}

// run is the timer goroutine: an immediate tick, then one per interval until
// the timer's context is cancelled. Cancellation only stops the loop from
// scheduling further ticks; the task runs with a non-cancellable context so a
// tick already in flight when Stop is called finishes its work.
func (s *Supervisor) run(ctx context.Context, key string, handle *timerHandle, interval time.Duration, task func(context.Context)) {
	defer s.deregister(key, handle)

	tickCtx := context.WithoutCancel(ctx)
	s.tick(tickCtx, key, task)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(tickCtx, key, task)
		}
	}
}

// tick runs one task invocation. A panic is contained here so a bad tick
// never kills the timer or the process.
func (s *Supervisor) tick(ctx context.Context, key string, task func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			tickPanicsTotal.WithLabelValues(key).Inc()
			s.logger.Printf("timer %q tick panicked: %v", key, r)
		}
	}()

	start := time.Now()
	task(ctx)
	tickDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
}

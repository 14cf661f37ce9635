package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/config"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(businessRepo *fakeBusinessRepo) *Supervisor {
	schedRepo := &fakeScheduleRepo{}
	historyRepo := &fakeHistoryRepo{}
	jobRepo := &fakeJobRepo{}
	invoiceRepo := &fakeInvoiceRepo{}
	recurring := NewRecurringProcessor(schedRepo, historyRepo, jobRepo, invoiceRepo, &fakeTransactor{}, nil, 0)

	if businessRepo == nil {
		businessRepo = &fakeBusinessRepo{}
	}
	reminders := NewReminderDispatcher(businessRepo, &fakeAppointmentRepo{}, &fakeCustomerRepo{}, nil, nil, time.Hour)

	cfg := config.SchedulerConfig{
		Enabled:           true,
		RecurringInterval: time.Hour,
		ReminderInterval:  time.Hour,
	}
	return NewSupervisor(recurring, reminders, businessRepo, cfg, nil)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSupervisor_StartIsIdempotent(t *testing.T) {
	s := newTestSupervisor(nil)
	defer s.StopAll()

	var runs atomic.Int32
	task := func(context.Context) { runs.Add(1) }

	assert.True(t, s.Start(context.Background(), "test", time.Hour, task))
	assert.False(t, s.Start(context.Background(), "test", time.Hour, task), "second start of the same key is a no-op")
	assert.True(t, s.Running("test"))
	assert.Equal(t, []string{"test"}, s.Keys())

	waitFor(t, func() bool { return runs.Load() == 1 }, "task never ran")
}

func TestSupervisor_RunsImmediatelyThenOnInterval(t *testing.T) {
	s := newTestSupervisor(nil)
	defer s.StopAll()

	var runs atomic.Int32
	s.Start(context.Background(), "test", 20*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	waitFor(t, func() bool { return runs.Load() >= 3 }, "expected at least an immediate run plus two ticks")
}

func TestSupervisor_Stop(t *testing.T) {
	s := newTestSupervisor(nil)

	var runs atomic.Int32
	s.Start(context.Background(), "test", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	waitFor(t, func() bool { return runs.Load() >= 1 }, "task never ran")

	assert.True(t, s.Stop("test"))
	assert.False(t, s.Stop("test"), "stopping a stopped key is a no-op")
	assert.False(t, s.Running("test"))

	// No further ticks after stop
	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), settled+1, "timer kept ticking after stop")
}

func TestSupervisor_TickPanicDoesNotKillTimer(t *testing.T) {
	s := newTestSupervisor(nil)
	defer s.StopAll()

	var runs atomic.Int32
	s.Start(context.Background(), "test", 10*time.Millisecond, func(context.Context) {
		n := runs.Add(1)
		if n == 1 {
			panic("bad tick")
		}
	})

	waitFor(t, func() bool { return runs.Load() >= 3 }, "timer died after a panicking tick")
	assert.True(t, s.Running("test"))
}

func TestSupervisor_StartAllAndStopAll(t *testing.T) {
	businessRepo := &fakeBusinessRepo{
		businesses: []*models.Business{
			{ID: 1, UUID: uuid.New(), Name: "One", Timezone: "UTC", Status: models.BusinessStatusActive},
			{ID: 2, UUID: uuid.New(), Name: "Two", Timezone: "UTC", Status: models.BusinessStatusActive},
			{ID: 3, UUID: uuid.New(), Name: "Closed", Timezone: "UTC", Status: models.BusinessStatusClosed},
		},
	}
	s := newTestSupervisor(businessRepo)

	require.NoError(t, s.StartAll(context.Background()))

	keys := s.Keys()
	assert.Equal(t, []string{RecurringTimerKey, "reminder-1", "reminder-2"}, keys)
	assert.False(t, s.Running("reminder-3"), "inactive businesses get no timer")

	// StartAll again changes nothing
	require.NoError(t, s.StartAll(context.Background()))
	assert.Len(t, s.Keys(), 3)

	s.StopAll()
	assert.Empty(t, s.Keys())
}

func TestSupervisor_ContextCancelStopsTimers(t *testing.T) {
	s := newTestSupervisor(nil)
	defer s.StopAll()

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	s.Start(ctx, "test", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	waitFor(t, func() bool { return runs.Load() >= 1 }, "task never ran")

	cancel()
	waitFor(t, func() bool { return !s.Running("test") }, "registry entry not cleared after context cancel")

	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), settled+1, "timer kept ticking after context cancel")
	assert.Empty(t, s.Keys())

	// A stale goroutine must not clear a timer re-registered under its key.
	assert.True(t, s.Start(context.Background(), "test", time.Hour, func(context.Context) {}))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, s.Running("test"))
}

func TestSupervisor_StopLetsInFlightTickFinish(t *testing.T) {
	s := newTestSupervisor(nil)

	tickStarted := make(chan struct{})
	stopped := make(chan struct{})
	var tickErr error
	var finished atomic.Bool

	s.Start(context.Background(), "test", time.Hour, func(ctx context.Context) {
		close(tickStarted)
		<-stopped
		tickErr = ctx.Err()
		finished.Store(true)
	})

	<-tickStarted
	assert.True(t, s.Stop("test"))
	close(stopped)

	waitFor(t, func() bool { return finished.Load() }, "in-flight tick never finished")
	assert.NoError(t, tickErr, "in-flight tick saw a cancelled context after stop")
}

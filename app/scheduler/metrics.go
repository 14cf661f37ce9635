package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Occurrences materialized from recurring schedules, by outcome
	recurringOccurrencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recurring_occurrences_total",
			Help: "Total recurring schedule occurrences processed, partitioned by outcome",
		},
		[]string{"outcome"}, // created | already_processed | failed
	)

	// Appointment reminders, by outcome
	remindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_reminders_total",
			Help: "Total appointment reminders dispatched, partitioned by outcome",
		},
		[]string{"outcome"}, // sent | skipped | failed
	)

	// Tick latency per managed timer
	tickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of scheduler tick executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"timer"},
	)

	// Panics recovered at the tick boundary
	tickPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_tick_panics_total",
			Help: "Total panics recovered from scheduler tick executions",
		},
		[]string{"timer"},
	)

	// Currently registered timers
	activeTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_active_timers",
			Help: "Number of timers currently registered with the supervisor",
		},
	)
)

package utils

import (
	"time"
)

// Scheduler defaults
const (
	// DefaultRecurringInterval is how often due recurring schedules are processed
	DefaultRecurringInterval = 1 * time.Hour

	// DefaultReminderInterval is how often each business's reminder timer fires
	DefaultReminderInterval = 1 * time.Hour

	// DefaultReminderLeadHours is how far ahead of an appointment start a
	// reminder becomes eligible to send
	DefaultReminderLeadHours = 24

	// DefaultRecurringBatchLimit bounds the number of due schedules handled per tick
	DefaultRecurringBatchLimit = 100
)

// Invoice constants
const (
	// InvoiceNumberPrefix is prepended to the per-business invoice sequence
	InvoiceNumberPrefix = "INV-"
)

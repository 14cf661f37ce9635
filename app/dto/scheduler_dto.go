package dto

// SchedulerStatusResponse reports which background timers are running
type SchedulerStatusResponse struct {
	Enabled     bool     `json:"enabled"`
	ActiveCount int      `json:"active_count"`
	Timers      []string `json:"timers"`
	GeneratedAt string   `json:"generated_at"`
}

// RunRecurringResponse summarizes one manual recurring-schedule pass
type RunRecurringResponse struct {
	Message          string               `json:"message"`
	Processed        int                  `json:"processed"`
	Created          int                  `json:"created"`
	AlreadyProcessed int                  `json:"already_processed"`
	Failed           int                  `json:"failed"`
	Results          []RecurringRunResult `json:"results,omitempty"`
}

// RecurringRunResult reports one schedule's outcome within a manual pass
type RecurringRunResult struct {
	ScheduleID       uint   `json:"schedule_id"`
	Success          bool   `json:"success"`
	AlreadyProcessed bool   `json:"already_processed"`
	JobID            *uint  `json:"job_id,omitempty"`
	InvoiceID        *uint  `json:"invoice_id,omitempty"`
	Error            string `json:"error,omitempty"`
}

// RunRemindersResponse summarizes one manual reminder pass for a business
type RunRemindersResponse struct {
	Message    string              `json:"message"`
	BusinessID uint                `json:"business_id"`
	Sent       int                 `json:"sent"`
	Skipped    int                 `json:"skipped"`
	Failed     int                 `json:"failed"`
	Results    []ReminderRunResult `json:"results,omitempty"`
}

// ReminderRunResult reports one appointment's outcome within a manual pass
type ReminderRunResult struct {
	AppointmentID uint   `json:"appointment_id"`
	Outcome       string `json:"outcome"`
	Channel       string `json:"channel,omitempty"`
	Error         string `json:"error,omitempty"`
}

// UpdateScheduleStatusResponse confirms a pause or resume
type UpdateScheduleStatusResponse struct {
	Message    string `json:"message"`
	ScheduleID uint   `json:"schedule_id"`
	Status     string `json:"status"`
}

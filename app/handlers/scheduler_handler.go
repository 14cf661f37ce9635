// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/dto"
	businessflow "github.com/TonyIlliano/SmallBizAgent-Final-sub002/business_flow"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/gofiber/fiber/v3"
)

// SchedulerHandlerInterface defines the contract for scheduler handlers.
type SchedulerHandlerInterface interface {
	Status(c fiber.Ctx) error
	RunRecurring(c fiber.Ctx) error
	RunReminders(c fiber.Ctx) error
	PauseSchedule(c fiber.Ctx) error
	ResumeSchedule(c fiber.Ctx) error
}

// SchedulerHandler handles scheduler operations requests.
type SchedulerHandler struct {
	flow businessflow.SchedulerFlow
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(flow businessflow.SchedulerFlow) *SchedulerHandler {
	return &SchedulerHandler{flow: flow}
}

func (h *SchedulerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SchedulerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Status reports which background timers are running.
func (h *SchedulerHandler) Status(c fiber.Ctx) error {
	res, err := h.flow.Status(h.createRequestContext(c, "/api/v1/scheduler/status"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read scheduler status", "SCHEDULER_STATUS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Scheduler status retrieved", res)
}

// RunRecurring triggers one recurring-schedule pass immediately.
func (h *SchedulerHandler) RunRecurring(c fiber.Ctx) error {
	res, err := h.flow.RunRecurringNow(h.createRequestContextWithTimeout(c, "/api/v1/scheduler/recurring/run", 5*time.Minute))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Recurring schedule pass failed", "RECURRING_RUN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Recurring schedule pass completed", res)
}

// RunReminders triggers one reminder pass for a business immediately.
func (h *SchedulerHandler) RunReminders(c fiber.Ctx) error {
	businessID, err := h.uintParam(c, "businessId")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid business ID", "INVALID_BUSINESS_ID", err.Error())
	}

	res, err := h.flow.RunRemindersNow(h.createRequestContextWithTimeout(c, "/api/v1/scheduler/reminders/run", 5*time.Minute), businessID)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "BUSINESS_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Business not found", be.Code, be.Error())
			case "BUSINESS_INACTIVE":
				return h.ErrorResponse(c, fiber.StatusConflict, "Business is not active", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Reminder pass failed", "REMINDER_RUN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Reminder pass completed", res)
}

// PauseSchedule pauses an active recurring schedule.
func (h *SchedulerHandler) PauseSchedule(c fiber.Ctx) error {
	scheduleID, err := h.uintParam(c, "scheduleId")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid schedule ID", "INVALID_SCHEDULE_ID", err.Error())
	}

	res, err := h.flow.PauseSchedule(h.createRequestContext(c, "/api/v1/scheduler/schedules/pause"), scheduleID)
	if err != nil {
		return h.scheduleTransitionError(c, err, "Failed to pause schedule", "SCHEDULE_PAUSE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Schedule paused", res)
}

// ResumeSchedule resumes a paused recurring schedule.
func (h *SchedulerHandler) ResumeSchedule(c fiber.Ctx) error {
	scheduleID, err := h.uintParam(c, "scheduleId")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid schedule ID", "INVALID_SCHEDULE_ID", err.Error())
	}

	res, err := h.flow.ResumeSchedule(h.createRequestContext(c, "/api/v1/scheduler/schedules/resume"), scheduleID)
	if err != nil {
		return h.scheduleTransitionError(c, err, "Failed to resume schedule", "SCHEDULE_RESUME_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Schedule resumed", res)
}

func (h *SchedulerHandler) scheduleTransitionError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "SCHEDULE_NOT_FOUND":
			return h.ErrorResponse(c, fiber.StatusNotFound, "Schedule not found", be.Code, be.Error())
		case "SCHEDULE_NOT_ACTIVE", "SCHEDULE_NOT_PAUSED":
			return h.ErrorResponse(c, fiber.StatusConflict, "Schedule is not in the required state", be.Code, be.Error())
		}
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *SchedulerHandler) uintParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (h *SchedulerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SchedulerHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

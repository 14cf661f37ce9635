// Package businessflow contains the core business logic and use cases for the scheduling engine
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	ErrBusinessNotFound  = errors.New("business not found")
	ErrBusinessInactive  = errors.New("business is not active")
	ErrScheduleNotFound  = errors.New("recurring schedule not found")
	ErrScheduleNotPaused = errors.New("recurring schedule is not paused")
	ErrScheduleNotActive = errors.New("recurring schedule is not active")
	ErrSchedulerDisabled = errors.New("scheduler is disabled")
	ErrCacheNotAvailable = errors.New("cache not available")
)

// BusinessError represents a business logic error with a code
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsBusinessNotFound(err error) bool {
	return errors.Is(err, ErrBusinessNotFound)
}

func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

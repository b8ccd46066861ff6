package errors

import "fmt"

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrInvalidCursor      = fmt.Errorf("invalid cursor")
	ErrRetryInProgress    = fmt.Errorf("retry already in progress")
	ErrRetryLimitExceeded = fmt.Errorf("retry limit exceeded")
	ErrUnavailable        = fmt.Errorf("service unavailable")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

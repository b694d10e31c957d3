package booking

import "fmt"

// Conflict reasons surfaced to callers so they know which rule rejected the
// request.
const (
	ReasonNoWorkingDay = "no working day"
	ReasonOutsideShift = "outside working hours"
	ReasonSlotTaken    = "slot already taken"
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports that the availability check or the state machine
// rejected the request. The caller may retry with a different slot.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a dangling reference.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

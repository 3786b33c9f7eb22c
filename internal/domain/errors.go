package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrPersistence       = errors.New("persistence failure")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrProviderFailure   = errors.New("provider failure")
)

// ValidationError reports malformed or missing input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// QuotaExceededError is returned when admission is denied by the quota tracker.
// It is not a system fault and cannot be retried until ResetAt.
type QuotaExceededError struct {
	Service   QuotaService
	Limit     int64
	Used      int64
	Remaining int64
	Period    string
	Cadence   Cadence
	Unit      string
	ResetAt   time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s used %d of %d in %s", e.Service, e.Used, e.Limit, e.Period)
}

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// PersistenceError wraps a failure of the counter or job store.
type PersistenceError struct {
	Op  string
	Err error
}

// Persistence wraps err as a PersistenceError unless it is nil, a not-found
// condition, or already a PersistenceError.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// InvalidTransitionError rejects a status change the lifecycle does not allow.
type InvalidTransitionError struct {
	From GenerationStatus
	To   GenerationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

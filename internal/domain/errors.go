package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrAlreadyExists          = errors.New("already exists")
	ErrValidation             = errors.New("validation failed")
	ErrCreditLimitExceeded    = errors.New("credit limit exceeded")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrTriggerFailed          = errors.New("processing trigger failed")
)

// ValidationError lists every required field that was missing.
type ValidationError struct {
	Message string
	Fields  map[string]bool
}

// NewValidationError flags each of the given detail keys.
func NewValidationError(message string, fields ...string) *ValidationError {
	v := &ValidationError{Message: message, Fields: make(map[string]bool, len(fields))}
	for _, f := range fields {
		v.Fields[f] = true
	}
	return v
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(keys, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CreditLimitError is returned when a session has used all of its credits.
type CreditLimitError struct {
	CurrentUsage int
	Limit        int
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("Credit limit reached. You have used all %d free credits.", e.Limit)
}

func (e *CreditLimitError) Is(target error) bool { return target == ErrCreditLimitExceeded }

// TransitionError reports a lifecycle change attempted from the wrong state.
type TransitionError struct {
	ID   string
	From GenerationStatus
	To   GenerationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("generation request %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidStateTransition }

// StorageError wraps a backend failure. Err is kept for logs and must not be
// shown to API callers.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// TriggerError is produced when the processor could not be started for a request.
type TriggerError struct {
	RequestID string
	Err       error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("trigger processing for %s: %v", e.RequestID, e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }

func (e *TriggerError) Is(target error) bool { return target == ErrTriggerFailed }

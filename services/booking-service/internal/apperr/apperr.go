// Package apperr is the error taxonomy shared by the booking core and its
// transports.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorage           = errors.New("storage failure")
)

const SlotUnavailableMessage = "The selected time slot is no longer available. Please choose another time."

// ValidationError carries every message collected while checking a request.
type ValidationError struct {
	Messages []string

	slotTaken bool
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Is reports true for ErrSlotUnavailable when the error was raised by a
// scheduling conflict.
func (e *ValidationError) Is(target error) bool {
	return target == ErrSlotUnavailable && e.slotTaken
}

func Validation(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func SlotUnavailable() *ValidationError {
	return &ValidationError{Messages: []string{SlotUnavailableMessage}, slotTaken: true}
}

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op + ": storage failure"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err unless it already belongs to the taxonomy.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Classified reports whether err is already one of the taxonomy errors.
func Classified(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{ErrForbidden, ErrNotFound, ErrInvalidTransition, ErrStorage} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Messages returns the validation messages of err, or nil.
func Messages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	return nil
}

// Package notify builds and records in-app notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
)

type Notification struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"user_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Sink persists notifications, normally inside the caller's transaction.
type Sink interface {
	InsertNotification(ctx context.Context, n Notification) error
}

// Emit appends n through sink. Any failure is a storage failure.
func Emit(ctx context.Context, sink Sink, n Notification) error {
	if sink == nil {
		return &apperr.StorageError{Op: "emit notification", Err: errors.New("no notification sink")}
	}
	if err := sink.InsertNotification(ctx, n); err != nil {
		return &apperr.StorageError{Op: "emit notification", Err: err}
	}
	return nil
}

const (
	dateLayout       = "January 2, 2006"
	timeLayout       = "3:04 PM"
	paddedTimeLayout = "03:04 PM"
)

func when(start time.Time) string {
	return start.Format(dateLayout) + " at " + start.Format(timeLayout)
}

func Requested(recipientID, appointmentID, patientName string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "New Appointment Request",
		Message: fmt.Sprintf("You have a new appointment request from %s for %s at %s",
			patientName, start.Format(dateLayout), start.Format(paddedTimeLayout)),
	}
}

func Approved(recipientID, appointmentID string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "Appointment Approved",
		Message:       fmt.Sprintf("Your appointment on %s has been approved.", when(start)),
	}
}

func Rejected(recipientID, appointmentID string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "Appointment Rejected",
		Message:       fmt.Sprintf("Your appointment on %s has been rejected.", when(start)),
	}
}

func Completed(recipientID, appointmentID string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "Appointment Completed",
		Message:       fmt.Sprintf("Your appointment on %s has been marked as completed.", when(start)),
	}
}

func Cancelled(recipientID, appointmentID string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "Appointment Cancelled",
		Message:       fmt.Sprintf("An appointment scheduled for %s has been cancelled.", when(start)),
	}
}

func Reminder(recipientID, appointmentID string, start time.Time) Notification {
	return Notification{
		RecipientID:   recipientID,
		AppointmentID: appointmentID,
		Title:         "Appointment Reminder",
		Message:       fmt.Sprintf("Reminder: your appointment on %s is tomorrow.", when(start)),
	}
}

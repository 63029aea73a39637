package appointment

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

// ListFilter selects appointments for one party. Exactly one of PatientID
// and ProviderID is set.
type ListFilter struct {
	PatientID  string
	ProviderID string
	Status     Status
	Limit      int
}

// Queries are the reads the service needs. Missing rows are reported as
// apperr.ErrNotFound.
type Queries interface {
	FindUser(ctx context.Context, id string) (User, error)
	// FindTemplate returns the provider's window for weekday, and false
	// when the provider has no entry for it.
	FindTemplate(ctx context.Context, providerID string, weekday time.Weekday) (schedule.Window, bool, error)
	// ActiveAppointments returns the provider's pending and approved
	// appointments that start on day.
	ActiveAppointments(ctx context.Context, providerID string, day time.Time) ([]Appointment, error)
	FindAppointment(ctx context.Context, id string) (Appointment, error)
	ListAppointments(ctx context.Context, f ListFilter) ([]Appointment, error)
	// DueReminders returns approved appointments starting on day that
	// have not been reminded yet.
	DueReminders(ctx context.Context, day time.Time) ([]Appointment, error)
}

// Tx is a unit of work. Writes become visible only when InTx commits.
type Tx interface {
	Queries
	notify.Sink

	// LockProvider serializes bookings for a provider until the
	// transaction ends.
	LockProvider(ctx context.Context, providerID string) error
	LockAppointment(ctx context.Context, id string) (Appointment, error)
	// InsertAppointment stores appt and fills in its id and timestamps.
	// An overlap caught by the database is reported as a slot conflict.
	InsertAppointment(ctx context.Context, appt *Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id string, status Status, notes string) (Appointment, error)
	AppendEvent(ctx context.Context, evt Event) error
	// ClaimReminder records that a reminder was sent and reports false
	// when one was already recorded.
	ClaimReminder(ctx context.Context, appointmentID string) (bool, error)
}

type Store interface {
	Queries
	// InTx runs fn in a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(Tx) error) error
}

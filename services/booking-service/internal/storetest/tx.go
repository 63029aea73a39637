package storetest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

type tx struct {
	st     *state
	failOn map[string]error
	now    func() time.Time
}

func (t *tx) fail(method string) error {
	return t.failOn[method]
}

func (t *tx) FindUser(ctx context.Context, id string) (appointment.User, error) {
	return t.st.findUser(id)
}

func (t *tx) FindTemplate(ctx context.Context, providerID string, weekday time.Weekday) (schedule.Window, bool, error) {
	w, ok := t.st.findTemplate(providerID, weekday)
	return w, ok, nil
}

func (t *tx) ActiveAppointments(ctx context.Context, providerID string, day time.Time) ([]appointment.Appointment, error) {
	return t.st.active(providerID, day), nil
}

func (t *tx) FindAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	a, ok := t.st.appts[id]
	if !ok {
		return appointment.Appointment{}, apperr.ErrNotFound
	}
	return a, nil
}

func (t *tx) ListAppointments(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, error) {
	return t.st.list(f), nil
}

func (t *tx) DueReminders(ctx context.Context, day time.Time) ([]appointment.Appointment, error) {
	return t.st.due(day), nil
}

func (t *tx) LockProvider(ctx context.Context, providerID string) error {
	u, err := t.st.findUser(providerID)
	if err != nil {
		return err
	}
	if u.Role != appointment.RoleProvider {
		return apperr.ErrNotFound
	}
	return nil
}

func (t *tx) LockAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	return t.FindAppointment(ctx, id)
}

// InsertAppointment enforces the same no-overlap rule as the database
// exclusion constraint.
func (t *tx) InsertAppointment(ctx context.Context, a *appointment.Appointment) error {
	if err := t.fail("InsertAppointment"); err != nil {
		return err
	}
	if a.Status.Active() {
		want := schedule.Interval{Start: a.Start, End: a.End}
		for _, other := range t.st.appts {
			if other.ProviderID == a.ProviderID && other.Status.Active() &&
				schedule.Overlaps(want, schedule.Interval{Start: other.Start, End: other.End}) {
				return apperr.SlotUnavailable()
			}
		}
	}
	now := t.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	t.st.appts[a.ID] = *a
	return nil
}

func (t *tx) UpdateAppointmentStatus(ctx context.Context, id string, status appointment.Status, notes string) (appointment.Appointment, error) {
	if err := t.fail("UpdateAppointmentStatus"); err != nil {
		return appointment.Appointment{}, err
	}
	a, ok := t.st.appts[id]
	if !ok {
		return appointment.Appointment{}, apperr.ErrNotFound
	}
	a.Status = status
	a.Notes = notes
	a.UpdatedAt = t.now()
	t.st.appts[id] = a
	return a, nil
}

func (t *tx) InsertNotification(ctx context.Context, n notify.Notification) error {
	if err := t.fail("InsertNotification"); err != nil {
		return err
	}
	if _, ok := t.st.users[n.RecipientID]; !ok {
		return apperr.ErrNotFound
	}
	n.ID = uuid.NewString()
	n.CreatedAt = t.now()
	t.st.notes = append(t.st.notes, n)
	return nil
}

func (t *tx) AppendEvent(ctx context.Context, evt appointment.Event) error {
	if err := t.fail("AppendEvent"); err != nil {
		return err
	}
	t.st.events = append(t.st.events, evt)
	return nil
}

func (t *tx) ClaimReminder(ctx context.Context, appointmentID string) (bool, error) {
	if t.st.reminded[appointmentID] {
		return false, nil
	}
	t.st.reminded[appointmentID] = true
	return true, nil
}

var _ appointment.Tx = (*tx)(nil)

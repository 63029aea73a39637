package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/carebook/libs/db"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

const appointmentColumns = `
	id::text, patient_id::text, provider_id::text, start_time, end_time,
	purpose, notes, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (appointment.Appointment, error) {
	var a appointment.Appointment
	var status string
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID, &a.Start, &a.End,
		&a.Purpose, &a.Notes, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return appointment.Appointment{}, err
	}
	a.Status = appointment.Status(status)
	return a, nil
}

func collectAppointments(rows pgx.Rows) ([]appointment.Appointment, error) {
	defer rows.Close()
	var out []appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r queries) FindUser(ctx context.Context, id string) (appointment.User, error) {
	var u appointment.User
	var role string
	err := r.q.QueryRow(ctx, `
		SELECT id::text, role, first_name, last_name, email
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &role, &u.FirstName, &u.LastName, &u.Email)
	if err != nil {
		return appointment.User{}, lookupErr(err)
	}
	u.Role = appointment.Role(role)
	return u, nil
}

func (r queries) FindTemplate(ctx context.Context, providerID string, weekday time.Weekday) (schedule.Window, bool, error) {
	var w schedule.Window
	err := r.q.QueryRow(ctx, `
		SELECT start_minute, end_minute
		FROM availability_templates
		WHERE provider_id = $1 AND weekday = $2
	`, providerID, int(weekday)).Scan(&w.StartMinute, &w.EndMinute)
	if db.IsNotFound(err) {
		return schedule.Window{}, false, nil
	}
	if err != nil {
		return schedule.Window{}, false, lookupErr(err)
	}
	return w, true, nil
}

func (r queries) ActiveAppointments(ctx context.Context, providerID string, day time.Time) ([]appointment.Appointment, error) {
	from := schedule.Midnight(day)
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
			AND status IN ('pending', 'approved')
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, providerID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, lookupErr(err)
	}
	return collectAppointments(rows)
}

func (r queries) FindAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	a, err := scanAppointment(r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
	if err != nil {
		return appointment.Appointment{}, lookupErr(err)
	}
	return a, nil
}

func (r queries) ListAppointments(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.PatientID != "" {
		add("patient_id = $%d", f.PatientID)
	}
	if f.ProviderID != "" {
		add("provider_id = $%d", f.ProviderID)
	}
	if len(where) == 0 {
		return nil, fmt.Errorf("list appointments: no party filter")
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY start_time DESC
		LIMIT $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		if db.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, err
	}
	return collectAppointments(rows)
}

func (r queries) DueReminders(ctx context.Context, day time.Time) ([]appointment.Appointment, error) {
	from := schedule.Midnight(day)
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE a.status = 'approved'
			AND a.start_time >= $1
			AND a.start_time < $2
			AND NOT EXISTS (SELECT 1 FROM appointment_reminders r WHERE r.appointment_id = a.id)
		ORDER BY a.start_time ASC
	`, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (t *txStore) LockProvider(ctx context.Context, providerID string) error {
	var id string
	err := t.tx.QueryRow(ctx, `
		SELECT id::text
		FROM users
		WHERE id = $1 AND role = 'provider'
		FOR UPDATE
	`, providerID).Scan(&id)
	return lookupErr(err)
}

func (t *txStore) LockAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	a, err := scanAppointment(t.tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return appointment.Appointment{}, lookupErr(err)
	}
	return a, nil
}

func (t *txStore) InsertAppointment(ctx context.Context, a *appointment.Appointment) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, provider_id, start_time, end_time, purpose, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, a.PatientID, a.ProviderID, a.Start, a.End, a.Purpose, a.Notes, string(a.Status)).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case db.IsExclusionViolation(err):
		return apperr.SlotUnavailable()
	case db.IsForeignKeyViolation(err):
		return apperr.ErrNotFound
	default:
		return err
	}
}

func (t *txStore) UpdateAppointmentStatus(ctx context.Context, id string, status appointment.Status, notes string) (appointment.Appointment, error) {
	a, err := scanAppointment(t.tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
			notes = $3,
			updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, string(status), notes))
	if err != nil {
		if db.IsExclusionViolation(err) {
			return appointment.Appointment{}, apperr.SlotUnavailable()
		}
		return appointment.Appointment{}, lookupErr(err)
	}
	return a, nil
}

func (t *txStore) ClaimReminder(ctx context.Context, appointmentID string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO appointment_reminders (appointment_id)
		VALUES ($1)
		ON CONFLICT (appointment_id) DO NOTHING
	`, appointmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

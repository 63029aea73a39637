package appointment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/validation"
)

type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the clinic time zone used to decide what "today" and
// "in the future" mean. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithValidator(v *validator.Validate) Option {
	return func(s *Service) {
		if v != nil {
			s.validate = v
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	return s
}

// wallNow is the current clinic wall-clock time.
func (s *Service) wallNow() time.Time {
	return schedule.WallClock(s.now(), s.loc)
}

func (s *Service) provider(ctx context.Context, q Queries, id string) (User, error) {
	u, err := q.FindUser(ctx, id)
	if err != nil {
		return User{}, apperr.Storage("find provider", err)
	}
	if u.Role != RoleProvider {
		return User{}, apperr.ErrNotFound
	}
	return u, nil
}

func (s *Service) window(ctx context.Context, q Queries, providerID string, day time.Time) (schedule.Window, error) {
	w, ok, err := q.FindTemplate(ctx, providerID, day.Weekday())
	if err != nil {
		return schedule.Window{}, apperr.Storage("find template", err)
	}
	if !ok {
		return schedule.DefaultWindow, nil
	}
	return w, nil
}

func busy(appts []Appointment) []schedule.Interval {
	out := make([]schedule.Interval, 0, len(appts))
	for _, a := range appts {
		if a.Status.Active() {
			out = append(out, schedule.Interval{Start: a.Start, End: a.End})
		}
	}
	return out
}

// AvailableSlots lists the free slots of a provider on date (YYYY-MM-DD).
// Past dates are answered like any other.
func (s *Service) AvailableSlots(ctx context.Context, providerID, date string) ([]schedule.Slot, error) {
	providerID = strings.TrimSpace(providerID)
	day, err := schedule.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, apperr.Validation("Invalid date format. Use YYYY-MM-DD")
	}
	if providerID == "" {
		return nil, apperr.Validation("Please select a doctor")
	}
	if _, err := s.provider(ctx, s.store, providerID); err != nil {
		return nil, err
	}

	w, err := s.window(ctx, s.store, providerID, day)
	if err != nil {
		return nil, err
	}
	booked, err := s.store.ActiveAppointments(ctx, providerID, day)
	if err != nil {
		return nil, apperr.Storage("list appointments", err)
	}
	return schedule.Free(schedule.Partition(day, w), busy(booked)), nil
}

type CreateRequest struct {
	ProviderID string `json:"provider_id" validate:"required"`
	Date       string `json:"date" validate:"required,ymd"`
	Start      string `json:"start_time" validate:"required,clock"`
	Purpose    string `json:"purpose" validate:"required"`
	Notes      string `json:"notes"`
}

var createMessages = map[string]string{
	"provider_id.required": "Please select a doctor",
	"date.required":        "Please select a date",
	"date.ymd":             "Invalid date format. Use YYYY-MM-DD",
	"start_time.required":  "Please select a time slot",
	"start_time.clock":     "Invalid time format. Use HH:MM",
	"purpose.required":     "Please provide a purpose for the appointment",
}

func (r *CreateRequest) normalize() {
	r.ProviderID = strings.TrimSpace(r.ProviderID)
	r.Date = strings.TrimSpace(r.Date)
	r.Start = strings.TrimSpace(r.Start)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (s *Service) validateCreate(req CreateRequest) (time.Time, error) {
	var msgs []string
	if err := s.validate.Struct(req); err != nil {
		msgs = validation.Messages(err, createMessages)
	}
	day, dayErr := schedule.ParseDate(req.Date)
	if dayErr == nil && day.Before(schedule.Midnight(s.wallNow())) {
		msgs = append(msgs, "Appointment date cannot be in the past")
	}
	if len(msgs) > 0 {
		return time.Time{}, apperr.Validation(msgs...)
	}
	offset, err := schedule.ParseClock(req.Start)
	if err != nil {
		return time.Time{}, apperr.Validation(createMessages["start_time.clock"])
	}
	return day.Add(offset), nil
}

// Create books a pending appointment for the calling patient.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (Appointment, error) {
	if actor.Role != RolePatient || actor.ID == "" {
		return Appointment{}, apperr.ErrForbidden
	}
	req.normalize()
	start, err := s.validateCreate(req)
	if err != nil {
		return Appointment{}, err
	}

	if _, err := s.provider(ctx, s.store, req.ProviderID); err != nil {
		return Appointment{}, err
	}
	patient, err := s.store.FindUser(ctx, actor.ID)
	if err != nil {
		return Appointment{}, apperr.Storage("find patient", err)
	}

	appt := Appointment{
		PatientID:  actor.ID,
		ProviderID: req.ProviderID,
		Start:      start,
		End:        start.Add(schedule.SlotLength),
		Purpose:    req.Purpose,
		Notes:      req.Notes,
		Status:     StatusPending,
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockProvider(ctx, appt.ProviderID); err != nil {
			return apperr.Storage("lock provider", err)
		}
		booked, err := tx.ActiveAppointments(ctx, appt.ProviderID, schedule.Midnight(start))
		if err != nil {
			return apperr.Storage("list appointments", err)
		}
		want := schedule.Interval{Start: appt.Start, End: appt.End}
		for _, b := range busy(booked) {
			if schedule.Overlaps(want, b) {
				return apperr.SlotUnavailable()
			}
		}
		if err := tx.InsertAppointment(ctx, &appt); err != nil {
			return apperr.Storage("insert appointment", err)
		}
		n := notify.Requested(appt.ProviderID, appt.ID, patient.FullName(), appt.Start)
		if err := notify.Emit(ctx, tx, n); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, EventRequested, appt)
	})
	if err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Transition applies action to an appointment on behalf of actor.
func (s *Service) Transition(ctx context.Context, actor Actor, appointmentID string, action Action, notes string) (Appointment, error) {
	rule, ok := transitions[action]
	if !ok {
		return Appointment{}, apperr.Validation("Unknown action")
	}
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return Appointment{}, apperr.ErrNotFound
	}

	var out Appointment
	err := s.store.InTx(ctx, func(tx Tx) error {
		appt, err := tx.LockAppointment(ctx, appointmentID)
		if err != nil {
			return apperr.Storage("lock appointment", err)
		}
		if !rule.party(actor, appt) {
			return apperr.ErrForbidden
		}
		if !rule.allows(appt.Status, appt.Start, s.wallNow()) {
			return apperr.ErrInvalidTransition
		}

		updated, err := tx.UpdateAppointmentStatus(ctx, appt.ID, rule.to, nextNotes(action, appt.Notes, notes))
		if err != nil {
			return apperr.Storage("update appointment", err)
		}
		if err := notify.Emit(ctx, tx, rule.notice(rule.recipient(updated), updated.ID, updated.Start)); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, tx, rule.event, updated); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return Appointment{}, err
	}
	return out, nil
}

// Get returns an appointment to either of its parties.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (Appointment, error) {
	appt, err := s.store.FindAppointment(ctx, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, apperr.Storage("find appointment", err)
	}
	if actor.ID == "" || (actor.ID != appt.PatientID && actor.ID != appt.ProviderID) {
		return Appointment{}, apperr.ErrForbidden
	}
	return appt, nil
}

// List returns the actor's own appointments, optionally filtered by status.
func (s *Service) List(ctx context.Context, actor Actor, status string, limit int) ([]Appointment, error) {
	f := ListFilter{Limit: limit}
	switch actor.Role {
	case RolePatient:
		f.PatientID = actor.ID
	case RoleProvider:
		f.ProviderID = actor.ID
	default:
		return nil, apperr.ErrForbidden
	}
	if strings.TrimSpace(status) != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, apperr.Validation("Unknown status filter")
		}
		f.Status = st
	}
	appts, err := s.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, apperr.Storage("list appointments", err)
	}
	return appts, nil
}

type eventPayload struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	ProviderID    string `json:"provider_id"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        Status `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

const eventTimeLayout = "2006-01-02T15:04:05"

// EventFor builds the outbox event describing appt.
func EventFor(eventType string, appt Appointment, occurredAt time.Time) (Event, error) {
	payload, err := json.Marshal(eventPayload{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		ProviderID:    appt.ProviderID,
		Start:         appt.Start.Format(eventTimeLayout),
		End:           appt.End.Format(eventTimeLayout),
		Status:        appt.Status,
		OccurredAt:    occurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, AppointmentID: appt.ID, Payload: payload}, nil
}

func (s *Service) appendEvent(ctx context.Context, tx Tx, eventType string, appt Appointment) error {
	evt, err := EventFor(eventType, appt, s.now())
	if err != nil {
		return &apperr.StorageError{Op: "encode event", Err: err}
	}
	if err := tx.AppendEvent(ctx, evt); err != nil {
		return apperr.Storage("append event", err)
	}
	return nil
}

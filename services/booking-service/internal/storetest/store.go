// Package storetest provides an in-memory store for tests. Transactions are
// serialized and applied to a copy of the state that replaces the original
// only on commit.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

type user struct {
	account accounts.Account
	hash    string
}

type state struct {
	users     map[string]user
	templates map[string]map[time.Weekday]schedule.Window
	appts     map[string]appointment.Appointment
	notes     []notify.Notification
	events    []appointment.Event
	reminded  map[string]bool
}

func (s state) clone() state {
	out := state{
		users:     make(map[string]user, len(s.users)),
		templates: make(map[string]map[time.Weekday]schedule.Window, len(s.templates)),
		appts:     make(map[string]appointment.Appointment, len(s.appts)),
		notes:     append([]notify.Notification(nil), s.notes...),
		events:    append([]appointment.Event(nil), s.events...),
		reminded:  make(map[string]bool, len(s.reminded)),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.templates {
		days := make(map[time.Weekday]schedule.Window, len(v))
		for wd, w := range v {
			days[wd] = w
		}
		out.templates[k] = days
	}
	for k, v := range s.appts {
		out.appts[k] = v
	}
	for k, v := range s.reminded {
		out.reminded[k] = v
	}
	return out
}

type Store struct {
	mu     sync.Mutex
	st     state
	failOn map[string]error
	now    func() time.Time
}

func New() *Store {
	return &Store{
		st: state{
			users:     map[string]user{},
			templates: map[string]map[time.Weekday]schedule.Window{},
			appts:     map[string]appointment.Appointment{},
			reminded:  map[string]bool{},
		},
		failOn: map[string]error{},
		now:    time.Now,
	}
}

// FailOn makes the named transactional write (e.g. "InsertNotification")
// return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[method] = err
}

// AddUser registers a user directly and returns its id.
func (s *Store) AddUser(role appointment.Role, firstName, lastName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	acct := accounts.Account{
		ID:        id,
		Role:      role,
		FirstName: firstName,
		LastName:  lastName,
		Email:     strings.ToLower(firstName + "." + id[:8] + "@example.com"),
		CreatedAt: s.now(),
	}
	if role == appointment.RoleProvider {
		acct.Profile = &accounts.Profile{Specialization: "General Practice"}
	}
	s.st.users[id] = user{account: acct}
	return id
}

// AddAppointment stores appt as is and returns its id.
func (s *Store) AddAppointment(appt appointment.Appointment) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	s.st.appts[appt.ID] = appt
	return appt.ID
}

func (s *Store) SetTemplate(providerID string, weekday time.Weekday, w schedule.Window) {
	_ = s.UpsertTemplateDay(context.Background(), providerID, weekday, w)
}

func (s *Store) Appointments() []appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]appointment.Appointment, 0, len(s.st.appts))
	for _, a := range s.st.appts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (s *Store) Notifications() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.st.notes...)
}

func (s *Store) Events() []appointment.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appointment.Event(nil), s.st.events...)
}

func (s *Store) InTx(ctx context.Context, fn func(appointment.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: &work, failOn: s.failOn, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

func (s *Store) FindUser(ctx context.Context, id string) (appointment.User, error) {
	var (
		u   appointment.User
		err error
	)
	s.read(func(st *state) { u, err = st.findUser(id) })
	return u, err
}

func (s *Store) FindTemplate(ctx context.Context, providerID string, weekday time.Weekday) (schedule.Window, bool, error) {
	var (
		w  schedule.Window
		ok bool
	)
	s.read(func(st *state) { w, ok = st.findTemplate(providerID, weekday) })
	return w, ok, nil
}

func (s *Store) ActiveAppointments(ctx context.Context, providerID string, day time.Time) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	s.read(func(st *state) { out = st.active(providerID, day) })
	return out, nil
}

func (s *Store) FindAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	var (
		a  appointment.Appointment
		ok bool
	)
	s.read(func(st *state) { a, ok = st.appts[id] })
	if !ok {
		return appointment.Appointment{}, apperr.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	s.read(func(st *state) { out = st.list(f) })
	return out, nil
}

func (s *Store) DueReminders(ctx context.Context, day time.Time) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	s.read(func(st *state) { out = st.due(day) })
	return out, nil
}

func (st *state) findUser(id string) (appointment.User, error) {
	u, ok := st.users[id]
	if !ok {
		return appointment.User{}, apperr.ErrNotFound
	}
	a := u.account
	return appointment.User{ID: a.ID, Role: a.Role, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email}, nil
}

func (st *state) findTemplate(providerID string, weekday time.Weekday) (schedule.Window, bool) {
	w, ok := st.templates[providerID][weekday]
	return w, ok
}

func (st *state) active(providerID string, day time.Time) []appointment.Appointment {
	from := schedule.Midnight(day)
	dayRange := schedule.Interval{Start: from, End: from.AddDate(0, 0, 1)}
	var out []appointment.Appointment
	for _, a := range st.appts {
		if a.ProviderID != providerID || !a.Status.Active() {
			continue
		}
		if schedule.Overlaps(dayRange, schedule.Interval{Start: a.Start, End: a.End}) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (st *state) list(f appointment.ListFilter) []appointment.Appointment {
	var out []appointment.Appointment
	for _, a := range st.appts {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.ProviderID != "" && a.ProviderID != f.ProviderID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (st *state) due(day time.Time) []appointment.Appointment {
	from := schedule.Midnight(day)
	to := from.AddDate(0, 0, 1)
	var out []appointment.Appointment
	for _, a := range st.appts {
		if a.Status != appointment.StatusApproved || st.reminded[a.ID] {
			continue
		}
		if !a.Start.Before(from) && a.Start.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

var (
	_ appointment.Store  = (*Store)(nil)
	_ accounts.Store     = (*Store)(nil)
	_ availability.Store = (*Store)(nil)
	_ notify.InboxStore  = (*Store)(nil)
)

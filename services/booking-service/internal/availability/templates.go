// Package availability manages the weekly working-hours template of a
// provider.
package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/validation"
)

type Store interface {
	WeeklyTemplate(ctx context.Context, providerID string) (map[time.Weekday]schedule.Window, error)
	ReplaceTemplate(ctx context.Context, providerID string, days map[time.Weekday]schedule.Window) error
	UpsertTemplateDay(ctx context.Context, providerID string, weekday time.Weekday, w schedule.Window) error
}

// Day is one weekday of a template. A non-working day is stored as an
// empty window.
type Day struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	Name      string `json:"name,omitempty" validate:"-"`
	IsWorking bool   `json:"is_working"`
	Start     string `json:"start_time,omitempty" validate:"required_if=IsWorking true,omitempty,daytime"`
	End       string `json:"end_time,omitempty" validate:"required_if=IsWorking true,omitempty,daytime"`
	Default   bool   `json:"default,omitempty" validate:"-"`
}

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store, v *validator.Validate) *Service {
	if v == nil {
		v = validation.New()
	}
	_ = v.RegisterValidation("daytime", func(fl validator.FieldLevel) bool {
		_, err := parseMinute(fl.Field().String())
		return err == nil
	})
	return &Service{store: store, validate: v}
}

var dayMessages = map[string]string{
	"weekday.min":            "Weekday must be between 0 (Sunday) and 6 (Saturday)",
	"weekday.max":            "Weekday must be between 0 (Sunday) and 6 (Saturday)",
	"start_time.required_if": "Start time is required for working days",
	"start_time.daytime":     "Invalid start time format. Use HH:MM",
	"end_time.required_if":   "End time is required for working days",
	"end_time.daytime":       "Invalid end time format. Use HH:MM",
}

func requireProvider(actor appointment.Actor) error {
	if actor.Role != appointment.RoleProvider || actor.ID == "" {
		return apperr.ErrForbidden
	}
	return nil
}

// Get returns all seven days, filling days without an entry with the
// default window.
func (s *Service) Get(ctx context.Context, actor appointment.Actor) ([]Day, error) {
	if err := requireProvider(actor); err != nil {
		return nil, err
	}
	stored, err := s.store.WeeklyTemplate(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Storage("load template", err)
	}
	out := make([]Day, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		w, ok := stored[wd]
		if !ok {
			d := toDay(wd, schedule.DefaultWindow)
			d.Default = true
			out = append(out, d)
			continue
		}
		out = append(out, toDay(wd, w))
	}
	return out, nil
}

// Replace swaps the provider's whole template for days.
func (s *Service) Replace(ctx context.Context, actor appointment.Actor, days []Day) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	windows := make(map[time.Weekday]schedule.Window, len(days))
	var msgs []string
	for i := range days {
		w, dayMsgs := s.window(days[i])
		if len(dayMsgs) > 0 {
			msgs = append(msgs, dayMsgs...)
			continue
		}
		wd := time.Weekday(days[i].Weekday)
		if _, dup := windows[wd]; dup {
			msgs = append(msgs, fmt.Sprintf("%s is listed more than once", wd))
			continue
		}
		windows[wd] = w
	}
	if len(msgs) > 0 {
		return apperr.Validation(msgs...)
	}
	if err := s.store.ReplaceTemplate(ctx, actor.ID, windows); err != nil {
		return apperr.Storage("replace template", err)
	}
	return nil
}

// SetDay creates or replaces a single weekday entry.
func (s *Service) SetDay(ctx context.Context, actor appointment.Actor, day Day) error {
	if err := requireProvider(actor); err != nil {
		return err
	}
	w, msgs := s.window(day)
	if len(msgs) > 0 {
		return apperr.Validation(msgs...)
	}
	if err := s.store.UpsertTemplateDay(ctx, actor.ID, time.Weekday(day.Weekday), w); err != nil {
		return apperr.Storage("set template day", err)
	}
	return nil
}

func (s *Service) window(d Day) (schedule.Window, []string) {
	d.Start = strings.TrimSpace(d.Start)
	d.End = strings.TrimSpace(d.End)
	if err := s.validate.Struct(d); err != nil {
		return schedule.Window{}, validation.Messages(err, dayMessages)
	}
	if !d.IsWorking {
		return schedule.Window{}, nil
	}
	start, _ := parseMinute(d.Start)
	end, _ := parseMinute(d.End)
	w := schedule.Window{StartMinute: start, EndMinute: end}
	if end <= start {
		return schedule.Window{}, []string{fmt.Sprintf("%s: end time must be after start time", time.Weekday(d.Weekday))}
	}
	if err := w.Validate(); err != nil {
		return schedule.Window{}, []string{err.Error()}
	}
	return w, nil
}

func toDay(wd time.Weekday, w schedule.Window) Day {
	d := Day{Weekday: int(wd), Name: wd.String()}
	if w.EndMinute <= w.StartMinute {
		return d
	}
	d.IsWorking = true
	d.Start = formatMinute(w.StartMinute)
	d.End = formatMinute(w.EndMinute)
	return d
}

// parseMinute reads HH:MM (or HH:MM:SS) as minutes after midnight. "24:00"
// names the end of the day.
func parseMinute(raw string) (int, error) {
	if raw == "24:00" || raw == "24:00:00" {
		return 24 * 60, nil
	}
	d, err := schedule.ParseClock(raw)
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

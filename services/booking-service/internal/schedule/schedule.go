// Package schedule holds the pure time arithmetic behind slot availability.
//
// Times are clinic wall-clock values. They are carried as time.Time in UTC so
// that they round-trip through "timestamp without time zone" columns
// unchanged; the UTC location carries no meaning.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	SlotLength = 30 * time.Minute

	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04:05"
	displayLayout = "3:04 PM"
	minutesPerDay = 24 * 60
)

// DefaultWindow is used when a provider has no template for a weekday.
var DefaultWindow = Window{StartMinute: 9 * 60, EndMinute: 17 * 60}

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Window is a working window within one day, [StartMinute, EndMinute) in
// minutes after midnight. An empty window (start == end) has no slots.
type Window struct {
	StartMinute int
	EndMinute   int
}

func (w Window) Validate() error {
	if w.StartMinute < 0 || w.EndMinute > minutesPerDay {
		return fmt.Errorf("window %d-%d is outside the day", w.StartMinute, w.EndMinute)
	}
	if w.EndMinute < w.StartMinute {
		return errors.New("window end must not be before start")
	}
	return nil
}

// Slot is one bookable interval.
type Slot struct {
	Start time.Time
	End   time.Time
}

func (s Slot) Interval() Interval { return Interval{Start: s.Start, End: s.End} }

func (s Slot) Display() string {
	return s.Start.Format(displayLayout) + " - " + s.End.Format(displayLayout)
}

type slotJSON struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Display string `json:"display"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		Start:   s.Start.Format(ClockLayout),
		End:     s.End.Format(ClockLayout),
		Display: s.Display(),
	})
}

// Partition cuts the window on day into consecutive slots of SlotLength. A
// trailing remainder shorter than a slot is dropped.
func Partition(day time.Time, w Window) []Slot {
	midnight := Midnight(day)
	start := midnight.Add(time.Duration(w.StartMinute) * time.Minute)
	end := midnight.Add(time.Duration(w.EndMinute) * time.Minute)

	var slots []Slot
	for t := start; !t.Add(SlotLength).After(end); t = t.Add(SlotLength) {
		slots = append(slots, Slot{Start: t, End: t.Add(SlotLength)})
	}
	return slots
}

// Free returns the slots that overlap none of the busy intervals, keeping
// their order.
func Free(slots []Slot, busy []Interval) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		taken := false
		for _, b := range busy {
			if Overlaps(s.Interval(), b) {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, s)
		}
	}
	return out
}

// Midnight truncates t to the start of its calendar day, in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WallClock re-labels t's local reading in loc as a UTC wall-clock value.
func WallClock(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

var ErrDateFormat = errors.New("invalid date format, use YYYY-MM-DD")

// ParseDate accepts exactly YYYY-MM-DD naming a real calendar day.
func ParseDate(raw string) (time.Time, error) {
	if len(raw) != len(DateLayout) {
		return time.Time{}, ErrDateFormat
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return d, nil
}

var ErrClockFormat = errors.New("invalid time format, use HH:MM")

// ParseClock accepts HH:MM or HH:MM:SS and returns the offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	var t time.Time
	var err error
	switch len(raw) {
	case len("15:04"):
		t, err = time.Parse("15:04", raw)
	case len(ClockLayout):
		t, err = time.Parse(ClockLayout, raw)
	default:
		return 0, ErrClockFormat
	}
	if err != nil {
		return 0, ErrClockFormat
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

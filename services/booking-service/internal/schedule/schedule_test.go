package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"abutting", Interval{at(9, 0), at(9, 30)}, Interval{at(9, 30), at(10, 0)}, false},
		{"identical", Interval{at(9, 0), at(9, 30)}, Interval{at(9, 0), at(9, 30)}, true},
		{"partial", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 45), at(10, 15)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(10, 30)}, true},
		{"disjoint", Interval{at(9, 0), at(9, 30)}, Interval{at(11, 0), at(11, 30)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(a,b) = %v, want %v", got, tc.want)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps(b,a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPartitionDefaultWindow(t *testing.T) {
	slots := Partition(at(0, 0), DefaultWindow)
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(9, 0)) || !slots[15].End.Equal(at(17, 0)) {
		t.Fatalf("unexpected bounds %s - %s", slots[0].Start, slots[15].End)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Start.Equal(slots[i-1].End) {
			t.Fatalf("slot %d does not follow slot %d", i, i-1)
		}
	}
}

func TestPartitionDropsTrailingRemainder(t *testing.T) {
	slots := Partition(at(14, 0), Window{StartMinute: 9 * 60, EndMinute: 10*60 + 45})
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if !slots[2].End.Equal(at(10, 30)) {
		t.Fatalf("expected last slot to end 10:30, got %s", slots[2].End)
	}
}

func TestPartitionEmptyWindow(t *testing.T) {
	if slots := Partition(at(0, 0), Window{StartMinute: 600, EndMinute: 600}); len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestFree(t *testing.T) {
	slots := Partition(at(0, 0), Window{StartMinute: 9 * 60, EndMinute: 12 * 60})
	free := Free(slots, []Interval{{Start: at(10, 0), End: at(10, 30)}})
	if len(free) != 5 {
		t.Fatalf("expected 5 free slots, got %d", len(free))
	}
	for _, s := range free {
		if s.Start.Equal(at(10, 0)) {
			t.Fatal("10:00 slot should be taken")
		}
	}

	// A booking that straddles two slots removes both.
	free = Free(slots, []Interval{{Start: at(9, 15), End: at(9, 45)}})
	if len(free) != 4 || !free[0].Start.Equal(at(10, 0)) {
		t.Fatalf("unexpected free slots %v", free)
	}
}

func TestSlotJSON(t *testing.T) {
	body, err := json.Marshal(Slot{Start: at(13, 0), End: at(13, 30)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"start":"13:00:00","end":"13:30:00","display":"1:00 PM - 1:30 PM"}`
	if string(body) != want {
		t.Fatalf("got %s, want %s", body, want)
	}
}

func TestParseDate(t *testing.T) {
	for _, ok := range []string{"2026-03-02", "2024-02-29"} {
		if _, err := ParseDate(ok); err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "2026-3-2", "03/02/2026", "2026-02-30", "2026-03-02T00:00:00Z", "tomorrow"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]time.Duration{
		"09:00":    9 * time.Hour,
		"10:30":    10*time.Hour + 30*time.Minute,
		"16:30:00": 16*time.Hour + 30*time.Minute,
	}
	for raw, want := range cases {
		got, err := ParseClock(raw)
		if err != nil || got != want {
			t.Fatalf("ParseClock(%q) = %s, %v; want %s", raw, got, err, want)
		}
	}
	for _, bad := range []string{"", "9:00", "25:00", "10:30 AM", "10"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestWallClock(t *testing.T) {
	loc := time.FixedZone("clinic", -5*60*60)
	instant := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	got := WallClock(instant, loc)
	if !got.Equal(at(10, 0)) {
		t.Fatalf("expected 10:00 wall clock, got %s", got)
	}
}

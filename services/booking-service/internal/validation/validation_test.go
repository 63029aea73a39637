package validation

import "testing"

type sample struct {
	Date  string `json:"date" validate:"required,ymd"`
	Start string `json:"start_time" validate:"required,clock"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestCustomTags(t *testing.T) {
	v := New()
	if err := v.Struct(sample{Date: "2026-03-02", Start: "10:30"}); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}

	err := v.Struct(sample{Date: "03/02/2026", Start: "", Email: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msgs := Messages(err, map[string]string{
		"date.ymd":            "Invalid date format",
		"start_time.required": "Please select a time slot",
	})
	want := []string{"Invalid date format", "Please select a time slot", "email is invalid (email)"}
	if len(msgs) != len(want) {
		t.Fatalf("got %v, want %v", msgs, want)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, msgs[i], want[i])
		}
	}
}

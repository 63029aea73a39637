package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
)

type sinkFunc func(ctx context.Context, n Notification) error

func (f sinkFunc) InsertNotification(ctx context.Context, n Notification) error { return f(ctx, n) }

func TestEmit(t *testing.T) {
	var got []Notification
	sink := sinkFunc(func(_ context.Context, n Notification) error {
		got = append(got, n)
		return nil
	})
	n := Approved("pat-1", "appt-1", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if err := Emit(context.Background(), sink, n); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(got) != 1 || got[0].RecipientID != "pat-1" {
		t.Fatalf("unexpected sink contents %+v", got)
	}

	failing := sinkFunc(func(context.Context, Notification) error { return errors.New("disk full") })
	err := Emit(context.Background(), failing, n)
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := Emit(context.Background(), nil, n); !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error for nil sink, got %v", err)
	}
}

func TestMessages(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		n     Notification
		title string
		msg   string
	}{
		{Requested("p", "a", "Jane Doe", start), "New Appointment Request",
			"You have a new appointment request from Jane Doe for March 2, 2026 at 09:00 AM"},
		{Approved("p", "a", start), "Appointment Approved",
			"Your appointment on March 2, 2026 at 9:00 AM has been approved."},
		{Rejected("p", "a", start), "Appointment Rejected",
			"Your appointment on March 2, 2026 at 9:00 AM has been rejected."},
		{Completed("p", "a", start), "Appointment Completed",
			"Your appointment on March 2, 2026 at 9:00 AM has been marked as completed."},
		{Cancelled("p", "a", start), "Appointment Cancelled",
			"An appointment scheduled for March 2, 2026 at 9:00 AM has been cancelled."},
		{Reminder("p", "a", start), "Appointment Reminder",
			"Reminder: your appointment on March 2, 2026 at 9:00 AM is tomorrow."},
	}
	for _, tc := range cases {
		if tc.n.Title != tc.title {
			t.Fatalf("title = %q, want %q", tc.n.Title, tc.title)
		}
		if tc.n.Message != tc.msg {
			t.Fatalf("message = %q, want %q", tc.n.Message, tc.msg)
		}
		if tc.n.AppointmentID != "a" || tc.n.RecipientID != "p" {
			t.Fatalf("ids not set on %+v", tc.n)
		}
	}
}

package rpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/md-rashed-zaman/carebook/libs/grpcx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/storetest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dialServer(t *testing.T, slots SlotLister) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lis := bufconn.Listen(1 << 20)
	srv := grpcx.NewServer(logger)
	Register(srv, slots, logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestListSlots(t *testing.T) {
	store := storetest.New()
	providerID := store.AddUser(appointment.RoleProvider, "Greg", "House")
	store.SetTemplate(providerID, time.Monday, schedule.Window{StartMinute: 9 * 60, EndMinute: 10 * 60})
	now := func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	svc := appointment.NewService(store, appointment.WithClock(now), appointment.WithLocation(time.UTC))

	client := dialServer(t, svc)
	slots, err := client.ListSlots(context.Background(), providerID, "2026-03-02")
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}
	want := []Slot{
		{Start: "09:00:00", End: "09:30:00", Display: "9:00 AM - 9:30 AM"},
		{Start: "09:30:00", End: "10:00:00", Display: "9:30 AM - 10:00 AM"},
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %+v", len(want), slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot %d: expected %+v, got %+v", i, want[i], slots[i])
		}
	}

	_, err = client.ListSlots(context.Background(), providerID, "03/02/2026")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if msg := status.Convert(err).Message(); msg != "Invalid date format. Use YYYY-MM-DD" {
		t.Fatalf("unexpected message %q", msg)
	}
	_, err = client.ListSlots(context.Background(), "missing", "2026-03-02")
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

type failingLister struct{}

func (failingLister) AvailableSlots(context.Context, string, string) ([]schedule.Slot, error) {
	return nil, errors.New("connection reset by peer")
}

func TestListSlotsHidesInternalErrors(t *testing.T) {
	client := dialServer(t, failingLister{})
	_, err := client.ListSlots(context.Background(), "p", "2026-03-02")
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
	if msg := status.Convert(err).Message(); msg == "connection reset by peer" {
		t.Fatal("internal error details leaked to the client")
	}
}

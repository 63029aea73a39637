// Package rpc exposes slot lookup over gRPC for tools and sibling services.
// Messages are google.protobuf.Struct so no generated stubs are needed.
package rpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/md-rashed-zaman/carebook/libs/grpcx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName     = "carebook.booking.v1.Availability"
	listSlotsMethod = "/" + ServiceName + "/ListSlots"
)

// SlotLister is satisfied by *appointment.Service.
type SlotLister interface {
	AvailableSlots(ctx context.Context, providerID, date string) ([]schedule.Slot, error)
}

type AvailabilityServer interface {
	ListSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSlots", Handler: listSlotsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carebook/booking/v1/availability.proto",
}

func listSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServer).ListSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listSlotsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServer).ListSlots(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type server struct {
	slots  SlotLister
	logger *slog.Logger
}

// Register installs the Availability service on s.
func Register(s grpc.ServiceRegistrar, slots SlotLister, logger *slog.Logger) {
	s.RegisterService(&serviceDesc, &server{slots: slots, logger: logger})
}

func (s *server) ListSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	providerID := fields["provider_id"].GetStringValue()
	date := fields["date"].GetStringValue()

	slots, err := s.slots.AvailableSlots(ctx, providerID, date)
	if err != nil {
		return nil, s.statusFor(ctx, err)
	}
	list := make([]any, 0, len(slots))
	for _, sl := range slots {
		list = append(list, map[string]any{
			"start":   sl.Start.Format(schedule.ClockLayout),
			"end":     sl.End.Format(schedule.ClockLayout),
			"display": sl.Display(),
		})
	}
	return structpb.NewStruct(map[string]any{
		"provider_id": providerID,
		"date":        date,
		"slots":       list,
	})
}

func (s *server) statusFor(ctx context.Context, err error) error {
	if msgs := apperr.Messages(err); len(msgs) > 0 {
		return status.Error(codes.InvalidArgument, msgs[0])
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return status.Error(codes.NotFound, "provider not found")
	}
	s.logger.ErrorContext(ctx, "list slots failed", "err", err, "request_id", grpcx.RequestIDFromContext(ctx))
	return status.Error(codes.Internal, "An error occurred while processing your request. Please try again.")
}

package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Slot is the wire form of one free slot.
type Slot struct {
	Start   string
	End     string
	Display string
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListSlots(ctx context.Context, providerID, date string, opts ...grpc.CallOption) ([]Slot, error) {
	in, err := structpb.NewStruct(map[string]any{
		"provider_id": providerID,
		"date":        date,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listSlotsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	values := out.GetFields()["slots"].GetListValue().GetValues()
	slots := make([]Slot, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		slots = append(slots, Slot{
			Start:   f["start"].GetStringValue(),
			End:     f["end"].GetStringValue(),
			Display: f["display"].GetStringValue(),
		})
	}
	return slots, nil
}

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestSlotUnavailableIsValidation(t *testing.T) {
	err := fmt.Errorf("create: %w", SlotUnavailable())
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatal("expected ErrSlotUnavailable to match")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected a ValidationError")
	}
	if len(ve.Messages) != 1 || ve.Messages[0] != SlotUnavailableMessage {
		t.Fatalf("unexpected messages: %v", ve.Messages)
	}

	plain := Validation("Purpose is required")
	if errors.Is(plain, ErrSlotUnavailable) {
		t.Fatal("plain validation error must not match ErrSlotUnavailable")
	}
}

func TestStorageWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("insert appointment", cause)
	if !errors.Is(err, ErrStorage) {
		t.Fatal("expected ErrStorage")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be preserved")
	}
	if got := err.Error(); got != "insert appointment: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}

	if Storage("x", nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if got := Storage("lookup", ErrNotFound); got != ErrNotFound {
		t.Fatalf("taxonomy errors must pass through, got %v", got)
	}
}

func TestMessages(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Validation("a", "b"))
	msgs := Messages(err)
	if len(msgs) != 2 || msgs[0] != "a" || msgs[1] != "b" {
		t.Fatalf("unexpected messages %v", msgs)
	}
	if Messages(ErrForbidden) != nil {
		t.Fatal("expected nil messages for non validation error")
	}
}

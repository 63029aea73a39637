package notify

import (
	"context"
	"strings"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
)

type InboxStore interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	// MarkNotificationRead reports apperr.ErrNotFound unless userID is the
	// recipient of notification id.
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

// Inbox is the recipient's view of their notifications.
type Inbox struct {
	store InboxStore
}

func NewInbox(store InboxStore) *Inbox {
	return &Inbox{store: store}
}

// List returns the user's notifications, newest first.
func (i *Inbox) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.ErrForbidden
	}
	out, err := i.store.ListNotifications(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperr.Storage("list notifications", err)
	}
	return out, nil
}

func (i *Inbox) MarkRead(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.ErrForbidden
	}
	if err := i.store.MarkNotificationRead(ctx, userID, strings.TrimSpace(id)); err != nil {
		return apperr.Storage("mark notification read", err)
	}
	return nil
}

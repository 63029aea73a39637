package appointment

import (
	"context"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

// SendReminders notifies patients of approved appointments starting
// tomorrow. Each appointment is reminded at most once. It returns how many
// reminders were sent.
func (s *Service) SendReminders(ctx context.Context) (int, error) {
	tomorrow := schedule.Midnight(s.wallNow()).AddDate(0, 0, 1)
	due, err := s.store.DueReminders(ctx, tomorrow)
	if err != nil {
		return 0, apperr.Storage("list due reminders", err)
	}

	sent := 0
	for _, candidate := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		var claimed bool
		err := s.store.InTx(ctx, func(tx Tx) error {
			appt, err := tx.LockAppointment(ctx, candidate.ID)
			if err != nil {
				return apperr.Storage("lock appointment", err)
			}
			if appt.Status != StatusApproved {
				return nil
			}
			claimed, err = tx.ClaimReminder(ctx, appt.ID)
			if err != nil {
				return apperr.Storage("claim reminder", err)
			}
			if !claimed {
				return nil
			}
			if err := notify.Emit(ctx, tx, notify.Reminder(appt.PatientID, appt.ID, appt.Start)); err != nil {
				return err
			}
			return s.appendEvent(ctx, tx, EventReminded, appt)
		})
		if err != nil {
			return sent, err
		}
		if claimed {
			sent++
		}
	}
	return sent, nil
}

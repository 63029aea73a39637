package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

func (s *Store) WeeklyTemplate(ctx context.Context, providerID string) (map[time.Weekday]schedule.Window, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM availability_templates
		WHERE provider_id = $1
	`, providerID)
	if err != nil {
		return nil, lookupErr(err)
	}
	defer rows.Close()

	out := map[time.Weekday]schedule.Window{}
	for rows.Next() {
		var wd int
		var w schedule.Window
		if err := rows.Scan(&wd, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, err
		}
		out[time.Weekday(wd)] = w
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *Store) ReplaceTemplate(ctx context.Context, providerID string, days map[time.Weekday]schedule.Window) error {
	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM availability_templates WHERE provider_id = $1`, providerID); err != nil {
			return lookupErr(err)
		}
		batch := &pgx.Batch{}
		for wd, w := range days {
			batch.Queue(`
				INSERT INTO availability_templates (provider_id, weekday, start_minute, end_minute)
				VALUES ($1, $2, $3, $4)
			`, providerID, int(wd), w.StartMinute, w.EndMinute)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *Store) UpsertTemplateDay(ctx context.Context, providerID string, weekday time.Weekday, w schedule.Window) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO availability_templates (provider_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_id, weekday)
		DO UPDATE SET start_minute = EXCLUDED.start_minute, end_minute = EXCLUDED.end_minute
	`, providerID, int(weekday), w.StartMinute, w.EndMinute)
	return lookupErr(err)
}

var _ availability.Store = (*Store)(nil)

// Package storage is the PostgreSQL implementation of the booking stores.
package storage

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/carebook/libs/db"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/outbox"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func NewMigrator(pool *db.Pool) *db.Migrator {
	return db.NewMigrator(pool, migrationFiles, "migrations")
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	queries
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewStore(pool *db.Pool, outboxRepo *outbox.Repository) *Store {
	if outboxRepo == nil {
		outboxRepo = outbox.NewRepository(pool)
	}
	return &Store{queries: queries{q: pool}, pool: pool, outbox: outboxRepo}
}

func (s *Store) InTx(ctx context.Context, fn func(appointment.Tx) error) error {
	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		return fn(&txStore{queries: queries{q: tx}, tx: tx, outbox: s.outbox})
	})
}

type queries struct {
	q querier
}

type txStore struct {
	queries
	tx     pgx.Tx
	outbox *outbox.Repository
}

func (t *txStore) AppendEvent(ctx context.Context, evt appointment.Event) error {
	return t.outbox.Insert(ctx, t.tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   evt.AppointmentID,
		EventType:     evt.Type,
		Payload:       evt.Payload,
	})
}

// lookupErr maps a missing row, or an id that is not a uuid, to ErrNotFound.
func lookupErr(err error) error {
	if db.IsNotFound(err) || db.IsInvalidInput(err) {
		return apperr.ErrNotFound
	}
	return err
}

var (
	_ appointment.Store = (*Store)(nil)
	_ appointment.Tx    = (*txStore)(nil)
)

package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/carebook/libs/db"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
)

const accountColumns = `
	u.id::text, u.role, u.first_name, u.last_name, u.email, u.phone, u.created_at,
	p.specialization, p.consultation_fee::float8, p.bio`

func scanAccount(row pgx.Row, extra ...any) (accounts.Account, error) {
	var (
		a              accounts.Account
		role           string
		specialization *string
		fee            *float64
		bio            *string
	)
	dest := []any{&a.ID, &role, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.CreatedAt, &specialization, &fee, &bio}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return accounts.Account{}, err
	}
	a.Role = appointment.Role(role)
	if specialization != nil {
		a.Profile = &accounts.Profile{Specialization: *specialization}
		if fee != nil {
			a.Profile.ConsultationFee = *fee
		}
		if bio != nil {
			a.Profile.Bio = *bio
		}
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *accounts.Account, passwordHash string) error {
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (role, first_name, last_name, email, phone, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id::text, created_at
		`, string(a.Role), a.FirstName, a.LastName, a.Email, a.Phone, passwordHash).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return err
		}
		if a.Profile == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO provider_profiles (user_id, specialization, consultation_fee, bio)
			VALUES ($1, $2, $3, $4)
		`, a.ID, a.Profile.Specialization, a.Profile.ConsultationFee, a.Profile.Bio)
		return err
	})
	if db.IsUniqueViolation(err) {
		return accounts.ErrEmailTaken
	}
	return err
}

func (s *Store) FindCredentials(ctx context.Context, email string) (accounts.Account, string, error) {
	var hash string
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`, u.password_hash
		FROM users u
		LEFT JOIN provider_profiles p ON p.user_id = u.id
		WHERE lower(u.email) = lower($1)
	`, email), &hash)
	if err != nil {
		return accounts.Account{}, "", lookupErr(err)
	}
	return a, hash, nil
}

func (s *Store) FindAccount(ctx context.Context, id string) (accounts.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users u
		LEFT JOIN provider_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, id))
	if err != nil {
		return accounts.Account{}, lookupErr(err)
	}
	return a, nil
}

func (s *Store) ListProviders(ctx context.Context) ([]accounts.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM users u
		LEFT JOIN provider_profiles p ON p.user_id = u.id
		WHERE u.role = 'provider'
		ORDER BY u.last_name, u.first_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []accounts.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

var _ accounts.Store = (*Store)(nil)

// Package accounts registers and authenticates patients and providers.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/carebook/libs/auth"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Profile struct {
	Specialization  string  `json:"specialization"`
	ConsultationFee float64 `json:"consultation_fee"`
	Bio             string  `json:"bio,omitempty"`
}

type Account struct {
	ID        string           `json:"id"`
	Role      appointment.Role `json:"role"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Profile   *Profile         `json:"profile,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Store interface {
	// CreateAccount stores a and fills in its id. A duplicate email is
	// reported as ErrEmailTaken.
	CreateAccount(ctx context.Context, a *Account, passwordHash string) error
	FindCredentials(ctx context.Context, email string) (Account, string, error)
	FindAccount(ctx context.Context, id string) (Account, error)
	ListProviders(ctx context.Context) ([]Account, error)
}

type TokenIssuer interface {
	Sign(userID, role string) (string, time.Time, error)
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Account     Account   `json:"account"`
}

type Service struct {
	store    Store
	tokens   TokenIssuer
	validate *validator.Validate
}

func NewService(store Store, tokens TokenIssuer, v *validator.Validate) *Service {
	if v == nil {
		v = validation.New()
	}
	return &Service{store: store, tokens: tokens, validate: v}
}

type RegisterRequest struct {
	Role            string  `json:"role" validate:"required,oneof=patient provider"`
	FirstName       string  `json:"first_name" validate:"required,max=100"`
	LastName        string  `json:"last_name" validate:"required,max=100"`
	Email           string  `json:"email" validate:"required,email,max=255"`
	Phone           string  `json:"phone" validate:"omitempty,max=32"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	Specialization  string  `json:"specialization" validate:"required_if=Role provider,max=100"`
	ConsultationFee float64 `json:"consultation_fee" validate:"gte=0"`
	Bio             string  `json:"bio" validate:"max=2000"`
}

var registerMessages = map[string]string{
	"role.required":              "Role is required",
	"role.oneof":                 "Role must be patient or provider",
	"first_name.required":        "First name is required",
	"last_name.required":         "Last name is required",
	"email.required":             "Email is required",
	"email.email":                "Please enter a valid email address",
	"password.required":          "Password is required",
	"password.min":               "Password must be at least 8 characters long",
	"confirm_password.required":  "Passwords do not match",
	"confirm_password.eqfield":   "Passwords do not match",
	"specialization.required_if": "Specialization is required",
	"consultation_fee.gte":       "Consultation fee cannot be negative",
}

func (r *RegisterRequest) normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Specialization = strings.TrimSpace(r.Specialization)
	r.Bio = strings.TrimSpace(r.Bio)
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	req.normalize()
	if err := s.validate.Struct(req); err != nil {
		return Session{}, apperr.Validation(validation.Messages(err, registerMessages)...)
	}
	role, _ := appointment.ParseRole(req.Role)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, &apperr.StorageError{Op: "hash password", Err: err}
	}
	acct := Account{
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if role == appointment.RoleProvider {
		acct.Profile = &Profile{
			Specialization:  req.Specialization,
			ConsultationFee: req.ConsultationFee,
			Bio:             req.Bio,
		}
	}
	if err := s.store.CreateAccount(ctx, &acct, hash); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, apperr.Storage("create account", err)
	}
	return s.session(acct)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var msgs []string
	if email == "" {
		msgs = append(msgs, "Email is required")
	}
	if password == "" {
		msgs = append(msgs, "Password is required")
	}
	if len(msgs) > 0 {
		return Session{}, apperr.Validation(msgs...)
	}

	acct, hash, err := s.store.FindCredentials(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, apperr.Storage("find credentials", err)
	}
	if err := auth.VerifyPassword(hash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(acct)
}

func (s *Service) Me(ctx context.Context, id string) (Account, error) {
	acct, err := s.store.FindAccount(ctx, id)
	if err != nil {
		return Account{}, apperr.Storage("find account", err)
	}
	return acct, nil
}

func (s *Service) Providers(ctx context.Context) ([]Account, error) {
	providers, err := s.store.ListProviders(ctx)
	if err != nil {
		return nil, apperr.Storage("list providers", err)
	}
	return providers, nil
}

func (s *Service) session(acct Account) (Session, error) {
	token, exp, err := s.tokens.Sign(acct.ID, string(acct.Role))
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, Account: acct}, nil
}

package storetest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

func (s *Store) CreateAccount(ctx context.Context, a *accounts.Account, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if strings.EqualFold(u.account.Email, a.Email) {
			return accounts.ErrEmailTaken
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.now()
	stored := *a
	if a.Profile != nil {
		p := *a.Profile
		stored.Profile = &p
	}
	s.st.users[a.ID] = user{account: stored, hash: passwordHash}
	return nil
}

func (s *Store) FindCredentials(ctx context.Context, email string) (accounts.Account, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if strings.EqualFold(u.account.Email, email) {
			return u.account, u.hash, nil
		}
	}
	return accounts.Account{}, "", apperr.ErrNotFound
}

func (s *Store) FindAccount(ctx context.Context, id string) (accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return accounts.Account{}, apperr.ErrNotFound
	}
	return u.account, nil
}

func (s *Store) ListProviders(ctx context.Context) ([]accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []accounts.Account
	for _, u := range s.st.users {
		if u.account.Role == appointment.RoleProvider {
			out = append(out, u.account)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) WeeklyTemplate(ctx context.Context, providerID string) (map[time.Weekday]schedule.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[time.Weekday]schedule.Window{}
	for wd, w := range s.st.templates[providerID] {
		out[wd] = w
	}
	return out, nil
}

func (s *Store) ReplaceTemplate(ctx context.Context, providerID string, days map[time.Weekday]schedule.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[providerID]; !ok {
		return apperr.ErrNotFound
	}
	out := make(map[time.Weekday]schedule.Window, len(days))
	for wd, w := range days {
		out[wd] = w
	}
	s.st.templates[providerID] = out
	return nil
}

func (s *Store) UpsertTemplateDay(ctx context.Context, providerID string, weekday time.Weekday, w schedule.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[providerID]; !ok {
		return apperr.ErrNotFound
	}
	if s.st.templates[providerID] == nil {
		s.st.templates[providerID] = map[time.Weekday]schedule.Window{}
	}
	s.st.templates[providerID][weekday] = w
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Notification
	for i := len(s.st.notes) - 1; i >= 0; i-- {
		n := s.st.notes[i]
		if n.RecipientID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.notes {
		if s.st.notes[i].ID == id && s.st.notes[i].RecipientID == userID {
			s.st.notes[i].IsRead = true
			return nil
		}
	}
	return apperr.ErrNotFound
}

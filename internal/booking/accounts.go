package booking

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
)

// Register creates an account for userID from the completed registration
// flow. Display fields are denormalized once; only the operator snapshot
// changes later.
func (s *Service) Register(userID int64, firstName, lastName, username string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; ok {
		return models.Account{}, ErrAlreadyRegistered
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	acc := &models.Account{
		ID:           userID,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		FullName:     firstName + " " + lastName,
		RegisteredAt: s.clock(),
		Operator:     contains(s.operators, userID),
	}
	s.accounts[userID] = acc

	logger.SVCAccounts.Info("account registered",
		slog.String("event", "accounts.register"),
		slog.Int64("user_id", userID),
		slog.Bool("operator", acc.Operator),
		slog.Int("count", len(s.accounts)),
	)
	return *acc, s.persist("accounts", logger.SVCAccounts, func() error {
		return s.store.SaveAccounts(s.accounts)
	})
}

// Account returns a copy of the account for userID.
func (s *Service) Account(userID int64) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return models.Account{}, false
	}
	return *acc, true
}

// IsRegistered reports whether userID completed registration.
func (s *Service) IsRegistered(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[userID]
	return ok
}

// Accounts returns all accounts ordered by registration time, newest first.
func (s *Service) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out
}

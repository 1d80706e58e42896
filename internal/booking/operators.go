package booking

import (
	"log/slog"

	"github.com/m3rciful/slotbot/core/logger"
)

// IsOperator reports whether userID holds operator privilege.
func (s *Service) IsOperator(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.operators, userID)
}

// IsOwner reports whether userID is the configured owner.
func (s *Service) IsOwner(userID int64) bool {
	return userID == s.cfg.OwnerID
}

// Operators returns the operator set in insertion order. The owner is
// always a member.
func (s *Service) Operators() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.operators))
	copy(out, s.operators)
	return out
}

// AddOperator grants operator privilege to targetID. Only the owner may
// grant; the owner itself is never a valid target. The target's account
// snapshot is updated when the account exists.
func (s *Service) AddOperator(requesterID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requesterID != s.cfg.OwnerID {
		return ErrUnauthorized
	}
	if targetID == s.cfg.OwnerID {
		return ErrIsOwner
	}
	if contains(s.operators, targetID) {
		return ErrAlreadyOperator
	}

	s.operators = append(s.operators, targetID)
	logger.SVCOperators.Info("operator granted",
		slog.String("event", "operators.add"),
		slog.Int64("user_id", targetID),
		slog.Int("count", len(s.operators)),
	)
	if err := s.persist("operators", logger.SVCOperators, func() error {
		return s.store.SaveOperators(s.operators)
	}); err != nil {
		return err
	}
	return s.syncOperatorFlag(targetID, true)
}

// RemoveOperator revokes operator privilege from targetID. Only the
// owner may revoke, and the owner itself can never be removed, so the
// set structurally keeps at least one member.
func (s *Service) RemoveOperator(requesterID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requesterID != s.cfg.OwnerID {
		return ErrUnauthorized
	}
	if targetID == s.cfg.OwnerID {
		return ErrCannotRemoveOwner
	}

	idx := -1
	for i, id := range s.operators {
		if id == targetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotOperator
	}

	s.operators = append(s.operators[:idx], s.operators[idx+1:]...)
	logger.SVCOperators.Info("operator revoked",
		slog.String("event", "operators.remove"),
		slog.Int64("user_id", targetID),
		slog.Int("count", len(s.operators)),
	)
	if err := s.persist("operators", logger.SVCOperators, func() error {
		return s.store.SaveOperators(s.operators)
	}); err != nil {
		return err
	}
	return s.syncOperatorFlag(targetID, false)
}

// syncOperatorFlag mirrors the membership change into the account
// snapshot. Callers hold the service mutex.
func (s *Service) syncOperatorFlag(userID int64, operator bool) error {
	acc, ok := s.accounts[userID]
	if !ok || acc.Operator == operator {
		return nil
	}
	acc.Operator = operator
	return s.persist("accounts", logger.SVCOperators, func() error {
		return s.store.SaveAccounts(s.accounts)
	})
}

package booking

import (
	"log/slog"
	"sort"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
)

// Book reserves one seat on the slot with the given key for userID.
// The capacity check and the append happen under the same lock, so two
// racing bookings can never push a slot past MaxSeatsPerSlot. Display
// fields are frozen from the account at this moment.
func (s *Service) Book(userID int64, key models.SlotKey) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return models.Booking{}, ErrNotRegistered
	}
	if !s.slotExists(key) {
		return models.Booking{}, ErrUnknownSlot
	}
	if s.countBookings(key) >= MaxSeatsPerSlot {
		return models.Booking{}, ErrSlotFull
	}
	if s.cfg.ForbidDuplicates {
		for _, b := range s.bookings {
			if b.UserID == userID && b.Key() == key {
				return models.Booking{}, ErrAlreadyBooked
			}
		}
	}

	b := models.Booking{
		UserID:    userID,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Username:  acc.Username,
		FullName:  acc.FullName,
		Operator:  acc.Operator,
		Date:      key.Date,
		Time:      key.Time,
		CreatedAt: s.clock(),
	}
	s.bookings = append(s.bookings, b)
	logger.SVCBookings.Info("seat booked",
		slog.String("event", "bookings.create"),
		slog.String("slot", key.String()),
		slog.Int64("user_id", userID),
		slog.Int("taken", s.countBookings(key)),
	)
	if err := s.persist("bookings", logger.SVCBookings, func() error {
		return s.store.SaveBookings(s.bookings)
	}); err != nil {
		return b, err
	}
	return b, nil
}

// Bookings returns every booking in creation order.
func (s *Service) Bookings() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// BookingsFor returns one user's bookings, oldest first.
func (s *Service) BookingsFor(userID int64) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// BookingsAt returns the bookings on one slot key, oldest first.
func (s *Service) BookingsAt(key models.SlotKey) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.Key() == key {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// slotExists reports whether any slot carries key. Callers hold the
// mutex.
func (s *Service) slotExists(key models.SlotKey) bool {
	for _, sl := range s.slots {
		if sl.Key() == key {
			return true
		}
	}
	return false
}

package booking

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
)

const (
	// SlotDateLayout is the wire and display form of slot dates.
	SlotDateLayout = "02.01.2006"
	// SlotTimeLayout is the wire and display form of slot times.
	SlotTimeLayout = "15:04"
)

// ParseSlotDate validates raw as a calendar date and returns its
// canonical "DD.MM.YYYY" form.
func ParseSlotDate(raw string) (string, error) {
	t, err := time.Parse(SlotDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(SlotDateLayout), nil
}

// ParseSlotTime validates raw as a 24h wall-clock time and returns its
// canonical "HH:MM" form.
func ParseSlotTime(raw string) (string, error) {
	t, err := time.Parse(SlotTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format(SlotTimeLayout), nil
}

// CreateSlot publishes a new slot. Only operators may create. Date and
// time are validated and canonicalized; a description of "-" or empty
// means no description. Duplicate keys are allowed, matching how the
// inventory has always worked.
func (s *Service) CreateSlot(creatorID int64, date, timeStr, description string) (models.Slot, error) {
	canonDate, err := ParseSlotDate(date)
	if err != nil {
		return models.Slot{}, err
	}
	canonTime, err := ParseSlotTime(timeStr)
	if err != nil {
		return models.Slot{}, err
	}
	description = strings.TrimSpace(description)
	if description == "-" {
		description = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !contains(s.operators, creatorID) {
		return models.Slot{}, ErrUnauthorized
	}

	slot := models.Slot{
		Date:        canonDate,
		Time:        canonTime,
		Description: description,
		CreatedAt:   s.clock(),
		CreatedBy:   creatorID,
	}
	s.slots = append(s.slots, slot)
	logger.SVCSlots.Info("slot created",
		slog.String("event", "slots.create"),
		slog.String("slot", slot.Key().String()),
		slog.Int64("user_id", creatorID),
		slog.Int("count", len(s.slots)),
	)
	if err := s.persist("slots", logger.SVCSlots, func() error {
		return s.store.SaveSlots(s.slots)
	}); err != nil {
		return slot, err
	}
	return slot, nil
}

// Slots returns all published slots in creation order.
func (s *Service) Slots() []models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Slot returns the slot at the given position in creation order.
func (s *Service) Slot(index int) (models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.slots) {
		return models.Slot{}, ErrIndexOutOfRange
	}
	return s.slots[index], nil
}

// DeleteSlot removes the slot at the given position and cascades to
// every booking whose key matches the removed slot. It returns the
// removed slot and the bookings that were dropped with it. Bookings on
// an equal-keyed duplicate slot still match by key, so the cascade
// removes them as well.
func (s *Service) DeleteSlot(requesterID int64, index int) (models.Slot, []models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !contains(s.operators, requesterID) {
		return models.Slot{}, nil, ErrUnauthorized
	}
	if index < 0 || index >= len(s.slots) {
		return models.Slot{}, nil, ErrIndexOutOfRange
	}

	slot := s.slots[index]
	s.slots = append(s.slots[:index], s.slots[index+1:]...)

	key := slot.Key()
	var kept []models.Booking
	var dropped []models.Booking
	for _, b := range s.bookings {
		if b.Key() == key {
			dropped = append(dropped, b)
		} else {
			kept = append(kept, b)
		}
	}
	s.bookings = kept

	logger.SVCSlots.Info("slot deleted",
		slog.String("event", "slots.delete"),
		slog.String("slot", key.String()),
		slog.Int64("user_id", requesterID),
		slog.Int("cascade", len(dropped)),
	)
	if err := s.persist("slots", logger.SVCSlots, func() error {
		return s.store.SaveSlots(s.slots)
	}); err != nil {
		return slot, dropped, err
	}
	if len(dropped) > 0 {
		if err := s.persist("bookings", logger.SVCSlots, func() error {
			return s.store.SaveBookings(s.bookings)
		}); err != nil {
			return slot, dropped, err
		}
	}
	return slot, dropped, nil
}

// ClearAll wipes every slot and every booking in one stroke. Owner only.
func (s *Service) ClearAll(requesterID int64) (slots, bookings int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requesterID != s.cfg.OwnerID {
		return 0, 0, ErrUnauthorized
	}
	slots, bookings = len(s.slots), len(s.bookings)
	s.slots = nil
	s.bookings = nil

	logger.SVCSlots.Info("inventory cleared",
		slog.String("event", "slots.clear"),
		slog.Int64("user_id", requesterID),
		slog.Int("slots", slots),
		slog.Int("bookings", bookings),
	)
	if perr := s.persist("slots", logger.SVCSlots, func() error {
		return s.store.SaveSlots(s.slots)
	}); perr != nil {
		return slots, bookings, perr
	}
	if perr := s.persist("bookings", logger.SVCSlots, func() error {
		return s.store.SaveBookings(s.bookings)
	}); perr != nil {
		return slots, bookings, perr
	}
	return slots, bookings, nil
}

// Remaining reports how many seats are still free on the slot with the
// given key. Counts bookings by key across equal-keyed duplicates.
func (s *Service) Remaining(key models.SlotKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MaxSeatsPerSlot - s.countBookings(key)
}

// countBookings counts bookings matching key. Callers hold the mutex.
func (s *Service) countBookings(key models.SlotKey) int {
	n := 0
	for _, b := range s.bookings {
		if b.Key() == key {
			n++
		}
	}
	return n
}

// SlotDates returns the distinct dates that have at least one slot, in
// first-appearance order, for the date picker keyboard.
func (s *Service) SlotDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.slots))
	var out []string
	for _, sl := range s.slots {
		if _, ok := seen[sl.Date]; ok {
			continue
		}
		seen[sl.Date] = struct{}{}
		out = append(out, sl.Date)
	}
	return out
}

// SlotsOn returns the slots published for one date, in creation order.
func (s *Service) SlotsOn(date string) []models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Slot
	for _, sl := range s.slots {
		if sl.Date == date {
			out = append(out, sl)
		}
	}
	return out
}

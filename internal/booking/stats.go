package booking

import (
	"sort"
	"time"

	"github.com/m3rciful/slotbot/internal/models"
)

// Stats is a point-in-time summary of the whole inventory.
type Stats struct {
	Accounts    int
	Operators   int
	Slots       int
	Bookings    int
	UniqueUsers int
	FreeSeats   int
}

// UserCount pairs a booking user with how many seats they hold.
type UserCount struct {
	UserID  int64
	Display string
	Count   int
}

// DateGroup is the bookings of one date grouped by slot time.
type DateGroup struct {
	Date  string
	Slots []SlotGroup
}

// SlotGroup is one slot key with its bookings, oldest first.
type SlotGroup struct {
	Key      models.SlotKey
	Bookings []models.Booking
}

// Stats summarizes the current collections.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[int64]struct{}, len(s.bookings))
	for _, b := range s.bookings {
		users[b.UserID] = struct{}{}
	}

	free := 0
	seen := make(map[models.SlotKey]struct{}, len(s.slots))
	for _, sl := range s.slots {
		key := sl.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if r := MaxSeatsPerSlot - s.countBookings(key); r > 0 {
			free += r
		}
	}

	return Stats{
		Accounts:    len(s.accounts),
		Operators:   len(s.operators),
		Slots:       len(s.slots),
		Bookings:    len(s.bookings),
		UniqueUsers: len(users),
		FreeSeats:   free,
	}
}

// TopBookers returns per-user booking counts, most bookings first, ties
// broken by user id for a stable screen.
func (s *Service) TopBookers() []UserCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]*UserCount)
	order := make([]int64, 0)
	for _, b := range s.bookings {
		uc, ok := counts[b.UserID]
		if !ok {
			uc = &UserCount{UserID: b.UserID, Display: b.DisplayName()}
			counts[b.UserID] = uc
			order = append(order, b.UserID)
		}
		uc.Count++
	}

	out := make([]UserCount, 0, len(order))
	for _, id := range order {
		out = append(out, *counts[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// BookingsByDate groups every booking by date and slot time, dates and
// times in first-appearance order, bookings oldest first within a slot.
func (s *Service) BookingsByDate() []DateGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dates []string
	byDate := make(map[string][]models.Booking)
	for _, b := range s.bookings {
		if _, ok := byDate[b.Date]; !ok {
			dates = append(dates, b.Date)
		}
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	out := make([]DateGroup, 0, len(dates))
	for _, date := range dates {
		var times []string
		byTime := make(map[string][]models.Booking)
		for _, b := range byDate[date] {
			if _, ok := byTime[b.Time]; !ok {
				times = append(times, b.Time)
			}
			byTime[b.Time] = append(byTime[b.Time], b)
		}
		group := DateGroup{Date: date}
		for _, t := range times {
			list := byTime[t]
			sort.SliceStable(list, func(i, j int) bool {
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			})
			group.Slots = append(group.Slots, SlotGroup{
				Key:      models.SlotKey{Date: date, Time: t},
				Bookings: list,
			})
		}
		out = append(out, group)
	}
	return out
}

// RegisteredWithin counts accounts registered during the trailing window.
func (s *Service) RegisteredWithin(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock().Add(-window)
	n := 0
	for _, a := range s.accounts {
		if a.RegisteredAt.After(cutoff) {
			n++
		}
	}
	return n
}

// RecentAccounts returns the n most recently registered accounts,
// newest first. n <= 0 returns all.
func (s *Service) RecentAccounts(n int) []models.Account {
	all := s.Accounts()
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

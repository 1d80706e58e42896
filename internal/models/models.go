package models

import (
	"fmt"
	"strings"
	"time"
)

// Account is a registered bot user. Created once the registration flow
// completes; display fields stay frozen afterwards, only the operator
// snapshot is updated when operator membership changes.
type Account struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Username     string    `json:"username,omitempty" db:"username"`
	FullName     string    `json:"full_name" db:"full_name"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	Operator     bool      `json:"operator" db:"operator"`
}

// SlotKey is the natural key of a slot: a date and a time string in the
// exact form they were entered ("DD.MM.YYYY", "HH:MM").
type SlotKey struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// String renders the key as "DD.MM.YYYY HH:MM".
func (k SlotKey) String() string {
	return k.Date + " " + k.Time
}

// Slot is a bookable unit of time published by an operator.
type Slot struct {
	Date        string    `json:"date" db:"slot_date"`
	Time        string    `json:"time" db:"slot_time"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
}

// Key returns the slot's natural key.
func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time}
}

// Label is the human-facing one-line form of a slot.
func (s Slot) Label() string {
	if s.Description == "" {
		return s.Key().String()
	}
	return fmt.Sprintf("%s - %s", s.Key().String(), s.Description)
}

// Booking is one user's reservation against a slot. Display fields are
// copied from the account at booking time on purpose: the historical
// record must not change if the account is later edited.
type Booking struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Username  string    `json:"username,omitempty" db:"username"`
	FullName  string    `json:"full_name" db:"full_name"`
	Operator  bool      `json:"operator" db:"operator"`
	Date      string    `json:"date" db:"slot_date"`
	Time      string    `json:"time" db:"slot_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Key returns the key of the slot this booking belongs to.
func (b Booking) Key() SlotKey {
	return SlotKey{Date: b.Date, Time: b.Time}
}

// DisplayName renders the booking's frozen user fields for lists.
func (b Booking) DisplayName() string {
	name := strings.TrimSpace(b.FullName)
	if name == "" {
		name = fmt.Sprintf("id %d", b.UserID)
	}
	if b.Username != "" {
		return fmt.Sprintf("%s (@%s)", name, b.Username)
	}
	return name
}

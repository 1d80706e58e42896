package booking

import (
	"errors"
	"fmt"
)

// Error is a domain failure with a stable machine-readable code. The
// router's summary logging picks the code up via the Code method.
type Error struct {
	code    string
	message string
}

func (e *Error) Error() string { return e.message }

// Code returns the stable error code for logs.
func (e *Error) Code() string { return e.code }

var (
	// ErrNotRegistered is returned when an unregistered user tries to book.
	ErrNotRegistered = &Error{"NOT_REGISTERED", "user is not registered"}
	// ErrAlreadyRegistered is returned when a registered user re-registers.
	ErrAlreadyRegistered = &Error{"ALREADY_REGISTERED", "user is already registered"}
	// ErrUnknownSlot is returned when booking targets a slot that no longer exists.
	ErrUnknownSlot = &Error{"UNKNOWN_SLOT", "no such slot"}
	// ErrSlotFull is returned when a slot has no seats left.
	ErrSlotFull = &Error{"SLOT_FULL", "slot is fully booked"}
	// ErrAlreadyBooked is returned for a duplicate (user, slot) booking when duplicates are disabled.
	ErrAlreadyBooked = &Error{"ALREADY_BOOKED", "user already booked this slot"}

	// ErrUnauthorized is returned when the requester lacks the required privilege.
	ErrUnauthorized = &Error{"UNAUTHORIZED", "requester is not allowed to do this"}
	// ErrAlreadyOperator is returned when the target is already an operator.
	ErrAlreadyOperator = &Error{"ALREADY_OPERATOR", "user is already an operator"}
	// ErrIsOwner is returned when the target of an operator grant is the owner.
	ErrIsOwner = &Error{"IS_OWNER", "user is the owner"}
	// ErrNotOperator is returned when the removal target is not an operator.
	ErrNotOperator = &Error{"NOT_OPERATOR", "user is not an operator"}
	// ErrCannotRemoveOwner is returned when removal targets the owner.
	ErrCannotRemoveOwner = &Error{"CANNOT_REMOVE_OWNER", "the owner cannot be removed"}

	// ErrIndexOutOfRange is returned for an invalid positional slot index.
	ErrIndexOutOfRange = &Error{"INDEX_OUT_OF_RANGE", "slot index out of range"}
	// ErrInvalidDate is returned when a date does not parse as DD.MM.YYYY.
	ErrInvalidDate = &Error{"INVALID_DATE", "date must be in DD.MM.YYYY form"}
	// ErrInvalidTime is returned when a time does not parse as HH:MM.
	ErrInvalidTime = &Error{"INVALID_TIME", "time must be in HH:MM form"}

	// ErrPersist marks a failed durable save. The in-memory mutation has
	// already been applied; memory and the store diverge until the next
	// successful save (the autosave job is the safety net).
	ErrPersist = &Error{"PERSIST_FAILED", "failed to persist collection"}
)

// IsPersist reports whether err stems from a failed durable save rather
// than a domain rule.
func IsPersist(err error) bool {
	return errors.Is(err, ErrPersist)
}

func persistErr(collection string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersist, collection, err)
}

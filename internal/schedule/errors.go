// Package schedule implements the slot and booking consistency engine: a
// craftsman's calendar of non-overlapping time slots, the booking ledger
// with its status state machine, and the coordinator that keeps slot
// availability and booking status from drifting apart under concurrent
// requests. All state is held in memory for the lifetime of the process.
package schedule

import "errors"

// Sentinel errors surfaced by the engine. Handlers compare with errors.Is
// and translate them into 4xx responses; none of them indicate a server
// fault.
var (
	// ErrInvalidInterval is returned when a slot's start is not strictly
	// before its end.
	ErrInvalidInterval = errors.New("start time must be before end time")

	// ErrInPast is returned when creating or booking a slot whose start
	// time has already passed.
	ErrInPast = errors.New("time slot is in the past")

	// ErrOverlap is returned when a new slot would intersect an existing
	// slot of the same craftsman.
	ErrOverlap = errors.New("time slot overlaps with an existing slot")

	// ErrNotFound is returned when no slot or booking matches the given id.
	ErrNotFound = errors.New("not found")

	// ErrWrongProvider is returned when a slot does not belong to the
	// craftsman named in the request.
	ErrWrongProvider = errors.New("time slot does not belong to this craftsman")

	// ErrForbidden is returned when the acting user may not modify the
	// booking (wrong client or wrong craftsman).
	ErrForbidden = errors.New("forbidden")

	// ErrSlotUnavailable is returned when booking a slot that is already
	// claimed by an active booking.
	ErrSlotUnavailable = errors.New("time slot is no longer available")

	// ErrSlotInUse is returned when deleting a slot that an active booking
	// currently holds.
	ErrSlotInUse = errors.New("time slot has an active booking")

	// ErrInvalidTransition is returned for booking status changes not
	// permitted by the state machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)

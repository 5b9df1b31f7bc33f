package schedule

import (
	"strings"
	"time"
)

// Status enumerates the lifecycle states of a booking. The zero-value
// string is never stored; bookings always begin as StatusPending.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusRejected   Status = "Rejected"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// ParseStatus maps a client-supplied string onto its canonical Status,
// ignoring case. The second return is false for unknown values.
func ParseStatus(s string) (Status, bool) {
	for _, known := range []Status{
		StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusRejected,
	} {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Terminal reports whether s is a final state. Terminal bookings never
// change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// Active reports whether a booking in this status currently holds its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

// transitions lists the allowed forward edges of the state machine.
// Identical-status updates on non-terminal bookings are additionally
// accepted as idempotent no-ops; terminal states reject everything.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed:  true,
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusRejected:   true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCompleted:  true,
		StatusCancelled:  true,
		StatusRejected:   true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusRejected:  true,
	},
}

// canTransition reports whether a booking may move from to next.
func canTransition(from, next Status) bool {
	if from.Terminal() {
		return false
	}
	if from == next {
		return true
	}
	return transitions[from][next]
}

// ClientContact carries the contact details captured when a client places
// a booking. The email comes from the authenticated principal, name and
// phone from the request body.
type ClientContact struct {
	Name  string `json:"client_name"`
	Phone string `json:"client_phone"`
	Email string `json:"client_email"`
}

// Booking is one appointment request against a single time slot. Start and
// End are copied from the slot at creation time so the record stays intact
// even if the slot is later deleted.
type Booking struct {
	ID          uint64 `json:"id"`
	CraftsmanID uint64 `json:"craftsman_id"`
	ClientID    uint64 `json:"client_id"`
	ClientContact
	SlotID             uint64    `json:"time_slot_id"`
	Start              time.Time `json:"start_time"`
	End                time.Time `json:"end_time"`
	Status             Status    `json:"status"`
	ServiceDescription string    `json:"service_description"`
	Notes              string    `json:"notes,omitempty"`
	EstimatedPrice     *float64  `json:"estimated_price,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried on the booking.events queue.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published whenever a booking is created or moves through
// the status machine. It carries enough information for downstream
// consumers to log or notify without querying the primary stores.
type BookingEvent struct {
	Kind        string `json:"kind"`
	BookingID   uint64 `json:"booking_id"`
	CraftsmanID uint64 `json:"craftsman_id"`
	ClientID    uint64 `json:"client_id"`
	SlotID      uint64 `json:"slot_id"`
	Status      string `json:"status"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	OccurredAt  string `json:"occurred_at"`
}

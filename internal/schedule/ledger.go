package schedule

import (
	"sort"
	"sync"
	"time"
)

// BookingLedger holds every booking record and enforces the status state
// machine. It never touches the calendar: claiming and releasing slots is
// the Coordinator's job, which calls into the ledger from inside the
// per-craftsman critical section whenever a write also affects a slot.
type BookingLedger struct {
	mu       sync.RWMutex
	bookings map[uint64]*Booking
	nextID   uint64
	now      func() time.Time
}

// NewBookingLedger returns an empty ledger. Pass nil to use time.Now.
func NewBookingLedger(now func() time.Time) *BookingLedger {
	if now == nil {
		now = time.Now
	}
	return &BookingLedger{
		bookings: make(map[uint64]*Booking),
		nextID:   1,
		now:      now,
	}
}

// Create inserts a new Pending booking against the given slot. It is pure
// record creation; the caller has already validated and claimed the slot.
// Start and end are copied from the slot for historical stability.
func (l *BookingLedger) Create(craftsmanID, clientID uint64, contact ClientContact, slotID uint64, start, end time.Time, serviceDescription, notes string) Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	b := &Booking{
		ID:                 l.nextID,
		CraftsmanID:        craftsmanID,
		ClientID:           clientID,
		ClientContact:      contact,
		SlotID:             slotID,
		Start:              start,
		End:                end,
		Status:             StatusPending,
		ServiceDescription: serviceDescription,
		Notes:              notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	l.nextID++
	l.bookings[b.ID] = b
	return *b
}

// SetStatus moves a craftsman's booking to next. It fails with ErrNotFound
// when no booking with that id belongs to the craftsman and with
// ErrInvalidTransition when the state machine forbids the move. Identical
// non-terminal statuses are accepted as idempotent updates. Optional notes
// and estimated price are applied on success.
//
// The returned release flag is true exactly when the booking entered
// Cancelled or Rejected from a non-terminal state, i.e. when its slot must
// be given back.
func (l *BookingLedger) SetStatus(bookingID, craftsmanID uint64, next Status, notes *string, estimatedPrice *float64) (Booking, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok || b.CraftsmanID != craftsmanID {
		return Booking{}, false, ErrNotFound
	}
	if !canTransition(b.Status, next) {
		return Booking{}, false, ErrInvalidTransition
	}

	prev := b.Status
	b.Status = next
	b.UpdatedAt = l.now().UTC()
	if notes != nil && *notes != "" {
		b.Notes = *notes
	}
	if estimatedPrice != nil {
		b.EstimatedPrice = estimatedPrice
	}

	release := prev != next && (next == StatusCancelled || next == StatusRejected)
	return *b, release, nil
}

// Cancel cancels a booking on behalf of its client or its craftsman. Only
// Pending and Confirmed bookings may be cancelled this way; anything else
// fails with ErrInvalidTransition. The wrong actor gets ErrForbidden. On
// success the booking's slot must always be released by the caller.
func (l *BookingLedger) Cancel(bookingID, actorID uint64, actorIsCraftsman bool) (Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return Booking{}, ErrNotFound
	}
	if actorIsCraftsman && b.CraftsmanID != actorID {
		return Booking{}, ErrForbidden
	}
	if !actorIsCraftsman && b.ClientID != actorID {
		return Booking{}, ErrForbidden
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return Booking{}, ErrInvalidTransition
	}

	b.Status = StatusCancelled
	b.UpdatedAt = l.now().UTC()
	return *b, nil
}

// GetByID returns a copy of the booking or ErrNotFound.
func (l *BookingLedger) GetByID(bookingID uint64) (Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return *b, nil
}

// ListByCraftsman returns the craftsman's bookings, most recent
// appointment first.
func (l *BookingLedger) ListByCraftsman(craftsmanID uint64) []Booking {
	return l.list(func(b *Booking) bool { return b.CraftsmanID == craftsmanID })
}

// ListByClient returns the client's bookings, most recent appointment
// first.
func (l *BookingLedger) ListByClient(clientID uint64) []Booking {
	return l.list(func(b *Booking) bool { return b.ClientID == clientID })
}

func (l *BookingLedger) list(match func(*Booking) bool) []Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Booking, 0)
	for _, b := range l.bookings {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out
}

// activeForSlot reports whether any active booking references the slot.
// Coordinator-only; used to validate the cross-store invariant in tests.
func (l *BookingLedger) activeForSlot(slotID uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, b := range l.bookings {
		if b.SlotID == slotID && b.Status.Active() {
			return true
		}
	}
	return false
}

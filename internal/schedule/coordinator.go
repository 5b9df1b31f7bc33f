package schedule

import (
	"sync"
	"time"
)

// Coordinator is the only entry point that crosses the CalendarStore /
// BookingLedger boundary. Every write that both touches a booking and
// claims or releases a slot runs inside a critical section keyed by the
// craftsman, so two concurrent booking attempts against the same slot can
// never both succeed and a slot can never be deleted in the instant it is
// being claimed. Unrelated craftsmen proceed independently.
type Coordinator struct {
	calendar *CalendarStore
	ledger   *BookingLedger
	now      func() time.Time

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewCoordinator builds a coordinator owning a fresh calendar and ledger.
// The now function is injectable for tests; pass nil to use time.Now.
func NewCoordinator(now func() time.Time) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		calendar: NewCalendarStore(now),
		ledger:   NewBookingLedger(now),
		now:      now,
		locks:    make(map[uint64]*sync.Mutex),
	}
}

// craftsmanLock returns the mutex serializing all slot-affecting writes of
// one craftsman, creating it on first use.
func (co *Coordinator) craftsmanLock(craftsmanID uint64) *sync.Mutex {
	co.mu.Lock()
	defer co.mu.Unlock()

	l, ok := co.locks[craftsmanID]
	if !ok {
		l = &sync.Mutex{}
		co.locks[craftsmanID] = l
	}
	return l
}

// CreateSlot adds a slot to the craftsman's calendar. It runs under the
// craftsman's critical section so slot creation is serialized with
// concurrent claims and deletions.
func (co *Coordinator) CreateSlot(craftsmanID uint64, start, end time.Time, description string) (TimeSlot, error) {
	l := co.craftsmanLock(craftsmanID)
	l.Lock()
	defer l.Unlock()

	return co.calendar.CreateSlot(craftsmanID, start, end, description)
}

// DeleteSlot removes an unclaimed slot. Serialized against BookSlot for
// the same craftsman so a slot cannot vanish while it is being claimed.
func (co *Coordinator) DeleteSlot(craftsmanID, slotID uint64) error {
	l := co.craftsmanLock(craftsmanID)
	l.Lock()
	defer l.Unlock()

	return co.calendar.Delete(craftsmanID, slotID)
}

// AvailableSlots lists the craftsman's open future slots, optionally
// filtered by range.
func (co *Coordinator) AvailableSlots(craftsmanID uint64, from, to *time.Time) []TimeSlot {
	return co.calendar.ListAvailable(craftsmanID, from, to)
}

// Slots lists every slot of the craftsman.
func (co *Coordinator) Slots(craftsmanID uint64) []TimeSlot {
	return co.calendar.ListAll(craftsmanID)
}

// SlotByID returns a single slot.
func (co *Coordinator) SlotByID(slotID uint64) (TimeSlot, error) {
	return co.calendar.GetByID(slotID)
}

// BookSlot atomically claims a slot and creates its Pending booking. The
// whole check-and-claim runs under the craftsman's critical section: of N
// concurrent calls against the same slot exactly one wins, the rest fail
// with ErrSlotUnavailable and mutate nothing.
//
// The slot is flipped to unavailable before the booking record is
// inserted, so no concurrent reader can observe an available slot that an
// active booking already references.
func (co *Coordinator) BookSlot(craftsmanID, clientID uint64, contact ClientContact, slotID uint64, serviceDescription, notes string) (Booking, error) {
	l := co.craftsmanLock(craftsmanID)
	l.Lock()
	defer l.Unlock()

	slot, err := co.calendar.GetByID(slotID)
	if err != nil {
		return Booking{}, ErrNotFound
	}
	if slot.CraftsmanID != craftsmanID {
		return Booking{}, ErrWrongProvider
	}
	if !slot.Available {
		return Booking{}, ErrSlotUnavailable
	}
	if !slot.Start.After(co.now()) {
		return Booking{}, ErrInPast
	}

	co.calendar.setAvailability(slotID, false)
	b := co.ledger.Create(craftsmanID, clientID, contact, slotID, slot.Start, slot.End, serviceDescription, notes)
	return b, nil
}

// ChangeStatus advances a booking through the state machine on behalf of
// its craftsman. When the ledger reports a release-triggering transition
// (entering Cancelled or Rejected) the slot is handed back inside the same
// critical section. A slot deleted in the meantime is a silent no-op: that
// can only happen for slots no active booking holds.
func (co *Coordinator) ChangeStatus(bookingID, craftsmanID uint64, next Status, notes *string, estimatedPrice *float64) (Booking, error) {
	l := co.craftsmanLock(craftsmanID)
	l.Lock()
	defer l.Unlock()

	b, release, err := co.ledger.SetStatus(bookingID, craftsmanID, next, notes, estimatedPrice)
	if err != nil {
		return Booking{}, err
	}
	if release {
		co.calendar.setAvailability(b.SlotID, true)
	}
	return b, nil
}

// CancelBooking cancels a Pending or Confirmed booking on behalf of its
// client or craftsman and always releases the slot on success.
func (co *Coordinator) CancelBooking(bookingID, actorID uint64, actorIsCraftsman bool) (Booking, error) {
	// The critical section is keyed by the booking's craftsman, which is
	// immutable, so the lookup outside the lock is safe.
	existing, err := co.ledger.GetByID(bookingID)
	if err != nil {
		return Booking{}, err
	}

	l := co.craftsmanLock(existing.CraftsmanID)
	l.Lock()
	defer l.Unlock()

	b, err := co.ledger.Cancel(bookingID, actorID, actorIsCraftsman)
	if err != nil {
		return Booking{}, err
	}
	co.calendar.setAvailability(b.SlotID, true)
	return b, nil
}

// BookingByID returns a single booking.
func (co *Coordinator) BookingByID(bookingID uint64) (Booking, error) {
	return co.ledger.GetByID(bookingID)
}

// CraftsmanBookings lists a craftsman's bookings, most recent first.
func (co *Coordinator) CraftsmanBookings(craftsmanID uint64) []Booking {
	return co.ledger.ListByCraftsman(craftsmanID)
}

// ClientBookings lists a client's bookings, most recent first.
func (co *Coordinator) ClientBookings(clientID uint64) []Booking {
	return co.ledger.ListByClient(clientID)
}

// consistent checks the cross-store invariant for one slot: available iff
// no active booking references it. Only tests call this; a violation means
// a coordinator bug, never a normal runtime condition.
func (co *Coordinator) consistent(slotID uint64) bool {
	slot, err := co.calendar.GetByID(slotID)
	if err != nil {
		return !co.ledger.activeForSlot(slotID)
	}
	return slot.Available != co.ledger.activeForSlot(slotID)
}

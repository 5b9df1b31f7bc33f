package schedule

import (
	"sort"
	"sync"
	"time"
)

// CalendarStore holds every craftsman's time slots and enforces the
// non-overlap invariant at insertion time. The store is safe for concurrent
// use; the overlap check, the id allocation and the insert all happen under
// one write lock so no interleaving can produce overlapping slots or
// duplicate ids.
//
// setAvailability is deliberately unexported: only the Coordinator in this
// package may flip the Available flag.
type CalendarStore struct {
	mu          sync.RWMutex
	slots       map[uint64]*TimeSlot
	byCraftsman map[uint64][]uint64
	nextID      uint64
	now         func() time.Time
}

// NewCalendarStore returns an empty store. The now function is used for the
// past/future checks; pass nil to use time.Now.
func NewCalendarStore(now func() time.Time) *CalendarStore {
	if now == nil {
		now = time.Now
	}
	return &CalendarStore{
		slots:       make(map[uint64]*TimeSlot),
		byCraftsman: make(map[uint64][]uint64),
		nextID:      1,
		now:         now,
	}
}

// CreateSlot validates and inserts a new slot for the craftsman. It fails
// with ErrInvalidInterval when start >= end, ErrInPast when the slot does
// not lie strictly in the future, and ErrOverlap when the interval
// intersects any existing slot of the same craftsman regardless of that
// slot's availability.
func (s *CalendarStore) CreateSlot(craftsmanID uint64, start, end time.Time, description string) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidInterval
	}
	if !start.After(s.now()) {
		return TimeSlot{}, ErrInPast
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byCraftsman[craftsmanID] {
		other := s.slots[id]
		if overlaps(start, end, other.Start, other.End) {
			return TimeSlot{}, ErrOverlap
		}
	}

	slot := &TimeSlot{
		ID:          s.nextID,
		CraftsmanID: craftsmanID,
		Start:       start,
		End:         end,
		Available:   true,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	s.nextID++
	s.slots[slot.ID] = slot
	s.byCraftsman[craftsmanID] = append(s.byCraftsman[craftsmanID], slot.ID)
	return *slot, nil
}

// ListAvailable returns the craftsman's open future slots ordered by start
// time. The optional from/to filters restrict to slots with start >= from
// and end <= to.
func (s *CalendarStore) ListAvailable(craftsmanID uint64, from, to *time.Time) []TimeSlot {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TimeSlot, 0)
	for _, id := range s.byCraftsman[craftsmanID] {
		slot := s.slots[id]
		if !slot.Available || !slot.Start.After(now) {
			continue
		}
		if from != nil && slot.Start.Before(*from) {
			continue
		}
		if to != nil && slot.End.After(*to) {
			continue
		}
		out = append(out, *slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// ListAll returns every slot of the craftsman ordered by start time,
// including unavailable and past slots.
func (s *CalendarStore) ListAll(craftsmanID uint64) []TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TimeSlot, 0, len(s.byCraftsman[craftsmanID]))
	for _, id := range s.byCraftsman[craftsmanID] {
		out = append(out, *s.slots[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// GetByID returns a copy of the slot or ErrNotFound.
func (s *CalendarStore) GetByID(slotID uint64) (TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return TimeSlot{}, ErrNotFound
	}
	return *slot, nil
}

// Delete removes a slot owned by the craftsman. A slot held by an active
// booking (Available == false) fails with ErrSlotInUse; a missing slot or
// one belonging to another craftsman fails with ErrNotFound.
func (s *CalendarStore) Delete(craftsmanID, slotID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.CraftsmanID != craftsmanID {
		return ErrNotFound
	}
	if !slot.Available {
		return ErrSlotInUse
	}
	delete(s.slots, slotID)
	ids := s.byCraftsman[craftsmanID]
	for i, id := range ids {
		if id == slotID {
			s.byCraftsman[craftsmanID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// setAvailability flips the Available flag and reports whether the slot
// exists. Coordinator-only: this is the claim/release primitive.
func (s *CalendarStore) setAvailability(slotID uint64, available bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return false
	}
	slot.Available = available
	return true
}

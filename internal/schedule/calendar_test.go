package schedule

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// testClock is a movable clock shared by the stores under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// at returns a time h hours after the test clock's base.
func at(h float64) time.Time {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(h * float64(time.Hour)))
}

func TestCreateSlotValidation(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	if _, err := s.CreateSlot(1, at(3), at(2), ""); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("start after end: got %v, want ErrInvalidInterval", err)
	}
	if _, err := s.CreateSlot(1, at(2), at(2), ""); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("zero-length interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := s.CreateSlot(1, at(-1), at(1), ""); !errors.Is(err, ErrInPast) {
		t.Fatalf("past start: got %v, want ErrInPast", err)
	}
	if _, err := s.CreateSlot(1, at(0), at(1), ""); !errors.Is(err, ErrInPast) {
		t.Fatalf("start == now: got %v, want ErrInPast", err)
	}

	slot, err := s.CreateSlot(1, at(2), at(3), "pipe repair")
	if err != nil {
		t.Fatalf("valid slot: %v", err)
	}
	if !slot.Available {
		t.Fatal("new slot must be available")
	}
	if slot.ID == 0 {
		t.Fatal("slot id not assigned")
	}
}

func TestCreateSlotOverlap(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	first, err := s.CreateSlot(1, at(2), at(3), "")
	if err != nil {
		t.Fatalf("first slot: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"straddles start", at(1.5), at(2.5)},
		{"straddles end", at(2.5), at(3.5)},
		{"contained", at(2.25), at(2.75)},
		{"contains", at(1), at(4)},
		{"identical", at(2), at(3)},
	}
	for _, tc := range cases {
		if _, err := s.CreateSlot(1, tc.start, tc.end, ""); !errors.Is(err, ErrOverlap) {
			t.Errorf("%s: got %v, want ErrOverlap", tc.name, err)
		}
	}

	// Touching endpoints are fine; half-open intervals do not overlap there.
	if _, err := s.CreateSlot(1, at(3), at(4), ""); err != nil {
		t.Fatalf("touching slot: %v", err)
	}
	// Other craftsmen are unaffected.
	if _, err := s.CreateSlot(2, at(2), at(3), ""); err != nil {
		t.Fatalf("other craftsman: %v", err)
	}

	// The overlap check considers unavailable slots too.
	s.setAvailability(first.ID, false)
	if _, err := s.CreateSlot(1, at(2.25), at(2.75), ""); !errors.Is(err, ErrOverlap) {
		t.Fatalf("overlap with claimed slot: got %v, want ErrOverlap", err)
	}
}

func TestListAvailable(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	late, _ := s.CreateSlot(1, at(6), at(7), "")
	early, _ := s.CreateSlot(1, at(2), at(3), "")
	mid, _ := s.CreateSlot(1, at(4), at(5), "")
	s.setAvailability(mid.ID, false)

	got := s.ListAvailable(1, nil, nil)
	if len(got) != 2 || got[0].ID != early.ID || got[1].ID != late.ID {
		t.Fatalf("expected [early late], got %+v", got)
	}

	// Range filters: start >= from and end <= to.
	from, to := at(3), at(7)
	got = s.ListAvailable(1, &from, &to)
	if len(got) != 1 || got[0].ID != late.ID {
		t.Fatalf("range filter: expected [late], got %+v", got)
	}

	// Slots whose start has passed drop out of the listing.
	clock.Advance(3 * time.Hour) // now = base+3h, early starts at +2h
	got = s.ListAvailable(1, nil, nil)
	if len(got) != 1 || got[0].ID != late.ID {
		t.Fatalf("future-only filter: expected [late], got %+v", got)
	}
}

func TestListAllAndGetByID(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	b, _ := s.CreateSlot(1, at(4), at(5), "")
	a, _ := s.CreateSlot(1, at(2), at(3), "")
	s.setAvailability(a.ID, false)

	all := s.ListAll(1)
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != b.ID {
		t.Fatalf("expected [a b] ordered by start, got %+v", all)
	}

	got, err := s.GetByID(a.ID)
	if err != nil || got.ID != a.ID || got.Available {
		t.Fatalf("GetByID: got %+v, %v", got, err)
	}
	if _, err := s.GetByID(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing slot: got %v, want ErrNotFound", err)
	}
}

func TestDeleteSlot(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	slot, _ := s.CreateSlot(1, at(2), at(3), "")

	if err := s.Delete(1, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing slot: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(2, slot.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong craftsman: got %v, want ErrNotFound", err)
	}

	s.setAvailability(slot.ID, false)
	if err := s.Delete(1, slot.ID); !errors.Is(err, ErrSlotInUse) {
		t.Fatalf("claimed slot: got %v, want ErrSlotInUse", err)
	}

	s.setAvailability(slot.ID, true)
	if err := s.Delete(1, slot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByID(slot.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("slot still present after delete")
	}
}

// TestConcurrentCreateNoOverlap hammers CreateSlot with overlapping
// candidate intervals from many goroutines and verifies that the stored
// calendar never contains an overlapping pair.
func TestConcurrentCreateNoOverlap(t *testing.T) {
	clock := newTestClock()
	s := NewCalendarStore(clock.Now)

	const workers = 64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			// Consecutive candidates overlap by 30 minutes, so only a
			// subset can win.
			start := at(1 + 0.5*float64(i))
			end := start.Add(time.Hour)
			_, _ = s.CreateSlot(7, start, end, "")
		}(i)
	}
	wg.Wait()

	slots := s.ListAll(7)
	if len(slots) == 0 {
		t.Fatal("no slot was created")
	}
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if overlaps(slots[i].Start, slots[i].End, slots[j].Start, slots[j].End) {
				t.Fatalf("overlapping slots stored: %+v and %+v", slots[i], slots[j])
			}
		}
	}

	// Ids must be unique even under concurrent allocation.
	seen := make(map[uint64]bool, len(slots))
	for _, slot := range slots {
		if seen[slot.ID] {
			t.Fatalf("duplicate slot id %d", slot.ID)
		}
		seen[slot.ID] = true
	}
}

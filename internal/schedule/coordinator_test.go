package schedule

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func testContact() ClientContact {
	return ClientContact{Name: "Ada Client", Phone: "+49151000", Email: "ada@example.com"}
}

// TestBookSlotLifecycle walks the canonical flow: claim, losing rebook,
// cancel-release, successful rebook.
func TestBookSlotLifecycle(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, err := co.CreateSlot(1, at(2), at(3), "kitchen sink")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	b, err := co.BookSlot(1, 10, testContact(), slot.ID, "fix the sink", "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("new booking status: %s", b.Status)
	}
	if b.Start != slot.Start || b.End != slot.End {
		t.Fatal("booking must copy the slot interval")
	}
	got, _ := co.SlotByID(slot.ID)
	if got.Available {
		t.Fatal("claimed slot still available")
	}
	if !co.consistent(slot.ID) {
		t.Fatal("invariant broken after claim")
	}

	if _, err := co.BookSlot(1, 11, testContact(), slot.ID, "also the sink", ""); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("second booking: got %v, want ErrSlotUnavailable", err)
	}

	if _, err := co.ChangeStatus(b.ID, 1, StatusCancelled, nil, nil); err != nil {
		t.Fatalf("cancel via status: %v", err)
	}
	got, _ = co.SlotByID(slot.ID)
	if !got.Available {
		t.Fatal("slot not released after cancellation")
	}
	if !co.consistent(slot.ID) {
		t.Fatal("invariant broken after release")
	}

	if _, err := co.BookSlot(1, 11, testContact(), slot.ID, "second attempt", ""); err != nil {
		t.Fatalf("rebook released slot: %v", err)
	}
}

func TestBookSlotValidation(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")

	if _, err := co.BookSlot(1, 10, testContact(), 999, "x", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing slot: got %v, want ErrNotFound", err)
	}
	if _, err := co.BookSlot(2, 10, testContact(), slot.ID, "x", ""); !errors.Is(err, ErrWrongProvider) {
		t.Fatalf("wrong craftsman: got %v, want ErrWrongProvider", err)
	}

	clock.Advance(2 * time.Hour) // now == slot start
	if _, err := co.BookSlot(1, 10, testContact(), slot.ID, "x", ""); !errors.Is(err, ErrInPast) {
		t.Fatalf("slot start reached: got %v, want ErrInPast", err)
	}
	// A failed booking leaves the slot untouched.
	got, _ := co.SlotByID(slot.ID)
	if !got.Available {
		t.Fatal("failed booking mutated the slot")
	}
}

// TestConcurrentBookSlot is the no-double-booking property: N racing calls
// against one slot yield exactly one success and N-1 ErrSlotUnavailable.
func TestConcurrentBookSlot(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, err := co.CreateSlot(1, at(2), at(3), "")
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	const workers = 48
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(client uint64) {
			defer wg.Done()
			_, err := co.BookSlot(1, client, testContact(), slot.ID, "race", "")
			errs <- err
		}(uint64(100 + i))
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != workers-1 {
		t.Fatalf("got %d wins / %d losses, want 1 / %d", wins, losses, workers-1)
	}
	if !co.consistent(slot.ID) {
		t.Fatal("invariant broken after race")
	}
	if got := co.CraftsmanBookings(1); len(got) != 1 {
		t.Fatalf("expected a single booking record, got %d", len(got))
	}
}

func TestChangeStatusRelease(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")
	b, _ := co.BookSlot(1, 10, testContact(), slot.ID, "x", "")

	// Confirming keeps the claim.
	if _, err := co.ChangeStatus(b.ID, 1, StatusConfirmed, nil, nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got, _ := co.SlotByID(slot.ID); got.Available {
		t.Fatal("confirm must not release the slot")
	}

	// Rejecting releases it.
	if _, err := co.ChangeStatus(b.ID, 1, StatusRejected, nil, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got, _ := co.SlotByID(slot.ID); !got.Available {
		t.Fatal("reject must release the slot")
	}
	if !co.consistent(slot.ID) {
		t.Fatal("invariant broken")
	}
}

// TestCompletedKeepsSlotClaimed pins the reference behavior: completion is
// terminal but never hands the slot back.
func TestCompletedKeepsSlotClaimed(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")
	b, _ := co.BookSlot(1, 10, testContact(), slot.ID, "x", "")
	if _, err := co.ChangeStatus(b.ID, 1, StatusInProgress, nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := co.ChangeStatus(b.ID, 1, StatusCompleted, nil, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got, _ := co.SlotByID(slot.ID); got.Available {
		t.Fatal("completed booking must not release the slot")
	}
}

// TestNoDoubleRelease checks that a dead booking can never free a slot that
// a newer booking has since claimed.
func TestNoDoubleRelease(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")
	first, _ := co.BookSlot(1, 10, testContact(), slot.ID, "x", "")
	if _, err := co.CancelBooking(first.ID, 10, false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	second, err := co.BookSlot(1, 11, testContact(), slot.ID, "y", "")
	if err != nil {
		t.Fatalf("rebook: %v", err)
	}

	// Every path that could re-release via the first booking must fail and
	// leave the second booking's claim intact.
	if _, err := co.CancelBooking(first.ID, 10, false); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("re-cancel: got %v, want ErrInvalidTransition", err)
	}
	if _, err := co.ChangeStatus(first.ID, 1, StatusCancelled, nil, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("re-cancel via status: got %v, want ErrInvalidTransition", err)
	}
	got, _ := co.SlotByID(slot.ID)
	if got.Available {
		t.Fatal("stale booking released a re-claimed slot")
	}
	if b, _ := co.BookingByID(second.ID); b.Status != StatusPending {
		t.Fatalf("second booking drifted: %s", b.Status)
	}
}

func TestCancelBookingActors(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")
	b, _ := co.BookSlot(1, 10, testContact(), slot.ID, "x", "")

	if _, err := co.CancelBooking(999, 10, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing booking: got %v, want ErrNotFound", err)
	}
	if _, err := co.CancelBooking(b.ID, 11, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign client: got %v, want ErrForbidden", err)
	}
	if _, err := co.CancelBooking(b.ID, 2, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign craftsman: got %v, want ErrForbidden", err)
	}
	// The slot stays claimed through all the failures above.
	if got, _ := co.SlotByID(slot.ID); got.Available {
		t.Fatal("failed cancels released the slot")
	}

	if _, err := co.CancelBooking(b.ID, 1, true); err != nil {
		t.Fatalf("craftsman cancel: %v", err)
	}
	if got, _ := co.SlotByID(slot.ID); !got.Available {
		t.Fatal("slot not released")
	}
}

func TestDeleteSlotVersusBooking(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	slot, _ := co.CreateSlot(1, at(2), at(3), "")
	b, _ := co.BookSlot(1, 10, testContact(), slot.ID, "x", "")

	if err := co.DeleteSlot(1, slot.ID); !errors.Is(err, ErrSlotInUse) {
		t.Fatalf("delete claimed slot: got %v, want ErrSlotInUse", err)
	}

	if _, err := co.CancelBooking(b.ID, 10, false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := co.DeleteSlot(1, slot.ID); err != nil {
		t.Fatalf("delete released slot: %v", err)
	}
	if _, err := co.BookSlot(1, 10, testContact(), slot.ID, "x", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("book deleted slot: got %v, want ErrNotFound", err)
	}

	// The booking record keeps its copied interval after the slot is gone.
	got, err := co.BookingByID(b.ID)
	if err != nil || got.Start != slot.Start || got.End != slot.End {
		t.Fatalf("booking lost its interval: %+v, %v", got, err)
	}
}

// TestInvariantUnderMixedLoad drives concurrent bookings, cancellations and
// status changes across several craftsmen and then verifies the
// availability invariant for every slot.
func TestInvariantUnderMixedLoad(t *testing.T) {
	clock := newTestClock()
	co := NewCoordinator(clock.Now)

	type target struct{ craftsman, slot uint64 }
	var targets []target
	for c := uint64(1); c <= 4; c++ {
		for i := 0; i < 5; i++ {
			slot, err := co.CreateSlot(c, at(float64(2+2*i)), at(float64(3+2*i)), "")
			if err != nil {
				t.Fatalf("create slot: %v", err)
			}
			targets = append(targets, target{c, slot.ID})
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			client := uint64(1000 + w)
			for i, tg := range targets {
				b, err := co.BookSlot(tg.craftsman, client, testContact(), tg.slot, "load", "")
				if err != nil {
					continue
				}
				switch (w + i) % 3 {
				case 0:
					_, _ = co.CancelBooking(b.ID, client, false)
				case 1:
					_, _ = co.ChangeStatus(b.ID, tg.craftsman, StatusRejected, nil, nil)
				case 2:
					_, _ = co.ChangeStatus(b.ID, tg.craftsman, StatusConfirmed, nil, nil)
				}
			}
		}(w)
	}
	wg.Wait()

	for _, tg := range targets {
		if !co.consistent(tg.slot) {
			t.Fatalf("invariant broken for slot %d", tg.slot)
		}
	}
}

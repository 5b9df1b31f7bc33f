package schedule

import "time"

// TimeSlot is one bookable window on a craftsman's calendar. Intervals are
// half-open [Start, End): two slots of the same craftsman may touch at an
// endpoint but never overlap.
//
// Available is derived state owned by the Coordinator: it is false exactly
// while an active booking references the slot. Nothing outside this package
// may flip it, which is what keeps the calendar and the ledger consistent.
type TimeSlot struct {
	ID          uint64    `json:"id"`
	CraftsmanID uint64    `json:"craftsman_id"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	Available   bool      `json:"is_available"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// overlaps reports whether [s1,e1) and [s2,e2) intersect. Touching
// endpoints do not count as overlap.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

package model

import "time"

// ServiceCategory classifies the trade a craftsman offers. Stored as a
// plain string in the craftsmen table.
type ServiceCategory string

const (
	CategoryElectrician ServiceCategory = "Electrician"
	CategoryPlumber     ServiceCategory = "Plumber"
	CategoryCarpenter   ServiceCategory = "Carpenter"
	CategoryPainter     ServiceCategory = "Painter"
	CategoryMason       ServiceCategory = "Mason"
	CategoryLocksmith   ServiceCategory = "Locksmith"
	CategoryGardener    ServiceCategory = "Gardener"
	CategoryCleaner     ServiceCategory = "Cleaner"
	CategoryMechanic    ServiceCategory = "Mechanic"
	CategoryOther       ServiceCategory = "Other"
)

// Valid reports whether c is a known category.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryElectrician, CategoryPlumber, CategoryCarpenter,
		CategoryPainter, CategoryMason, CategoryLocksmith,
		CategoryGardener, CategoryCleaner, CategoryMechanic, CategoryOther:
		return true
	}
	return false
}

// Craftsman is a provider profile. A user with the CRAFTSMAN role owns at
// most one profile; the profile id (not the user id) is what slots and
// bookings reference. AverageRating and RatingCount are aggregates computed
// from the ratings table on read.
type Craftsman struct {
	ID             uint64          `json:"id"`
	UserID         uint64          `json:"user_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Qualifications string          `json:"qualifications"`
	WorkingHours   string          `json:"working_hours"`
	Category       ServiceCategory `json:"category"`
	Location       string          `json:"location"`
	AverageRating  float64         `json:"average_rating"`
	RatingCount    uint32          `json:"rating_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SearchFilters narrows the public craftsman listing. Zero values mean
// "no filter".
type SearchFilters struct {
	Category   ServiceCategory
	Location   string
	MinRating  *float64
	SearchTerm string
}

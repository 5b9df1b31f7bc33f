package model

import "time"

// Rating is one client's review of a craftsman. Each (craftsman, client)
// pair holds at most one rating; submitting again overwrites stars and
// comment.
type Rating struct {
	ID          uint64    `json:"id"`
	CraftsmanID uint64    `json:"craftsman_id"`
	ClientID    uint64    `json:"client_id"`
	ClientEmail string    `json:"client_email"`
	Stars       int       `json:"stars"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

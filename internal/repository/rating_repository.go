package repository

import (
	"context"
	"database/sql"

	"github.com/craftlink/appointments/internal/model"
)

// RatingRepo stores client reviews of craftsmen. A unique index over
// (craftsman_id, client_id) enforces the one-rating-per-client rule; a
// repeat submission overwrites stars and comment in place.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert inserts the rating or, when the client already rated this
// craftsman, replaces stars, comment and timestamp. The stored row is
// returned.
func (r *RatingRepo) Upsert(ctx context.Context, m *model.Rating) (model.Rating, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO ratings (craftsman_id, client_id, client_email, stars, comment)
         VALUES (?,?,?,?,?)
         ON DUPLICATE KEY UPDATE stars=VALUES(stars), comment=VALUES(comment), created_at=NOW()`,
		m.CraftsmanID, m.ClientID, m.ClientEmail, m.Stars, m.Comment)
	if err != nil {
		return model.Rating{}, err
	}
	var out model.Rating
	err = r.DB.QueryRowContext(ctx,
		`SELECT id, craftsman_id, client_id, client_email, stars, comment, created_at
         FROM ratings WHERE craftsman_id=? AND client_id=? LIMIT 1`,
		m.CraftsmanID, m.ClientID).
		Scan(&out.ID, &out.CraftsmanID, &out.ClientID, &out.ClientEmail, &out.Stars, &out.Comment, &out.CreatedAt)
	return out, err
}

// ListForCraftsman returns all ratings of a craftsman, newest first.
func (r *RatingRepo) ListForCraftsman(ctx context.Context, craftsmanID uint64) ([]model.Rating, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, craftsman_id, client_id, client_email, stars, comment, created_at
         FROM ratings WHERE craftsman_id=? ORDER BY created_at DESC`, craftsmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Rating, 0)
	for rows.Next() {
		var m model.Rating
		if err := rows.Scan(&m.ID, &m.CraftsmanID, &m.ClientID, &m.ClientEmail, &m.Stars, &m.Comment, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetForClient returns the client's existing rating of a craftsman, or
// sql.ErrNoRows when none exists.
func (r *RatingRepo) GetForClient(ctx context.Context, craftsmanID, clientID uint64) (model.Rating, error) {
	var m model.Rating
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, craftsman_id, client_id, client_email, stars, comment, created_at
         FROM ratings WHERE craftsman_id=? AND client_id=? LIMIT 1`,
		craftsmanID, clientID).
		Scan(&m.ID, &m.CraftsmanID, &m.ClientID, &m.ClientEmail, &m.Stars, &m.Comment, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Rating{}, sql.ErrNoRows
	}
	return m, err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/craftlink/appointments/internal/model"
)

// CraftsmanRepo provides CRUD and search over craftsman profiles. Rating
// aggregates (average, count) are joined in on every read so listings and
// search can filter on them without a second query.
type CraftsmanRepo struct{ DB *sql.DB }

func NewCraftsmanRepo(db *sql.DB) *CraftsmanRepo { return &CraftsmanRepo{DB: db} }

var ErrCraftsmanNotFound = errors.New("craftsman not found")

const craftsmanColumns = `c.id, c.user_id, c.name, c.email, c.phone, c.qualifications,
       c.working_hours, c.category, c.location,
       COALESCE(AVG(r.stars), 0), COUNT(r.id),
       c.created_at, c.updated_at`

const craftsmanFrom = ` FROM craftsmen c LEFT JOIN ratings r ON r.craftsman_id = c.id `

func scanCraftsman(row interface{ Scan(...interface{}) error }) (model.Craftsman, error) {
	var m model.Craftsman
	var category string
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Phone, &m.Qualifications,
		&m.WorkingHours, &category, &m.Location,
		&m.AverageRating, &m.RatingCount,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Craftsman{}, err
	}
	m.Category = model.ServiceCategory(category)
	return m, nil
}

// Create inserts a new profile for the user. Each user may own exactly one
// profile; a duplicate insert fails with ErrConflict.
func (r *CraftsmanRepo) Create(ctx context.Context, m *model.Craftsman) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO craftsmen (user_id, name, email, phone, qualifications, working_hours, category, location)
         VALUES (?,?,?,?,?,?,?,?)`,
		m.UserID, m.Name, m.Email, m.Phone, m.Qualifications, m.WorkingHours, string(m.Category), m.Location)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update rewrites the mutable profile fields of the user's profile and
// returns the fresh row. ErrCraftsmanNotFound when the user has no profile.
func (r *CraftsmanRepo) Update(ctx context.Context, userID uint64, m *model.Craftsman) (model.Craftsman, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE craftsmen SET name=?, phone=?, qualifications=?, working_hours=?, category=?, location=?
         WHERE user_id=?`,
		m.Name, m.Phone, m.Qualifications, m.WorkingHours, string(m.Category), m.Location, userID)
	if err != nil {
		return model.Craftsman{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero affected rows is ambiguous (no row vs. identical values),
		// so fall through to the read and let it decide.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return model.Craftsman{}, err
		}
	}
	return r.GetByUserID(ctx, userID)
}

// GetByUserID returns the profile owned by the given user.
func (r *CraftsmanRepo) GetByUserID(ctx context.Context, userID uint64) (model.Craftsman, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+craftsmanColumns+craftsmanFrom+"WHERE c.user_id=? GROUP BY c.id", userID)
	m, err := scanCraftsman(row)
	if err == sql.ErrNoRows {
		return model.Craftsman{}, ErrCraftsmanNotFound
	}
	return m, err
}

// GetByID returns the profile with the given profile id.
func (r *CraftsmanRepo) GetByID(ctx context.Context, id uint64) (model.Craftsman, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+craftsmanColumns+craftsmanFrom+"WHERE c.id=? GROUP BY c.id", id)
	m, err := scanCraftsman(row)
	if err == sql.ErrNoRows {
		return model.Craftsman{}, ErrCraftsmanNotFound
	}
	return m, err
}

// Search lists profiles matching the filters, ordered by average rating
// descending then name. All filters are optional and combine with AND.
func (r *CraftsmanRepo) Search(ctx context.Context, f model.SearchFilters) ([]model.Craftsman, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Category != "" {
		where = append(where, "c.category = ?")
		args = append(args, string(f.Category))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, "c.location LIKE ?")
		args = append(args, "%"+loc+"%")
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		where = append(where, "(c.name LIKE ? OR c.qualifications LIKE ?)")
		args = append(args, "%"+term+"%", "%"+term+"%")
	}

	q := "SELECT " + craftsmanColumns + craftsmanFrom
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + " "
	}
	q += "GROUP BY c.id "
	if f.MinRating != nil {
		q += "HAVING COALESCE(AVG(r.stars), 0) >= ? "
		args = append(args, *f.MinRating)
	}
	q += "ORDER BY COALESCE(AVG(r.stars), 0) DESC, c.name ASC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Craftsman, 0)
	for rows.Next() {
		m, err := scanCraftsman(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

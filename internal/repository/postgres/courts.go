package postgresrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type CourtRepo struct {
	db DB
}

const courtColumns = `id, owner_id, name, location, address, price_per_hour, status,
	type, surface, is_featured, operating_hours, max_players, description,
	created_at, updated_at`

func courtDest(c *domain.Court) []any {
	return []any{
		&c.ID, &c.OwnerID, &c.Name, &c.Location, &c.Address, &c.PricePerHour, &c.Status,
		&c.Type, &c.Surface, &c.Featured, &c.OperatingHours, &c.MaxPlayers, &c.Description,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

func (r *CourtRepo) Create(ctx context.Context, c *domain.Court) error {
	const op = "postgresrepo.CourtRepo.Create"

	if c.OperatingHours == nil {
		c.OperatingHours = domain.OperatingHours{}
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO courts(
			owner_id, name, location, address, price_per_hour, status, type,
			surface, is_featured, operating_hours, max_players, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		c.OwnerID, c.Name, c.Location, c.Address, c.PricePerHour, c.Status, c.Type,
		c.Surface, c.Featured, c.OperatingHours, c.MaxPlayers, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get retrieves a court by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the court is not found.
func (r *CourtRepo) Get(ctx context.Context, id int64) (*domain.Court, error) {
	const op = "postgresrepo.CourtRepo.Get"

	var c domain.Court
	if err := r.db.QueryRow(ctx,
		`SELECT `+courtColumns+` FROM courts WHERE id = $1 AND archived_at IS NULL`, id,
	).Scan(courtDest(&c)...); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &c, nil
}

func (r *CourtRepo) List(ctx context.Context, f domain.CourtFilter) ([]domain.Court, error) {
	const op = "postgresrepo.CourtRepo.List"

	var (
		conds = []string{"archived_at IS NULL"}
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.City != "" {
		add("lower(address->>'city') = lower($%d)", f.City)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Surface != "" {
		add("surface = $%d", f.Surface)
	}
	if f.Featured != nil {
		add("is_featured = $%d", *f.Featured)
	}
	if f.OwnerID != 0 {
		add("owner_id = $%d", f.OwnerID)
	}

	q := `SELECT ` + courtColumns + ` FROM courts WHERE ` + strings.Join(conds, " AND ")

	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY is_featured DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Court
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(courtDest(&c)...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *CourtRepo) UpdateStatus(ctx context.Context, id int64, status domain.CourtStatus) error {
	const op = "postgresrepo.CourtRepo.UpdateStatus"

	tag, err := r.db.Exec(ctx,
		`UPDATE courts SET status = $2, updated_at = now() WHERE id = $1 AND archived_at IS NULL`,
		id, status,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *CourtRepo) SetFeatured(ctx context.Context, id int64, featured bool) error {
	const op = "postgresrepo.CourtRepo.SetFeatured"

	tag, err := r.db.Exec(ctx,
		`UPDATE courts SET is_featured = $2, updated_at = now() WHERE id = $1 AND archived_at IS NULL`,
		id, featured,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes a court. Bookings reference courts with ON DELETE RESTRICT,
// so a court with booking history is archived instead: it disappears from
// reads but its past bookings keep their court.
func (r *CourtRepo) Delete(ctx context.Context, id int64) (archived bool, err error) {
	const op = "postgresrepo.CourtRepo.Delete"

	var referenced bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE court_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return false, wrapDBErr(op, err)
	}

	q := `DELETE FROM courts WHERE id = $1 AND archived_at IS NULL`
	if referenced {
		q = `UPDATE courts SET archived_at = now(), is_featured = false, updated_at = now()
		 WHERE id = $1 AND archived_at IS NULL`
	}

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return referenced, nil
}

package postgresrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type PromoCodeRepo struct {
	db DB
}

const promoColumns = `id, court_id, code, discount_type, discount_value, starts_at, ends_at,
	usage_limit, used_count, created_at`

func promoDest(p *domain.PromoCode) []any {
	return []any{
		&p.ID, &p.CourtID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.StartsAt, &p.EndsAt,
		&p.UsageLimit, &p.UsedCount, &p.CreatedAt,
	}
}

func (r *PromoCodeRepo) Create(ctx context.Context, p *domain.PromoCode) error {
	const op = "postgresrepo.PromoCodeRepo.Create"

	err := r.db.QueryRow(ctx,
		`INSERT INTO promo_codes(court_id, code, discount_type, discount_value, starts_at, ends_at, usage_limit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, used_count, created_at`,
		p.CourtID, p.Code, p.DiscountType, p.DiscountValue, p.StartsAt, p.EndsAt, p.UsageLimit,
	).Scan(&p.ID, &p.UsedCount, &p.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PromoCodeRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	const op = "postgresrepo.PromoCodeRepo.GetByCode"

	var p domain.PromoCode
	err := r.db.QueryRow(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE lower(code) = lower($1)`, code,
	).Scan(promoDest(&p)...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

func (r *PromoCodeRepo) ListForCourt(ctx context.Context, courtID int64) ([]domain.PromoCode, error) {
	const op = "postgresrepo.PromoCodeRepo.ListForCourt"

	rows, err := r.db.Query(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE court_id = $1 ORDER BY id`, courtID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PromoCode, error) {
		var p domain.PromoCode
		err := row.Scan(promoDest(&p)...)
		return p, err
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *PromoCodeRepo) Redeem(ctx context.Context, id int64, now time.Time) error {
	const op = "postgresrepo.PromoCodeRepo.Redeem"

	tag, err := r.db.Exec(ctx,
		`UPDATE promo_codes
		 SET used_count = used_count + 1
		 WHERE id = $1 AND used_count < usage_limit AND starts_at <= $2 AND ends_at >= $2`,
		id, now,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
	}

	return nil
}

package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type BookingRepo struct {
	db DB
}

const bookingColumns = `b.id, b.court_id, b.user_id, b.slot_date, b.slot_time, b.duration,
	b.players, b.total_amount, b.promo_code, b.discount_amount, b.status,
	b.hold_expires_at, b.payment_proof_url, b.payment_method, b.notes,
	b.cancellation_reason, b.refund_amount, b.refund_status, b.created_at, b.updated_at`

const bookingDetailColumns = bookingColumns + `,
	c.name, c.location, c.price_per_hour, c.owner_id,
	u.name, u.email, u.phone`

const bookingJoins = `FROM bookings b
	JOIN courts c ON c.id = b.court_id
	JOIN users u ON u.id = b.user_id`

func bookingDest(b *domain.Booking) []any {
	return []any{
		&b.ID, &b.CourtID, &b.UserID, &b.Date, &b.Time, &b.Duration,
		&b.Players, &b.TotalAmount, &b.PromoCode, &b.DiscountAmount, &b.Status,
		&b.HoldExpiresAt, &b.PaymentProofURL, &b.PaymentMethod, &b.Notes,
		&b.CancellationReason, &b.RefundAmount, &b.RefundStatus, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBookingDetail(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	c := &domain.CourtSummary{}
	u := &domain.UserSummary{}

	dest := append(bookingDest(&b),
		&c.Name, &c.Location, &c.PricePerHour, &c.OwnerID,
		&u.Name, &u.Email, &u.Phone,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	c.ID = b.CourtID
	u.ID = b.UserID
	b.Court = c
	b.User = u

	return &b, nil
}

// Create inserts a booking.
//
// Returns:
//   - error: repository.ErrConflict if an active booking already holds the slot.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgresrepo.BookingRepo.Create"

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO bookings(
			id, court_id, user_id, slot_date, slot_time, duration, players,
			total_amount, promo_code, discount_amount, status, hold_expires_at,
			payment_proof_url, payment_method, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING refund_amount, refund_status, created_at, updated_at`,
		b.ID, b.CourtID, b.UserID, b.Date, b.Time, b.Duration, b.Players,
		b.TotalAmount, b.PromoCode, b.DiscountAmount, b.Status, b.HoldExpiresAt,
		b.PaymentProofURL, b.PaymentMethod, b.Notes,
	).Scan(&b.RefundAmount, &b.RefundStatus, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get returns a booking with its court and user summaries.
//
// Returns:
//   - error: repository.ErrNotFound if no booking has the ID.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.Get"

	b, err := scanBookingDetail(r.db.QueryRow(ctx,
		`SELECT `+bookingDetailColumns+` `+bookingJoins+` WHERE b.id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

func (r *BookingRepo) ActiveOnDate(ctx context.Context, courtID int64, date string) ([]domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.ActiveOnDate"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 WHERE b.court_id = $1 AND b.slot_date = $2 AND b.status = ANY($3)
		 ORDER BY b.slot_time`,
		courtID, date, activeStatusArgs(),
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(bookingDest(&b)...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Transition writes the lifecycle fields of b guarded by the expected status.
//
// Returns:
//   - error: repository.ErrStaleState if the stored status is no longer from.
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) Transition(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	const op = "postgresrepo.BookingRepo.Transition"

	err := r.db.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $2,
		     payment_proof_url = $3,
		     cancellation_reason = $4,
		     refund_amount = $5,
		     refund_status = $6,
		     updated_at = now()
		 WHERE id = $1 AND status = $7
		 RETURNING updated_at`,
		b.ID, b.Status, b.PaymentProofURL, b.CancellationReason,
		b.RefundAmount, b.RefundStatus, from,
	).Scan(&b.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return wrapDBErr(op, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, b.ID,
	).Scan(&exists); err != nil {
		return wrapDBErr(op, err)
	}

	if !exists {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
}

func (r *BookingRepo) ExpireHold(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	const op = "postgresrepo.BookingRepo.ExpireHold"

	tag, err := r.db.Exec(ctx,
		`UPDATE bookings
		 SET status = 'expired', updated_at = now()
		 WHERE id = $1 AND status = 'hold' AND hold_expires_at < $2`,
		id, now,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *BookingRepo) OverdueHolds(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const op = "postgresrepo.BookingRepo.OverdueHolds"

	rows, err := r.db.Query(ctx,
		`SELECT id FROM bookings
		 WHERE status = 'hold' AND hold_expires_at < $1
		 ORDER BY hold_expires_at
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return ids, nil
}

func (r *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error) {
	const op = "postgresrepo.BookingRepo.List"

	where, args := bookingWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) `+bookingJoins+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingDetailColumns+` `+bookingJoins+where+
			fmt.Sprintf(` ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBookingDetail(rows)
		if err != nil {
			return nil, 0, wrapDBErr(op, err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	return out, total, nil
}

func (r *BookingRepo) Stats(ctx context.Context, f domain.BookingFilter) (*domain.BookingStats, error) {
	const op = "postgresrepo.BookingRepo.Stats"

	where, args := bookingWhere(f)

	rows, err := r.db.Query(ctx,
		`SELECT b.status, count(*), COALESCE(sum(b.total_amount), 0) `+
			bookingJoins+where+` GROUP BY b.status ORDER BY b.status`,
		args...,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	stats := &domain.BookingStats{}
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count, &sc.Amount); err != nil {
			return nil, wrapDBErr(op, err)
		}
		stats.Total += sc.Count
		if sc.Status == domain.BookingConfirmed {
			stats.Revenue = sc.Amount
		}
		stats.ByStatus = append(stats.ByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return stats, nil
}

func (r *BookingRepo) CountActiveForCourt(ctx context.Context, courtID int64) (int64, error) {
	const op = "postgresrepo.BookingRepo.CountActiveForCourt"

	var n int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE court_id = $1 AND status = ANY($2)`,
		courtID, activeStatusArgs(),
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.BookingRepo.Delete"

	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func activeStatusArgs() []string {
	out := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

func bookingWhere(f domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != 0 {
		add("b.user_id = $%d", f.UserID)
	}
	if f.OwnerID != 0 {
		add("c.owner_id = $%d", f.OwnerID)
	}
	if f.CourtID != 0 {
		add("b.court_id = $%d", f.CourtID)
	}
	if f.Status != "" {
		add("b.status = $%d", f.Status)
	}
	if f.Date != "" {
		add("b.slot_date = $%d", f.Date)
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

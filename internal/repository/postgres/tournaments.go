package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type TournamentRepo struct {
	db DB
}

const tournamentColumns = `id, organizer_id, title, location, start_date,
	registration_deadline, entry_fee, skill_level, max_participants, is_approved,
	approved_by, approved_at, rejection_reason, created_at, updated_at`

const registrationColumns = `id, tournament_id, user_id, name, email, phone, team_name,
	skill_level, partner_name, partner_email, status, payment_status, payment_method,
	payment_proof_url, payment_amount, notes, refund_amount, refund_status,
	created_at, updated_at`

func tournamentDest(t *domain.Tournament) []any {
	return []any{
		&t.ID, &t.OrganizerID, &t.Title, &t.Location, &t.StartDate,
		&t.RegistrationDeadline, &t.EntryFee, &t.SkillLevel, &t.MaxParticipants, &t.Approved,
		&t.ApprovedBy, &t.ApprovedAt, &t.RejectionReason, &t.CreatedAt, &t.UpdatedAt,
	}
}

func registrationDest(r *domain.Registration) []any {
	return []any{
		&r.ID, &r.TournamentID, &r.UserID, &r.Name, &r.Email, &r.Phone, &r.TeamName,
		&r.SkillLevel, &r.PartnerName, &r.PartnerEmail, &r.Status, &r.PaymentStatus, &r.PaymentMethod,
		&r.PaymentProofURL, &r.PaymentAmount, &r.Notes, &r.RefundAmount, &r.RefundStatus,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *TournamentRepo) Create(ctx context.Context, t *domain.Tournament) error {
	const op = "postgresrepo.TournamentRepo.Create"

	err := r.db.QueryRow(ctx,
		`INSERT INTO tournaments(
			organizer_id, title, location, start_date, registration_deadline,
			entry_fee, skill_level, max_participants, is_approved, approved_by, approved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		t.OrganizerID, t.Title, t.Location, t.StartDate, t.RegistrationDeadline,
		t.EntryFee, t.SkillLevel, t.MaxParticipants, t.Approved, t.ApprovedBy, t.ApprovedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *TournamentRepo) Get(ctx context.Context, id int64) (*domain.Tournament, error) {
	const op = "postgresrepo.TournamentRepo.Get"

	var t domain.Tournament
	if err := r.db.QueryRow(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id,
	).Scan(tournamentDest(&t)...); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

func (r *TournamentRepo) List(ctx context.Context, f domain.TournamentFilter) ([]domain.Tournament, error) {
	const op = "postgresrepo.TournamentRepo.List"

	var (
		conds []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Approved != nil {
		add("is_approved = $%d", *f.Approved)
	}
	if f.OrganizerID != 0 {
		add("organizer_id = $%d", f.OrganizerID)
	}

	q := `SELECT ` + tournamentColumns + ` FROM tournaments`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY start_date, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Tournament, error) {
		var t domain.Tournament
		err := row.Scan(tournamentDest(&t)...)
		return t, err
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TournamentRepo) Update(ctx context.Context, t *domain.Tournament) error {
	const op = "postgresrepo.TournamentRepo.Update"

	err := r.db.QueryRow(ctx,
		`UPDATE tournaments
		 SET title = $2,
		     location = $3,
		     start_date = $4,
		     registration_deadline = $5,
		     entry_fee = $6,
		     skill_level = $7,
		     max_participants = $8,
		     is_approved = $9,
		     approved_by = $10,
		     approved_at = $11,
		     rejection_reason = $12,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.Title, t.Location, t.StartDate, t.RegistrationDeadline,
		t.EntryFee, t.SkillLevel, t.MaxParticipants,
		t.Approved, t.ApprovedBy, t.ApprovedAt, t.RejectionReason,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// CreateRegistration inserts a registration.
//
// Returns:
//   - error: repository.ErrConflict if the email is already registered for the tournament.
func (r *TournamentRepo) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	const op = "postgresrepo.TournamentRepo.CreateRegistration"

	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO registrations(
			id, tournament_id, user_id, name, email, phone, team_name, skill_level,
			partner_name, partner_email, status, payment_status, payment_method,
			payment_proof_url, payment_amount, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING refund_amount, refund_status, created_at, updated_at`,
		reg.ID, reg.TournamentID, reg.UserID, reg.Name, reg.Email, reg.Phone, reg.TeamName, reg.SkillLevel,
		reg.PartnerName, reg.PartnerEmail, reg.Status, reg.PaymentStatus, reg.PaymentMethod,
		reg.PaymentProofURL, reg.PaymentAmount, reg.Notes,
	).Scan(&reg.RefundAmount, &reg.RefundStatus, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *TournamentRepo) GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	const op = "postgresrepo.TournamentRepo.GetRegistration"

	var reg domain.Registration
	if err := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id,
	).Scan(registrationDest(&reg)...); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &reg, nil
}

func (r *TournamentRepo) RegistrationByEmail(ctx context.Context, tournamentID int64, email string) (*domain.Registration, error) {
	const op = "postgresrepo.TournamentRepo.RegistrationByEmail"

	var reg domain.Registration
	if err := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE tournament_id = $1 AND lower(email) = lower($2)`,
		tournamentID, email,
	).Scan(registrationDest(&reg)...); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &reg, nil
}

func (r *TournamentRepo) ListRegistrations(ctx context.Context, tournamentID int64) ([]domain.Registration, error) {
	const op = "postgresrepo.TournamentRepo.ListRegistrations"

	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE tournament_id = $1
		 ORDER BY created_at`,
		tournamentID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(registrationDest(&reg)...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// CountRegistrations counts registrations that still occupy a place.
func (r *TournamentRepo) CountRegistrations(ctx context.Context, tournamentID int64) (int64, error) {
	const op = "postgresrepo.TournamentRepo.CountRegistrations"

	var n int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM registrations
		 WHERE tournament_id = $1 AND status IN ('pending', 'confirmed')`,
		tournamentID,
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *TournamentRepo) UpdateRegistration(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	const op = "postgresrepo.TournamentRepo.UpdateRegistration"

	err := r.db.QueryRow(ctx,
		`UPDATE registrations
		 SET status = $2,
		     payment_status = $3,
		     payment_proof_url = $4,
		     refund_amount = $5,
		     refund_status = $6,
		     updated_at = now()
		 WHERE id = $1 AND status = $7
		 RETURNING updated_at`,
		reg.ID, reg.Status, reg.PaymentStatus, reg.PaymentProofURL,
		reg.RefundAmount, reg.RefundStatus, from,
	).Scan(&reg.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return wrapDBErr(op, err)
	}

	if _, err := r.GetRegistration(ctx, reg.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
}

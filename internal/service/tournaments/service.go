package tournaments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
	"github.com/kirinyoku/padelgo/internal/validate"
)

var (
	ErrTournamentNotFound   = domain.NewError(domain.KindNotFound, "tournament_not_found", "tournament not found")
	ErrRegistrationNotFound = domain.NewError(domain.KindNotFound, "registration_not_found", "registration not found")
	ErrDeadlinePassed       = domain.NewError(domain.KindValidation, "deadline_in_past", "registration deadline must be in the future")
	ErrDeadlineAfterStart   = domain.NewError(domain.KindValidation, "deadline_after_start", "registration deadline must be before start date")
	ErrRegistrationClosed   = domain.NewError(domain.KindPrecondition, "registration_closed", "registration is not open for this tournament")
	ErrTournamentFull       = domain.NewError(domain.KindPrecondition, "tournament_full", "tournament has reached its participant limit")
	ErrAlreadyRegistered    = domain.NewError(domain.KindConflict, "already_registered", "this email is already registered for the tournament")
	ErrNotPending           = domain.NewError(domain.KindPrecondition, "registration_not_pending", "registration is not pending")
	ErrInvalidAction        = domain.NewError(domain.KindValidation, "invalid_action", `invalid action, use "approve" or "reject"`)
	ErrForbidden            = domain.NewError(domain.KindForbidden, "forbidden", "access denied")
	ErrNotApproved          = domain.NewError(domain.KindPrecondition, "tournament_not_approved", "tournament is awaiting admin approval")
	ErrAlreadyStarted       = domain.NewError(domain.KindPrecondition, "tournament_started", "cannot update a tournament that has started")
	ErrBelowRegistered      = domain.NewError(domain.KindPrecondition, "capacity_below_registered", "participant limit is below current registrations")
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Notifier delivers user notifications without reporting failures.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification)
	SendToRole(ctx context.Context, role domain.Role, n domain.Notification)
}

type Service struct {
	store    repository.Store
	clock    domain.Clock
	notifier Notifier
	logger   *slog.Logger
}

// New builds the tournament service. notifier may be nil.
func New(store repository.Store, clock domain.Clock, notifier Notifier, logger *slog.Logger) *Service {
	if clock == nil {
		clock = domain.SystemClock{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{store: store, clock: clock, notifier: notifier, logger: logger}
}

type CreateInput struct {
	Title                string            `json:"title" validate:"required,max=200"`
	Location             string            `json:"location" validate:"required,max=200"`
	StartDate            time.Time         `json:"start_date" validate:"required"`
	RegistrationDeadline time.Time         `json:"registration_deadline" validate:"required"`
	EntryFee             int64             `json:"entry_fee" validate:"min=0"`
	SkillLevel           domain.SkillLevel `json:"skill_level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	MaxParticipants      int               `json:"max_participants" validate:"min=0,max=1024"`
}

func (in *CreateInput) check(now time.Time) error {
	if err := validate.Struct(in); err != nil {
		return err
	}

	if !in.RegistrationDeadline.After(now) {
		return ErrDeadlinePassed
	}

	if in.RegistrationDeadline.After(in.StartDate) {
		return ErrDeadlineAfterStart
	}

	return nil
}

func (in *CreateInput) apply(t *domain.Tournament) {
	t.Title = in.Title
	t.Location = in.Location
	t.StartDate = in.StartDate
	t.RegistrationDeadline = in.RegistrationDeadline
	t.EntryFee = in.EntryFee
	t.SkillLevel = in.SkillLevel
	t.MaxParticipants = in.MaxParticipants

	if t.SkillLevel == "" {
		t.SkillLevel = domain.SkillIntermediate
	}
}

// Create is open to organizers and admins. The deadline must lie in the
// future and not after the start date. Tournaments created by organizers
// accept registrations only after an admin approves them.
func (s *Service) Create(ctx context.Context, caller domain.Caller, in CreateInput) (*domain.Tournament, error) {
	const op = "service.tournaments.Create"

	if caller.Role != domain.RoleOrganizer && !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	now := s.clock.Now()
	if err := in.check(now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := &domain.Tournament{OrganizerID: caller.UserID}
	in.apply(t)

	if caller.IsAdmin() {
		t.Approve(caller.UserID, now)
	}

	if err := s.store.Tournaments().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("tournament created",
		slog.Int64("tournament_id", t.ID),
		slog.Int64("organizer_id", t.OrganizerID),
		slog.Bool("approved", t.Approved),
	)

	if !t.Approved {
		s.notifyRole(ctx, domain.RoleAdmin, domain.Notification{
			Type:     domain.NotifyTournament,
			Title:    "Tournament awaiting approval",
			Message:  fmt.Sprintf("Tournament %q needs review", t.Title),
			Metadata: tournamentMeta(t),
		})
	}

	return t, nil
}

// Update replaces the editable fields of a tournament that has not started.
// An edit by the organizer sends the tournament back for approval.
func (s *Service) Update(ctx context.Context, caller domain.Caller, id int64, in CreateInput) (*domain.Tournament, error) {
	const op = "service.tournaments.Update"

	now := s.clock.Now()
	if err := in.check(now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var t *domain.Tournament
	err := s.store.Do(ctx, func(ctx context.Context, tx repository.Repositories, _ func(repository.AfterCommit)) error {
		var err error
		if t, err = organizedBy(ctx, tx, caller, id); err != nil {
			return err
		}

		if !now.Before(t.StartDate) {
			return ErrAlreadyStarted
		}

		if in.MaxParticipants > 0 {
			n, err := tx.Tournaments().CountRegistrations(ctx, id)
			if err != nil {
				return err
			}
			if n > int64(in.MaxParticipants) {
				return ErrBelowRegistered
			}
		}

		in.apply(t)
		if !caller.IsAdmin() {
			t.ResetApproval()
		}

		return mapNotFound(tx.Tournaments().Update(ctx, t), ErrTournamentNotFound)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("tournament updated", slog.Int64("tournament_id", id), slog.Bool("approved", t.Approved))

	return t, nil
}

// ReviewTournament lets an admin approve a tournament, which opens registration, or
// reject it with a reason.
func (s *Service) ReviewTournament(ctx context.Context, caller domain.Caller, id int64, action, reason string) (*domain.Tournament, error) {
	const op = "service.tournaments.ReviewTournament"

	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	t, err := s.store.Tournaments().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrTournamentNotFound))
	}

	var n domain.Notification
	switch action {
	case ActionApprove:
		t.Approve(caller.UserID, s.clock.Now())
		n = domain.Notification{
			Type:    domain.NotifyTournament,
			Title:   "Tournament approved",
			Message: fmt.Sprintf("Your tournament %q has been approved!", t.Title),
		}
	case ActionReject:
		t.Reject(reason)
		n = domain.Notification{
			Type:    domain.NotifyCancellation,
			Title:   "Tournament rejected",
			Message: fmt.Sprintf("Your tournament %q was rejected. Reason: %s", t.Title, reason),
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAction)
	}

	if err := s.store.Tournaments().Update(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrTournamentNotFound))
	}

	n.UserID = t.OrganizerID
	n.Metadata = tournamentMeta(t)
	s.notify(ctx, n)

	s.logger.Info("tournament reviewed", slog.Int64("tournament_id", id), slog.String("action", action))

	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Tournament, error) {
	const op = "service.tournaments.Get"

	t, err := s.store.Tournaments().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrTournamentNotFound))
	}

	return t, nil
}

// List returns tournaments matching f. Callers that are not admins only see
// approved tournaments.
func (s *Service) List(ctx context.Context, caller domain.Caller, f domain.TournamentFilter) ([]domain.Tournament, error) {
	const op = "service.tournaments.List"

	if !caller.IsAdmin() {
		approved := true
		f.Approved = &approved
	}

	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	out, err := s.store.Tournaments().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		out = []domain.Tournament{}
	}

	return out, nil
}

type RegisterInput struct {
	Name          string               `json:"name" validate:"required,max=120"`
	Email         string               `json:"email" validate:"required,email"`
	Phone         string               `json:"phone" validate:"required,max=32"`
	TeamName      string               `json:"team_name" validate:"max=120"`
	SkillLevel    domain.SkillLevel    `json:"skill_level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	PartnerName   string               `json:"partner_name" validate:"max=120"`
	PartnerEmail  string               `json:"partner_email" validate:"omitempty,email"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=bank_transfer cash card"`
	Notes         string               `json:"notes" validate:"max=500"`
}

// Register signs the caller up. Registration is open while now is not after
// the deadline and the tournament has room; an email registers once.
func (s *Service) Register(ctx context.Context, caller domain.Caller, tournamentID int64, in RegisterInput) (*domain.Registration, error) {
	const op = "service.tournaments.Register"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := &domain.Registration{
		TournamentID:  tournamentID,
		UserID:        caller.UserID,
		Name:          in.Name,
		Email:         domain.NormalizeEmail(in.Email),
		Phone:         in.Phone,
		TeamName:      in.TeamName,
		SkillLevel:    in.SkillLevel,
		PartnerName:   in.PartnerName,
		PartnerEmail:  in.PartnerEmail,
		Status:        domain.RegistrationPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		RefundStatus:  domain.RefundNone,
	}
	if reg.PaymentMethod == "" {
		reg.PaymentMethod = domain.PaymentBankTransfer
	}

	err := s.store.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error {
		t, err := tx.Tournaments().Get(ctx, tournamentID)
		if err != nil {
			return mapNotFound(err, ErrTournamentNotFound)
		}

		if !t.Approved {
			return ErrNotApproved
		}

		if !t.RegistrationOpen(s.clock.Now()) {
			return ErrRegistrationClosed
		}

		// Duplicates are reported before capacity; the unique index on
		// (tournament, email) still backs this up under races.
		_, err = tx.Tournaments().RegistrationByEmail(ctx, tournamentID, reg.Email)
		switch {
		case err == nil:
			return ErrAlreadyRegistered
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if t.MaxParticipants > 0 {
			n, err := tx.Tournaments().CountRegistrations(ctx, tournamentID)
			if err != nil {
				return err
			}
			if n >= int64(t.MaxParticipants) {
				return ErrTournamentFull
			}
		}

		if reg.SkillLevel == "" {
			reg.SkillLevel = t.SkillLevel
		}
		reg.PaymentAmount = t.EntryFee

		if err := tx.Tournaments().CreateRegistration(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyRegistered
			}
			return err
		}

		after(func(ctx context.Context) {
			s.notify(ctx, domain.Notification{
				UserID:   t.OrganizerID,
				Type:     domain.NotifyTournament,
				Title:    "New tournament registration",
				Message:  fmt.Sprintf("New registration for tournament %q", t.Title),
				Metadata: registrationMeta(reg),
			})
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("tournament registration",
		slog.Int64("tournament_id", tournamentID),
		slog.String("registration_id", reg.ID.String()),
	)

	return reg, nil
}

// ListRegistrations is visible to the tournament's organizer and admins.
func (s *Service) ListRegistrations(ctx context.Context, caller domain.Caller, tournamentID int64) ([]domain.Registration, error) {
	const op = "service.tournaments.ListRegistrations"

	if _, err := s.organized(ctx, caller, tournamentID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.store.Tournaments().ListRegistrations(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		out = []domain.Registration{}
	}

	return out, nil
}

// Review approves (confirmed, paid) or rejects a pending registration.
func (s *Service) Review(ctx context.Context, caller domain.Caller, regID uuid.UUID, action string) (*domain.Registration, error) {
	const op = "service.tournaments.Review"

	reg, err := s.store.Tournaments().GetRegistration(ctx, regID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrRegistrationNotFound))
	}

	t, err := s.organized(ctx, caller, reg.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if reg.Status != domain.RegistrationPending {
		return nil, fmt.Errorf("%s: %w", op, ErrNotPending)
	}

	var msg string
	switch action {
	case ActionApprove:
		reg.Status = domain.RegistrationConfirmed
		reg.PaymentStatus = domain.PaymentPaid
		msg = fmt.Sprintf("Your registration for %q is confirmed", t.Title)
	case ActionReject:
		reg.Status = domain.RegistrationRejected
		reg.PaymentStatus = domain.PaymentFailed
		msg = fmt.Sprintf("Your registration for %q was rejected", t.Title)
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAction)
	}

	if err := s.update(ctx, reg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, domain.Notification{
		UserID:   reg.UserID,
		Type:     domain.NotifyTournament,
		Title:    "Tournament registration " + string(reg.Status),
		Message:  msg,
		Metadata: registrationMeta(reg),
	})

	return reg, nil
}

// AttachProof records the registrant's payment proof on a pending registration.
func (s *Service) AttachProof(ctx context.Context, caller domain.Caller, regID uuid.UUID, proofURL string) (*domain.Registration, error) {
	const op = "service.tournaments.AttachProof"

	if proofURL == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("payment proof is required"))
	}

	reg, err := s.store.Tournaments().GetRegistration(ctx, regID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrRegistrationNotFound))
	}

	if reg.UserID != caller.UserID {
		return nil, fmt.Errorf("%s: %w", op, ErrRegistrationNotFound)
	}

	if reg.Status != domain.RegistrationPending {
		return nil, fmt.Errorf("%s: %w", op, ErrNotPending)
	}

	reg.PaymentProofURL = &proofURL
	if err := s.update(ctx, reg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if t, err := s.store.Tournaments().Get(ctx, reg.TournamentID); err == nil {
		s.notify(ctx, domain.Notification{
			UserID:   t.OrganizerID,
			Type:     domain.NotifyPayment,
			Title:    "Registration payment proof",
			Message:  fmt.Sprintf("%s uploaded a payment proof for %q", reg.Name, t.Title),
			Metadata: registrationMeta(reg),
		})
	}

	return reg, nil
}

func (s *Service) update(ctx context.Context, reg *domain.Registration) error {
	err := s.store.Tournaments().UpdateRegistration(ctx, reg, domain.RegistrationPending)
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return ErrNotPending
	case errors.Is(err, repository.ErrNotFound):
		return ErrRegistrationNotFound
	}
	return err
}

func (s *Service) organized(ctx context.Context, caller domain.Caller, tournamentID int64) (*domain.Tournament, error) {
	return organizedBy(ctx, s.store, caller, tournamentID)
}

func organizedBy(ctx context.Context, repos repository.Repositories, caller domain.Caller, tournamentID int64) (*domain.Tournament, error) {
	t, err := repos.Tournaments().Get(ctx, tournamentID)
	if err != nil {
		return nil, mapNotFound(err, ErrTournamentNotFound)
	}

	if !caller.IsAdmin() && t.OrganizerID != caller.UserID {
		return nil, ErrForbidden
	}

	return t, nil
}

func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if s.notifier != nil && n.UserID != 0 {
		s.notifier.Send(ctx, n)
	}
}

func (s *Service) notifyRole(ctx context.Context, role domain.Role, n domain.Notification) {
	if s.notifier != nil {
		s.notifier.SendToRole(ctx, role, n)
	}
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}

func tournamentMeta(t *domain.Tournament) map[string]string {
	return map[string]string{
		"tournament_id": strconv.FormatInt(t.ID, 10),
		"approved":      strconv.FormatBool(t.Approved),
	}
}

func registrationMeta(r *domain.Registration) map[string]string {
	return map[string]string{
		"registration_id": r.ID.String(),
		"tournament_id":   strconv.FormatInt(r.TournamentID, 10),
		"status":          string(r.Status),
	}
}

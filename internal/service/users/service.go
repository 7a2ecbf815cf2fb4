package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
	"github.com/kirinyoku/padelgo/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = domain.NewError(domain.KindConflict, "email_taken", "a user with this email already exists")
	ErrInvalidCredentials = domain.NewError(domain.KindUnauthorized, "invalid_credentials", "invalid email or password")
	ErrRoleNotAllowed     = domain.NewError(domain.KindValidation, "role_not_allowed", "role cannot be chosen at sign-up")
	ErrUserNotFound       = domain.NewError(domain.KindNotFound, "user_not_found", "user not found")
	ErrWrongPassword      = domain.NewError(domain.KindUnauthorized, "wrong_password", "current password is incorrect")
	ErrSamePassword       = domain.NewError(domain.KindValidation, "same_password", "new password must differ from the current one")
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

type Service struct {
	users  repository.UserRepository
	tokens TokenIssuer
	logger *slog.Logger
	cost   int
}

// New builds the user service. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func New(users repository.UserRepository, tokens TokenIssuer, logger *slog.Logger, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{users: users, tokens: tokens, logger: logger, cost: cost}
}

type RegisterInput struct {
	Name     string      `json:"name" validate:"required,max=120"`
	Email    string      `json:"email" validate:"required,email"`
	Phone    string      `json:"phone" validate:"max=32"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"omitempty"`
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates an account. Admins are never self-registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "service.users.Register"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch in.Role {
	case "":
		in.Role = domain.RolePlayer
	case domain.RolePlayer, domain.RoleOwner, domain.RoleOrganizer:
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrRoleNotAllowed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%s: hash password: %w", op, err)
	}

	u := &domain.User{
		Name:         in.Name,
		Email:        domain.NormalizeEmail(in.Email),
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user registered", slog.Int64("user_id", u.ID), slog.String("role", string(u.Role)))

	return s.session(op, u)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	const op = "service.users.Login"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.session(op, u)
}

func (s *Service) Profile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	const op = "service.users.Profile"

	u, err := s.users.Get(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

type ProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateProfile changes the caller's name and phone. Nil fields are kept.
func (s *Service) UpdateProfile(ctx context.Context, caller domain.Caller, in ProfileInput) (*domain.User, error) {
	const op = "service.users.UpdateProfile"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}

	if err := s.save(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ChangePassword replaces the caller's password after checking the current one.
// Tokens issued before the change stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, caller domain.Caller, in PasswordInput) error {
	const op = "service.users.ChangePassword"

	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if in.CurrentPassword == in.NewPassword {
		return fmt.Errorf("%s: %w", op, ErrSamePassword)
	}

	u, err := s.Profile(ctx, caller)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, ErrWrongPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("%s: hash password: %w", op, err)
	}
	u.PasswordHash = string(hash)

	if err := s.save(ctx, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("password changed", slog.Int64("user_id", u.ID))

	return nil
}

func (s *Service) save(ctx context.Context, u *domain.User) error {
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *Service) session(op string, u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("%s: issue token: %w", op, err)
	}

	return &Session{Token: token, User: u}, nil
}

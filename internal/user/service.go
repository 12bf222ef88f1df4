package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Store is the persistence the service needs; *Repo satisfies it.
type Store interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCPF(ctx context.Context, cpf string) (*User, error)
	List(ctx context.Context, f ListFilter) ([]User, int64, error)
}

// Service implements the account use cases.
type Service struct {
	store   Store
	authCfg config.AuthConfig
	log     logger.Logger
}

func NewService(store Store, authCfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{store: store, authCfg: authCfg, log: log}
}

// Register creates an account. Only admins reach this path (enforced at
// the route); duplicates are rejected on email and cpf.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if details := in.Validate(); len(details) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, details)
	}

	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.store.FindByCPF(ctx, in.CPF); err == nil {
		return nil, domain.ErrCPFTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CPF:          in.CPF,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Infof("user registered: %s (%s)", u.Email, u.Role)
	return u, nil
}

// LoginResult bundles what the login endpoint returns.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates by email/password and issues an access token.
// The email is normalized the same way Register stores it. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !u.Active {
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.log.Warnf("failed login attempt for %s", email)
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	u.LastLoginAt = &now
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}

	ttl := time.Duration(s.authCfg.TokenTTLHrs) * time.Hour
	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Email, u.Role, ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Infof("login: %s (%s)", u.Email, u.Role)
	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// Get returns an account. Admins see anyone; others only themselves.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*User, error) {
	if actor.Role != RoleAdmin && actor.ID != id {
		return nil, domain.ErrForbidden
	}
	return s.store.FindByID(ctx, id)
}

// List returns accounts; admin-only (enforced at the route).
func (s *Service) List(ctx context.Context, f ListFilter) ([]User, int64, error) {
	return s.store.List(ctx, f)
}

// Update changes account fields. Admins may edit anyone and any field;
// users may edit their own name/email/cpf but not role or active.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id string, in UpdateInput) (*User, error) {
	if actor.Role != RoleAdmin && actor.ID != id {
		return nil, domain.ErrForbidden
	}
	if actor.Role != RoleAdmin && (in.Role != nil || in.Active != nil) {
		return nil, fmt.Errorf("%w: only admins can change role or active", domain.ErrForbidden)
	}
	if details := in.Validate(); len(details) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, details)
	}

	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != u.Email {
		if _, err := s.store.FindByEmail(ctx, *in.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.CPF != nil && *in.CPF != u.CPF {
		if _, err := s.store.FindByCPF(ctx, *in.CPF); err == nil {
			return nil, domain.ErrCPFTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		u.CPF = *in.CPF
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Active != nil {
		u.Active = *in.Active
	}

	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.Infof("user updated: %s by %s", u.Email, actor.Email)
	return u, nil
}

// Deactivate disables an account (soft delete). Admins cannot disable
// themselves, so there is always at least one working admin login.
func (s *Service) Deactivate(ctx context.Context, actor *auth.Actor, id string) (*User, error) {
	if actor.ID == id {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", domain.ErrValidation)
	}

	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Active = false
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.Infof("user deactivated: %s by %s", u.Email, actor.Email)
	return u, nil
}

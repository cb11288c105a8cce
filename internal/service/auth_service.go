package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"design-pro/internal/models"
	"design-pro/internal/repository"
	"design-pro/internal/utils"

	"github.com/rs/zerolog"
)

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
	sessionTTL    time.Duration
	log           zerolog.Logger
}

func NewAuthService(users repository.UserRepository, sessionSecret string, sessionTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, sessionSecret: sessionSecret, sessionTTL: sessionTTL, log: log}
}

// Register creates a regular user. Field problems come back as a
// *ValidationError; storage failures are logged and reported as
// ErrRegistrationFailed.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.normalize()
	verr := in.validate()

	if _, bad := verr.Fields["username"]; !bad {
		taken, err := a.users.UsernameTaken(ctx, in.Username)
		if err != nil {
			a.log.Error().Err(err).Str("username", in.Username).Msg("username lookup failed")
			return nil, ErrRegistrationFailed
		}
		if taken {
			verr.add("username", "username is already taken")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		a.log.Error().Err(err).Msg("password hashing failed")
		return nil, ErrRegistrationFailed
	}

	// Self-registration is only allowed for regular users.
	u := &models.User{
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
		Role:     models.RoleUser,
	}
	if err := a.users.Create(ctx, u, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("username", "username is already taken")
		}
		a.log.Error().Err(err).Str("username", in.Username).Msg("user insert failed")
		return nil, ErrRegistrationFailed
	}
	a.log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return u, nil
}

func (a *AuthService) Login(ctx context.Context, username, password string) (token string, user *models.User, err error) {
	u, hash, err := a.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := a.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Issue signs a session token for u.
func (a *AuthService) Issue(u *models.User) (string, error) {
	return utils.SignJWT(a.sessionSecret, u.ID, string(u.Role), a.sessionTTL)
}

func (a *AuthService) Me(ctx context.Context, id models.Identity) (*models.User, error) {
	u, err := a.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// EnsureAdmin creates the admin account on first start. An existing admin
// with that login is left as is; a non-admin holding it is an error.
func (a *AuthService) EnsureAdmin(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	u, _, err := a.users.GetByUsername(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if u != nil {
		if u.Role != models.RoleAdmin {
			return nil, fmt.Errorf("admin login %q belongs to a non-admin user", login)
		}
		return u, nil
	}
	if len(password) < minPasswordLen {
		return nil, errors.New("admin password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u = &models.User{
		Username: login,
		FullName: "Administrator",
		Email:    login + "@localhost",
		Role:     models.RoleAdmin,
	}
	if err := a.users.Create(ctx, u, hash); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	a.log.Info().Str("username", login).Msg("admin account created")
	return u, nil
}

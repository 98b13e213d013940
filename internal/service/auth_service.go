package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout(ctx context.Context, sess Session) error
	ResolveSession(ctx context.Context, token string) (Session, error)
	UpdatePassword(ctx context.Context, username, newPassword string) error
	ChangePassword(ctx context.Context, sess Session, oldPassword, newPassword string) error
	EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	ExpiresIn  int64              `json:"expires_in"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way. Legacy SHA-256 hashes are upgraded to bcrypt
// on the first successful check.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if user.NeedsRehash() {
		if err := user.SetPassword(password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, user.PasswordHash, user.TokenVersion); err != nil {
			return nil, fmt.Errorf("upgrade password hash: %w", err)
		}
		s.log.InfoContext(ctx, "upgraded legacy password hash", slog.String("username", user.Username))
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	// Single session: a new token version invalidates tokens issued earlier.
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	user.TokenVersion = version

	token, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role), version)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", slog.String("username", user.Username))
	return &LoginResponse{
		Token:      token,
		ExpiresIn:  int64(s.tokens.TTL().Seconds()),
		User:       user.ToResponse(),
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sess Session) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, sess.UserID, uuid.NewString()); err != nil {
		return fmt.Errorf("rotate token version: %w", err)
	}
	return nil
}

// ResolveSession validates a bearer token and checks it against the stored
// token version, so logged out or superseded tokens are rejected.
func (s *authService) ResolveSession(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, fmt.Errorf("%w: user no longer exists", ErrSessionExpired)
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return Session{}, fmt.Errorf("%w: logged in elsewhere or logged out", ErrSessionExpired)
	}

	return Session{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}, nil
}

// UpdatePassword replaces a user's password without checking the old one.
// Existing sessions of that user are invalidated.
func (s *authService) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return lookupError(err, "user", username)
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.PasswordHash, uuid.NewString()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.InfoContext(ctx, "password updated", slog.String("username", username))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, sess Session, oldPassword, newPassword string) error {
	if err := validate(&ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}); err != nil {
		return err
	}
	if _, err := s.Authenticate(ctx, sess.Username, oldPassword); err != nil {
		return err
	}
	return s.UpdatePassword(ctx, sess.Username, newPassword)
}

// EnsureBootstrapAdmin seeds an admin account when none exists yet. It
// reports whether an account was created.
func (s *authService) EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	admins, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	if err := validatePassword(password); err != nil {
		return false, err
	}
	admin := &model.User{Username: username, Role: model.RoleAdmin}
	admin.CreatedBy = SystemSession.Username
	admin.UpdatedBy = SystemSession.Username
	if err := validate(admin); err != nil {
		return false, err
	}
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	if password == config.DefaultBootstrapPassword {
		s.log.WarnContext(ctx, "bootstrap admin created with the default password; rotate it with reset-password",
			slog.String("username", username))
	} else {
		s.log.InfoContext(ctx, "bootstrap admin created", slog.String("username", username))
	}
	return true, nil
}

func validatePassword(password string) error {
	switch {
	case len(password) < 6:
		return newValidationError("password", "password must be at least 6 characters")
	case len(password) > 72:
		return newValidationError("password", "password must be at most 72 characters")
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Role     model.Role `json:"role" validate:"required,enum"`
}

type UserService interface {
	Register(ctx context.Context, req CreateUserRequest, createdBy string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, log *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

// Register inserts a new account. Usernames are unique; a second
// registration of the same name fails and leaves the first account intact.
func (s *userService) Register(ctx context.Context, req CreateUserRequest, createdBy string) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate(&req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err == nil && existing != nil {
		return nil, &DuplicateUsernameError{Username: req.Username}
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Role:     req.Role,
	}
	user.CreatedBy = createdBy
	user.UpdatedBy = createdBy

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still win the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &DuplicateUsernameError{Username: req.Username}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
		slog.String("created_by", createdBy))
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", id)
	}
	resp := user.ToResponse()
	return &resp, nil
}

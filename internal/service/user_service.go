package service

import (
	"context"
	"errors"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/model"
	"warkop-pos/internal/repository"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username string    `json:"username" validate:"required,min=3,max=150"`
	Password string    `json:"password" validate:"required,min=6"`
	FullName string    `json:"full_name" validate:"max=255"`
	Role     auth.Role `json:"role" validate:"required,oneof=owner cashier"`
}

type UpdateUserRequest struct {
	FullName string    `json:"full_name" validate:"max=255"`
	Password *string   `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     auth.Role `json:"role" validate:"required,oneof=owner cashier"`
	IsActive *bool     `json:"is_active"`
}

type UserService interface {
	CreateUser(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context, actor auth.Actor) ([]model.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, actor auth.Actor, req CreateUserRequest) (*model.UserResponse, error) {
	// 1. Owner only
	if err := auth.Authorize(actor, auth.OpUserManage); err != nil {
		return nil, err
	}

	// 2. Validate request
	if err := validate(&req); err != nil {
		return nil, err
	}

	// 3. Username must be free
	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err == nil && existing != nil {
		return nil, ErrUsernameExists
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// 4. Build and save
	user := &model.User{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	user.CreatedBy = actor.UserID.String()
	user.UpdatedBy = user.CreatedBy
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error) {
	if err := auth.Authorize(actor, auth.OpUserManage); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Role = req.Role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		// Force re-login everywhere.
		user.TokenVersion = uuid.NewString()
	}
	user.UpdatedBy = actor.UserID.String()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetAllUsers(ctx context.Context, actor auth.Actor) ([]model.UserResponse, error) {
	if err := auth.Authorize(actor, auth.OpUserManage); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

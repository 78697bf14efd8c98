package services

import (
	"context"
	"errors"
	"fmt"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"
	"lablink-inventory/internal/core/domain"
	"lablink-inventory/internal/pkg/password"

	"gorm.io/gorm"
)

// User management errors
var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrSelfDemotion   = errors.New("admins cannot change their own role")
	ErrSelfDeactivate = errors.New("admins cannot deactivate their own account")
)

// UserService handles user management business logic
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	activity         *ActivityService
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	activity *ActivityService,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		activity:         activity,
	}
}

// CreateUserInput represents admin user creation input
type CreateUserInput struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role" validate:"required"`
}

// UpdateUserInput represents profile update input
type UpdateUserInput struct {
	Email      *string `json:"email,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Department *string `json:"department,omitempty"`
}

// ListUsersOutput represents user listing output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// CreateUser creates a user with an explicit role (admin only)
func (s *UserService) CreateUser(ctx context.Context, actorID uint, input *CreateUserInput, ipAddress string) (*models.UserResponse, error) {
	if !domain.Role(input.Role).Valid() {
		return nil, ErrInvalidRole
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:   input.Username,
		Email:      input.Email,
		Password:   hashed,
		FullName:   input.FullName,
		Department: input.Department,
		Role:       input.Role,
		IsActive:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionCreate, "user", user.ID,
		fmt.Sprintf("created user %s with role %s", user.Username, user.Role), ipAddress)

	return user.ToResponse(), nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*ListUsersOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	users, total, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateProfile updates mutable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUserAlreadyExists
		}
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Department != nil {
		user.Department = *input.Department
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangeRole changes a user's role and revokes their sessions so the
// new role takes effect on next login.
func (s *UserService) ChangeRole(ctx context.Context, actorID, targetID uint, newRole string, ipAddress string) (*models.UserResponse, error) {
	if !domain.Role(newRole).Valid() {
		return nil, ErrInvalidRole
	}
	if actorID == targetID {
		return nil, ErrSelfDemotion
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	oldRole := user.Role
	if oldRole == newRole {
		return user.ToResponse(), nil
	}

	user.Role = newRole
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Revoke sessions; best effort
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, targetID); err != nil {
		s.activity.Record(ctx, actorID, models.ActionRoleChange, "user", targetID,
			fmt.Sprintf("role %s -> %s (session revocation failed)", oldRole, newRole), ipAddress)
		return user.ToResponse(), nil
	}

	s.activity.Record(ctx, actorID, models.ActionRoleChange, "user", targetID,
		fmt.Sprintf("role %s -> %s", oldRole, newRole), ipAddress)

	return user.ToResponse(), nil
}

// SetActive activates or deactivates a user and reports the prior state.
// Deactivating also revokes all refresh tokens.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID uint, active bool, ipAddress string) (wasActive bool, err error) {
	if actorID == targetID && !active {
		return false, ErrSelfDeactivate
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	wasActive = user.IsActive
	if wasActive == active {
		return wasActive, nil
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return wasActive, err
	}

	if !active {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, targetID); err != nil {
			return wasActive, err
		}
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	s.activity.Record(ctx, actorID, models.ActionStatusChange, "user", targetID,
		fmt.Sprintf("account %s", state), ipAddress)

	return wasActive, nil
}

// DeleteUser soft deletes a user and revokes their sessions
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uint, ipAddress string) error {
	if actorID == targetID {
		return ErrSelfDeactivate
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, targetID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	s.activity.Record(ctx, actorID, models.ActionDelete, "user", targetID,
		fmt.Sprintf("deleted user %s", user.Username), ipAddress)
	return nil
}

// ChangePassword changes the caller's own password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(oldPassword, user.Password) {
		return ErrInvalidCredentials
	}
	if !password.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Other sessions become invalid after a password change
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

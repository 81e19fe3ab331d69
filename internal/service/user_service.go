package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/repository"
	"agora/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Name     string
}

type ListUsersInput struct {
	Keyword string
	Status  models.UserStatus
	Role    models.UserRole
	Page    paging.PageRequest
}

// UpdateUserInput carries optional changes; empty fields are left alone.
type UpdateUserInput struct {
	ActorID uint
	UserID  uint
	Name    string
	Email   string
	Role    models.UserRole
	Status  models.UserStatus
}

type ChangePasswordInput struct {
	ActorID     uint
	UserID      uint
	NewPassword string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateError("username")
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateError("email")
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Name:     in.Name,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers applies at most one filter: keyword, then status, then role.
func (s *UserService) ListUsers(ctx context.Context, in ListUsersInput) (paging.Page[models.UserSummary], error) {
	req := in.Page.Normalize()
	if err := req.Validate(); err != nil {
		return paging.Page[models.UserSummary]{}, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return paging.Page[models.UserSummary]{}, models.NewValidationError("unknown user status")
	}
	if in.Role != "" && !in.Role.Valid() {
		return paging.Page[models.UserSummary]{}, models.NewValidationError("unknown user role")
	}

	var filter repository.UserFilter
	switch {
	case strings.TrimSpace(in.Keyword) != "":
		filter.Keyword = strings.TrimSpace(in.Keyword)
	case in.Status != "":
		filter.Status = in.Status
	case in.Role != "":
		filter.Role = in.Role
	}

	users, total, err := s.userRepo.List(ctx, filter, req)
	if err != nil {
		return paging.Page[models.UserSummary]{}, err
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return paging.NewPage(summaries, req, total), nil
}

func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	target, actor, err := s.targetAndActor(ctx, in.UserID, in.ActorID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwnerOrAdmin(target.ID, actor, "You can only update your own account"); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Email != "" && in.Email != target.Email {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil && existing.ID != target.ID:
			return nil, models.NewDuplicateError("email")
		case err != nil && !models.HasCode(err, models.ErrUserNotFound):
			return nil, err
		}
	}

	if in.Role != "" || in.Status != "" {
		if err := ensureAdmin(actor); err != nil {
			return nil, err
		}
		if in.Role != "" && !in.Role.Valid() {
			return nil, models.NewValidationError("unknown user role")
		}
		if in.Status != "" && !in.Status.Valid() {
			return nil, models.NewValidationError("unknown user status")
		}
	}

	target.UpdateProfile(in.Name, in.Email)
	if in.Role != "" {
		target.ChangeRole(in.Role)
	}
	if in.Status != "" {
		target.ChangeStatus(in.Status)
	}
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	target, actor, err := s.targetAndActor(ctx, in.UserID, in.ActorID)
	if err != nil {
		return err
	}
	if err := ensureOwnerOrAdmin(target.ID, actor, "You can only change your own password"); err != nil {
		return err
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, target.ID, hashed)
}

func (s *UserService) ChangeRole(ctx context.Context, actorID, userID uint, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("unknown user role")
	}
	target, actor, err := s.targetAndActor(ctx, userID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	target.ChangeRole(role)
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *UserService) ChangeStatus(ctx context.Context, actorID, userID uint, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("unknown user status")
	}
	target, actor, err := s.targetAndActor(ctx, userID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	target.ChangeStatus(status)
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// DeleteUser marks the account DELETED. Rows are never removed.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uint) error {
	target, actor, err := s.targetAndActor(ctx, userID, actorID)
	if err != nil {
		return err
	}
	if err := ensureOwnerOrAdmin(target.ID, actor, "You can only delete your own account"); err != nil {
		return err
	}
	target.ChangeStatus(models.UserStatusDeleted)
	return s.userRepo.Update(ctx, target)
}

func (s *UserService) RecordLogin(ctx context.Context, userID uint) error {
	return s.userRepo.UpdateLastLogin(ctx, userID, s.now())
}

func (s *UserService) targetAndActor(ctx context.Context, targetID, actorID uint) (*models.User, *models.User, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if actorID == targetID {
		return target, target, nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return target, actor, nil
}

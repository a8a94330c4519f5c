package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
)

// Identity is what the identity provider's token says about the caller
type Identity struct {
	OpenID string
	Name   string
	Email  string
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

type UserService interface {
	// Sync creates or refreshes the local user for an authenticated identity
	Sync(ctx context.Context, id Identity) (*model.User, error)
	Me(ctx context.Context, actor model.Actor) (*model.User, error)
	List(ctx context.Context, actor model.Actor, limit, offset int) ([]model.User, int64, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateUserRequest) (*model.User, error)
}

// signInRefresh bounds how often LastSignedIn is written back
const signInRefresh = 5 * time.Minute

type userService struct {
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	ownerOpenID string
}

func NewUserService(userRepo repository.UserRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, ownerOpenID string) UserService {
	return &userService{userRepo: userRepo, auditRepo: auditRepo, txManager: txManager, ownerOpenID: ownerOpenID}
}

var validRoles = map[string]bool{
	model.RoleAdmin:          true,
	model.RoleRepresentative: true,
	model.RoleUser:           true,
}

func (s *userService) Sync(ctx context.Context, id Identity) (*model.User, error) {
	if id.OpenID == "" {
		return nil, validationError("token has no subject")
	}
	now := time.Now()

	user, err := s.userRepo.FindByOpenID(ctx, id.OpenID)
	if errors.Is(err, repository.ErrNotFound) {
		user = &model.User{
			OpenID:       id.OpenID,
			Name:         id.Name,
			Email:        id.Email,
			Role:         model.RoleUser,
			Active:       true,
			LastSignedIn: now,
		}
		if id.OpenID == s.ownerOpenID {
			user.Role = model.RoleAdmin
		}
		err = s.userRepo.Create(ctx, user)
		if errors.Is(err, repository.ErrDuplicate) {
			// concurrent first request won the insert
			return s.userRepo.FindByOpenID(ctx, id.OpenID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, forbiddenError("user is deactivated")
	}

	dirty := false
	if id.Name != "" && id.Name != user.Name {
		user.Name, dirty = id.Name, true
	}
	if id.Email != "" && id.Email != user.Email {
		user.Email, dirty = id.Email, true
	}
	if id.OpenID == s.ownerOpenID && user.Role != model.RoleAdmin {
		user.Role, dirty = model.RoleAdmin, true
	}
	if now.Sub(user.LastSignedIn) > signInRefresh {
		user.LastSignedIn, dirty = now, true
	}
	if dirty {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to refresh user: %w", err)
		}
	}
	return user, nil
}

func (s *userService) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, storeError("user", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor model.Actor, limit, offset int) ([]model.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, forbiddenError("only administrators can list users")
	}
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (s *userService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("only administrators can manage users")
	}
	if req.Role != nil && !validRoles[*req.Role] {
		return nil, validationError("role must be one of: admin, representative, user")
	}

	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if user, err = s.userRepo.FindByID(txCtx, id); err != nil {
			return storeError("user", err)
		}
		if user.ID == actor.ID && ((req.Role != nil && *req.Role != model.RoleAdmin) || (req.Active != nil && !*req.Active)) {
			return validationError("administrators cannot demote or deactivate themselves")
		}
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateUser, user.ID, user.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

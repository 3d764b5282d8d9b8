package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"
	"taskManager/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberWorkload is a member with per-status counts of assigned tasks.
type MemberWorkload struct {
	*user.User
	PendingTasks    int64
	InProgressTasks int64
	CompletedTasks  int64
}

type CreateUserInput struct {
	Name            string    `json:"name" validate:"required,max=255"`
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required,min=6"`
	Role            user.Role `json:"role" validate:"omitempty,oneof=admin member"`
	ProfileImageURL string    `json:"profileImageUrl" validate:"omitempty,max=2048"`
}

type UserService struct {
	users UserRepository
	tasks TaskRepository
}

func NewUserService(users UserRepository, tasks TaskRepository) *UserService {
	return &UserService{
		users: users,
		tasks: tasks,
	}
}

func (s *UserService) ListMembers(ctx context.Context) ([]*MemberWorkload, error) {
	members, err := s.users.ListByRole(ctx, user.RoleMember)
	if err != nil {
		logger.Error("Service: listing members", err)
		return nil, NewStoreError("list_members", err)
	}

	res := make([]*MemberWorkload, 0, len(members))
	for _, member := range members {
		id := member.UUID
		byStatus, err := s.tasks.CountBy(ctx, task.Filter{AssignedTo: &id}, task.FieldStatus)
		if err != nil {
			logger.Error("Service: counting member tasks", err, zap.String("user_id", id.String()))
			return nil, NewStoreError("count_member_tasks", err)
		}
		res = append(res, &MemberWorkload{
			User:            member,
			PendingTasks:    byStatus[string(task.StatusPending)],
			InProgressTasks: byStatus[string(task.StatusInProgress)],
			CompletedTasks:  byStatus[string(task.StatusCompleted)],
		})
	}
	return res, nil
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("User", id.String())
		}
		logger.Error("Service: loading profile", err, zap.String("user_id", id.String()))
		return nil, NewStoreError("get_profile", err)
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*user.User, error) {
	return createUser(ctx, s.users, in)
}

// createUser validates the input, hashes the password and stores the user.
// An empty role means member.
func createUser(ctx context.Context, users UserRepository, in CreateUserInput) (*user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Role == "" {
		in.Role = user.RoleMember
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	newUser := &user.User{
		UUID:            uuid.New(),
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		ProfileImageURL: in.ProfileImageURL,
		Role:            in.Role,
		CreatedAt:       time.Now(),
	}

	if err := users.Create(ctx, newUser); err != nil {
		if errors.Is(err, rep.ErrDuplicate) {
			return nil, NewValidationError("email", "User already exists")
		}
		logger.Error("Service: creating user", err)
		return nil, NewStoreError("create_user", err)
	}

	logger.Info("Service: user created",
		zap.String("user_id", newUser.UUID.String()),
		zap.String("role", string(newUser.Role)))
	return newUser, nil
}

func validationError(err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return NewValidationError(fe.Field, fe.Message)
	}
	return NewValidationError("body", err.Error())
}

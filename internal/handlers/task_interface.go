package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context, user.Caller, *task.Status) (*service.TaskList, error)
	GetTask(context.Context, uuid.UUID) (*service.TaskDetail, error)
	CreateTask(context.Context, user.Caller, service.CreateTaskInput) (*task.Task, error)
	UpdateTask(context.Context, uuid.UUID, ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	UpdateTaskStatus(context.Context, user.Caller, uuid.UUID, *task.Status) (*task.Task, error)
	UpdateTaskChecklist(context.Context, user.Caller, uuid.UUID, []task.ChecklistItem) (*service.TaskDetail, error)
	GetDashboard(context.Context) (*service.Dashboard, error)
	GetUserDashboard(context.Context, user.Caller) (*service.Dashboard, error)
}

type UserService interface {
	ListMembers(context.Context) ([]*service.MemberWorkload, error)
	GetProfile(context.Context, uuid.UUID) (*user.User, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Register(ctx context.Context, in service.RegisterInput) (string, *user.User, error)
}

var _ TaskService = (*service.TaskService)(nil)
var _ UserService = (*service.UserService)(nil)
var _ AuthService = (*service.AuthService)(nil)

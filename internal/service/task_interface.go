package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// TaskRepository is the document-store contract the engine works against.
// Missing ids are reported with repository.ErrNotFound.
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, uuid.UUID) error
	// Find returns matching tasks ordered by creation time.
	Find(context.Context, task.Filter) ([]*task.Task, error)
	Count(context.Context, task.Filter) (int64, error)
	// CountBy groups matching tasks by field value. Absent values are
	// absent from the map.
	CountBy(context.Context, task.Filter, task.Field) (map[string]int64, error)
	// Recent returns at most limit matching tasks, newest first.
	Recent(context.Context, task.Filter, int) ([]*task.Task, error)
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
	// GetByIDs silently skips unknown ids.
	GetByIDs(context.Context, []uuid.UUID) ([]*user.User, error)
	ListByRole(context.Context, user.Role) ([]*user.User, error)
}

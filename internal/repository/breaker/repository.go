package breaker

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

type TaskRepository struct {
	next service.TaskRepository
	cb   *gobreaker.CircuitBreaker
}

func NewTaskRepository(next service.TaskRepository, cb *gobreaker.CircuitBreaker) *TaskRepository {
	return &TaskRepository{next: next, cb: cb}
}

// HealthCheck bypasses the breaker so probes always see the real store.
func (r *TaskRepository) HealthCheck(ctx context.Context) error {
	return r.next.HealthCheck(ctx)
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	return run(r.cb, func() error { return r.next.Create(ctx, t) })
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return execute(r.cb, func() (*task.Task, error) { return r.next.GetByID(ctx, id) })
}

func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	return run(r.cb, func() error { return r.next.Update(ctx, t) })
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return run(r.cb, func() error { return r.next.Delete(ctx, id) })
}

func (r *TaskRepository) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	return execute(r.cb, func() ([]*task.Task, error) { return r.next.Find(ctx, filter) })
}

func (r *TaskRepository) Count(ctx context.Context, filter task.Filter) (int64, error) {
	return execute(r.cb, func() (int64, error) { return r.next.Count(ctx, filter) })
}

func (r *TaskRepository) CountBy(ctx context.Context, filter task.Filter, field task.Field) (map[string]int64, error) {
	return execute(r.cb, func() (map[string]int64, error) { return r.next.CountBy(ctx, filter, field) })
}

func (r *TaskRepository) Recent(ctx context.Context, filter task.Filter, limit int) ([]*task.Task, error) {
	return execute(r.cb, func() ([]*task.Task, error) { return r.next.Recent(ctx, filter, limit) })
}

var _ service.TaskRepository = (*TaskRepository)(nil)

type UserRepository struct {
	next service.UserRepository
	cb   *gobreaker.CircuitBreaker
}

func NewUserRepository(next service.UserRepository, cb *gobreaker.CircuitBreaker) *UserRepository {
	return &UserRepository{next: next, cb: cb}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return run(r.cb, func() error { return r.next.Create(ctx, u) })
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return execute(r.cb, func() (*user.User, error) { return r.next.GetByID(ctx, id) })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return execute(r.cb, func() (*user.User, error) { return r.next.GetByEmail(ctx, email) })
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	return execute(r.cb, func() ([]*user.User, error) { return r.next.GetByIDs(ctx, ids) })
}

func (r *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	return execute(r.cb, func() ([]*user.User, error) { return r.next.ListByRole(ctx, role) })
}

var _ service.UserRepository = (*UserRepository)(nil)

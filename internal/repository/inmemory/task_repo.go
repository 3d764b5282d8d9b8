package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage keeps tasks in a map, ids preserves insertion order.
// Every task crossing the boundary is cloned.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage is healthy")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.UUID]; ok {
		return repo.ErrDuplicate
	}
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	s.storage[taskToCreate.UUID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.UUID]; !ok {
		return repo.ErrNotFound
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	s.storage[taskToUpdate.UUID] = taskToUpdate.Clone()
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	s.ids = slices.DeleteFunc(s.ids, func(val uuid.UUID) bool { return val == id })
	return nil
}

func (s *TaskStorage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if filter.Match(t) {
			res = append(res, t.Clone())
		}
	}
	return res, nil
}

func (s *TaskStorage) Count(ctx context.Context, filter task.Filter) (int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var count int64
	for _, t := range s.storage {
		if filter.Match(t) {
			count++
		}
	}
	return count, nil
}

func (s *TaskStorage) CountBy(ctx context.Context, filter task.Filter, field task.Field) (map[string]int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make(map[string]int64)
	for _, t := range s.storage {
		if filter.Match(t) {
			res[t.GroupKey(field)]++
		}
	}
	return res, nil
}

func (s *TaskStorage) Recent(ctx context.Context, filter task.Filter, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	// newest inserted first so equal timestamps keep a stable order
	res := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if filter.Match(t) {
			res = append(res, t.Clone())
		}
	}
	slices.SortStableFunc(res, func(a, b *task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

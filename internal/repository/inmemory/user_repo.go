package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[userToCreate.UUID]; ok {
		return repo.ErrDuplicate
	}
	for _, u := range s.storage {
		if strings.EqualFold(u.Email, userToCreate.Email) {
			return repo.ErrDuplicate
		}
	}
	if userToCreate.CreatedAt.IsZero() {
		userToCreate.CreatedAt = time.Now()
	}

	stored := *userToCreate
	s.storage[userToCreate.UUID] = &stored
	s.ids = append(s.ids, userToCreate.UUID)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.storage {
		if strings.EqualFold(u.Email, email) {
			found := *u
			return &found, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *UserStorage) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.storage[id]; ok {
			found := *u
			res = append(res, &found)
		}
	}
	return res, nil
}

func (s *UserStorage) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*user.User{}
	for _, id := range s.ids {
		u := s.storage[id]
		if u.Role == role {
			found := *u
			res = append(res, &found)
		}
	}
	return res, nil
}

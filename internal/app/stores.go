package app

import (
	"context"
	"fmt"

	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/repository/breaker"
	"taskManager/internal/repository/inmemory"
	mongorepo "taskManager/internal/repository/mongo"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

// Stores holds the repositories of the configured backend.
type Stores struct {
	Tasks service.TaskRepository
	Users service.UserRepository
	close func(context.Context) error
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	var stores *Stores

	switch cfg.Repository.Type {
	case config.RepositoryPostgres:
		if cfg.Database.MigrateOnStart {
			if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
				return nil, fmt.Errorf("running migrations: %w", err)
			}
		}
		storage, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		stores = &Stores{
			Tasks: storage.Tasks(),
			Users: storage.Users(),
			close: func(context.Context) error {
				storage.Close()
				return nil
			},
		}

	case config.RepositoryMongo:
		storage, err := mongorepo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		stores = &Stores{
			Tasks: storage.Tasks(),
			Users: storage.Users(),
			close: storage.Close,
		}

	default:
		stores = &Stores{
			Tasks: inmemory.NewTaskStorage(),
			Users: inmemory.NewUserStorage(),
			close: func(context.Context) error { return nil },
		}
	}

	// the in-memory store cannot fail, a breaker in front of it only adds noise
	if cfg.Breaker.Enabled && cfg.Repository.Type != config.RepositoryInMemory {
		stores.Tasks = breaker.NewTaskRepository(stores.Tasks, breaker.New("tasks", cfg.Breaker))
		stores.Users = breaker.NewUserRepository(stores.Users, breaker.New("users", cfg.Breaker))
	}

	logger.Info("App: stores opened",
		zap.String("type", cfg.Repository.Type),
		zap.Bool("breaker", cfg.Breaker.Enabled))
	return stores, nil
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

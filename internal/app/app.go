package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "task-manager"

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	stores    *Stores
	registry  *prometheus.Registry
	tokens    *auth.TokenManager
	tasks     *service.TaskService
	users     *service.UserService
	worker    *worker.OverdueWorker
	shutdowns []func(context.Context)
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	stores, err := OpenStores(ctx, a.config)
	if err != nil {
		return err
	}
	a.stores = stores
	a.shutdowns = append(a.shutdowns, func(ctx context.Context) {
		logger.Info("App: closing stores")
		if err := stores.Close(ctx); err != nil {
			logger.Error("App: closing stores", err)
		}
	})

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.tokens = auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL, a.config.Auth.Issuer)
	a.tasks = service.NewTaskService(stores.Tasks, stores.Users)
	a.users = service.NewUserService(stores.Users, stores.Tasks)

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(stores.Tasks, a.config.Worker.OverdueInterval, a.registry)
	}

	a.router = a.routes()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, serviceName),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	logger.Info("App: initialized",
		zap.String("addr", a.server.Addr),
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("worker", a.worker != nil))
	return nil
}

func (a *App) routes() *chi.Mux {
	taskHandler := handlers.NewTaskHandler(a.tasks)
	userHandler := handlers.NewUserHandler(a.users)
	authHandler := handlers.NewAuthHandler(service.NewAuthService(a.stores.Users, a.tokens, a.config.Auth.AdminInviteToken), a.users)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	if a.config.Metrics.Enabled {
		r.Use(middleware.NewMetrics(a.registry).Handler)
	}
	r.Use(middleware.RateLimit(a.config.Security.RateLimitRPS, a.config.Security.RateLimitBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Security.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.Get("/health", taskHandler.HealthCheck)
	if a.config.Metrics.Enabled {
		r.Handle(a.config.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}

	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/register", authHandler.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(a.tokens))

		r.Get("/auth/profile", authHandler.Profile)
		r.With(middleware.RequireAdmin).Get("/users", userHandler.ListMembers)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)                                  // GET /tasks
			r.With(middleware.RequireAdmin).Post("/", taskHandler.CreateTask) // POST /tasks
			r.Get("/dashboard-data", taskHandler.GetDashboard)
			r.Get("/user-dashboard-data", taskHandler.GetUserDashboard)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)                                  // GET /tasks/{id}
				r.Put("/", taskHandler.UpdateTask)                                   // PUT /tasks/{id}
				r.With(middleware.RequireAdmin).Delete("/", taskHandler.DeleteTask) // DELETE /tasks/{id}

				r.Put("/status", taskHandler.UpdateTaskStatus)  // PUT /tasks/{id}/status
				r.Put("/todo", taskHandler.UpdateTaskChecklist) // PUT /tasks/{id}/todo
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled or the server fails, then shuts
// everything down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	var wg sync.WaitGroup
	if a.worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker.Start(workerCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: shutdown requested")
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
			logger.Error("App: server failed", err)
		}
	}

	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: server shutdown", err)
	}
	stopWorker()
	wg.Wait()
	a.shutdown(shutdownCtx)

	logger.Info("App: stopped")
	return runErr
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// shutdown runs the registered hooks in reverse order.
func (a *App) shutdown(ctx context.Context) {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i](ctx)
	}
}

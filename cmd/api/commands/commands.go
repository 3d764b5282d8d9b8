package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X taskManager/cmd/api/commands.Version=..."
var (
	Version   = "dev"
	GitCommit = "none"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg)
			if err := application.Init(ctx); err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			return application.Run(ctx)
		},
	}
}

func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the Postgres schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(cfg.Database.URL); err != nil {
				return err
			}
			cmd.Println("Last migration rolled back")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationVersion(cfg.Database.URL)
			if err != nil {
				return err
			}
			cmd.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return migrateCmd
}

func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			profileImage, _ := cmd.Flags().GetString("profile-image-url")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Repository.Type == config.RepositoryInMemory {
				return fmt.Errorf("repository type %q does not persist users", cfg.Repository.Type)
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return err
			}
			defer logger.Sync()

			return createUser(cmd.Context(), cfg, service.CreateUserInput{
				Name:            name,
				Email:           email,
				Password:        password,
				Role:            user.Role(role),
				ProfileImageURL: profileImage,
			}, cmd)
		},
	}

	createUserCmd.Flags().String("name", "", "User name (required)")
	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("role", string(user.RoleMember), "User role (admin, member)")
	createUserCmd.Flags().String("profile-image-url", "", "Profile image URL")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("taskmanager %s (commit %s)\n", Version, GitCommit)
		},
	}
}

func createUser(ctx context.Context, cfg *config.Config, in service.CreateUserInput, cmd *cobra.Command) error {
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close(ctx)

	created, err := service.NewUserService(stores.Users, stores.Tasks).CreateUser(ctx, in)
	if err != nil {
		return err
	}
	cmd.Printf("User %s created with id %s and role %s\n", created.Email, created.UUID, created.Role)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

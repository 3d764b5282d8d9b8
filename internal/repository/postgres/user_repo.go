package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `uuid, name, email, password_hash, profile_image_url, role, created_at, updated_at`

type UserStorage struct {
	pool *pgxpool.Pool
}

func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer logSlow("create_user", start)

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (` + userColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		u.UUID,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.ProfileImageURL,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: inserting user", err)
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE uuid = $1`, id)
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *UserStorage) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}
	return s.list(ctx, `SELECT `+userColumns+` FROM users WHERE uuid = ANY($1)`, ids)
}

func (s *UserStorage) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	return s.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at ASC`, string(role))
}

func (s *UserStorage) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()
	defer logSlow("get_user", start)

	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: loading user", err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStorage) list(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	start := time.Now()
	defer logSlow("list_users", start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: querying users", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	var role string
	err := row.Scan(
		&u.UUID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.ProfileImageURL,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	return u, nil
}

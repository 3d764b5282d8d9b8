package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type TaskStorage struct {
	*Storage
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer logSlow("create_task", start)

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query, taskArgs(taskToCreate)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: inserting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update overwrites every mutable column. Last write wins.
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer logSlow("update_task", start)

	query := `UPDATE tasks
			SET title = $2,
				description = $3,
				priority = $4,
				status = $5,
				due_date = $6,
				progress = $7,
				todo_checklist = $8,
				assigned_to = $9,
				attachments = $10,
				updated_at = NOW()
			WHERE uuid = $1
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.UUID,
		taskToUpdate.Title,
		taskToUpdate.Description,
		string(taskToUpdate.Priority),
		string(taskToUpdate.Status),
		taskToUpdate.DueDate,
		taskToUpdate.Progress,
		checklistOrEmpty(taskToUpdate.TodoChecklist),
		idsOrEmpty(taskToUpdate.AssignedTo),
		stringsOrEmpty(taskToUpdate.Attachments),
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: updating task", err, zap.String("task_id", taskToUpdate.UUID.String()))
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer logSlow("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer logSlow("get_task", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE uuid = $1`

	found, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: loading task", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return found, nil
}

func (s *TaskStorage) Find(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at ASC`
	return s.query(ctx, "find_tasks", query, args...)
}

func (s *TaskStorage) Recent(ctx context.Context, filter task.Filter, limit int) ([]*task.Task, error) {
	where, args := whereClause(filter)
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY created_at DESC LIMIT $%d`, taskColumns, where, len(args))
	return s.query(ctx, "recent_tasks", query, args...)
}

func (s *TaskStorage) Count(ctx context.Context, filter task.Filter) (int64, error) {
	start := time.Now()
	defer logSlow("count_tasks", start)

	where, args := whereClause(filter)
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&count); err != nil {
		logger.Error("Repository: counting tasks", err)
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (s *TaskStorage) CountBy(ctx context.Context, filter task.Filter, field task.Field) (map[string]int64, error) {
	start := time.Now()
	defer logSlow("count_tasks_by", start)

	column, err := groupColumn(field)
	if err != nil {
		return nil, err
	}
	where, args := whereClause(filter)
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM tasks%[2]s GROUP BY %[1]s`, column, where)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: grouping tasks", err, zap.String("field", string(field)))
		return nil, fmt.Errorf("count tasks by %s: %w", field, err)
	}
	defer rows.Close()

	res := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		res[key] = count
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating groups", err)
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return res, nil
}

func (s *TaskStorage) query(ctx context.Context, operation, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow(operation, start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: querying tasks", err, zap.String("operation", operation))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: scanning task", err, zap.String("operation", operation))
			return nil, fmt.Errorf("%s: scan: %w", operation, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating rows", err)
		return nil, fmt.Errorf("%s: iterate: %w", operation, err)
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var priority, status string
	var createdBy *uuid.UUID

	err := row.Scan(
		&t.UUID,
		&t.Title,
		&t.Description,
		&priority,
		&status,
		&t.DueDate,
		&t.Progress,
		&t.TodoChecklist,
		&t.AssignedTo,
		&createdBy,
		&t.Attachments,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	t.TodoChecklist = checklistOrEmpty(t.TodoChecklist)
	t.AssignedTo = idsOrEmpty(t.AssignedTo)
	t.Attachments = stringsOrEmpty(t.Attachments)
	return t, nil
}

func taskArgs(t *task.Task) []any {
	var createdBy *uuid.UUID
	if t.CreatedBy != uuid.Nil {
		createdBy = &t.CreatedBy
	}
	return []any{
		t.UUID,
		t.Title,
		t.Description,
		string(t.Priority),
		string(t.Status),
		t.DueDate,
		t.Progress,
		checklistOrEmpty(t.TodoChecklist),
		idsOrEmpty(t.AssignedTo),
		createdBy,
		stringsOrEmpty(t.Attachments),
		t.CreatedAt,
		t.UpdatedAt,
	}
}

func checklistOrEmpty(items []task.ChecklistItem) []task.ChecklistItem {
	if items == nil {
		return []task.ChecklistItem{}
	}
	return items
}

func idsOrEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

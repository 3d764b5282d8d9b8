package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentTasksLimit = 10

const msgNotAssigned = "You are not assigned to this task"

// TaskDetail is a task with its assignees resolved to user summaries.
type TaskDetail struct {
	*task.Task
	Assignees          []user.Summary
	CompletedTodoCount int
}

type StatusSummary struct {
	All        int64
	Pending    int64
	InProgress int64
	Completed  int64
}

type TaskList struct {
	Tasks   []*TaskDetail
	Summary StatusSummary
}

// CreateTaskInput: a nil AssignedTo means the client did not send an array.
type CreateTaskInput struct {
	Title         string
	Description   string
	DueDate       time.Time
	Priority      task.Priority
	AssignedTo    []uuid.UUID
	Attachments   []string
	TodoChecklist []task.ChecklistItem
}

type DashboardStatistics struct {
	TotalTasks     int64
	PendingTasks   int64
	CompletedTasks int64
	OverdueTasks   int64
}

type Dashboard struct {
	Statistics DashboardStatistics
	// keys: Pending, InProgress, Completed, All
	StatusDistribution map[string]int64
	// keys: Low, Medium, High
	PriorityDistribution map[string]int64
	RecentTasks          []*task.Task
}

type TaskService struct {
	tasks TaskRepository
	users UserRepository
	now   func() time.Time
}

func NewTaskService(tasks TaskRepository, users UserRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   time.Now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, caller user.Caller, status *task.Status) (*TaskList, error) {
	if status != nil && !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("Invalid status %q", *status))
	}

	scope := task.ScopeFor(caller)
	filter := scope.Merge(task.Filter{Status: status})

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, s.storeError("list_tasks", err)
	}

	details, err := s.resolve(ctx, tasks...)
	if err != nil {
		return nil, err
	}

	// "all" ignores the status filter, each status count swaps it for its own
	summary := StatusSummary{}
	counters := []struct {
		dst    *int64
		filter task.Filter
	}{
		{&summary.All, scope},
		{&summary.Pending, filter.WithStatus(task.StatusPending)},
		{&summary.InProgress, filter.WithStatus(task.StatusInProgress)},
		{&summary.Completed, filter.WithStatus(task.StatusCompleted)},
	}
	for _, c := range counters {
		if *c.dst, err = s.tasks.Count(ctx, c.filter); err != nil {
			return nil, s.storeError("count_tasks", err)
		}
	}

	return &TaskList{Tasks: details, Summary: summary}, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*TaskDetail, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *TaskService) CreateTask(ctx context.Context, caller user.Caller, in CreateTaskInput) (*task.Task, error) {
	if in.AssignedTo == nil {
		return nil, NewValidationError("assignedTo", "AssignedTo must be an array")
	}
	if in.Title == "" {
		return nil, NewValidationError("title", "Title is required")
	}
	if in.DueDate.IsZero() {
		return nil, NewValidationError("dueDate", "Due date is required")
	}
	if in.Priority == "" {
		in.Priority = task.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("Invalid priority %q", in.Priority))
	}

	newTask := &task.Task{
		UUID:          uuid.New(),
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		Status:        task.StatusPending,
		DueDate:       in.DueDate,
		TodoChecklist: []task.ChecklistItem{},
		AssignedTo:    task.UniqueAssignees(in.AssignedTo),
		CreatedBy:     caller.ID,
		Attachments:   []string{},
		CreatedAt:     s.now(),
	}
	if in.Attachments != nil {
		newTask.Attachments = in.Attachments
	}
	if len(in.TodoChecklist) > 0 {
		newTask.ReplaceChecklist(in.TodoChecklist)
	}

	if err := s.tasks.Create(ctx, newTask); err != nil {
		return nil, s.storeError("create_task", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", newTask.UUID.String()),
		zap.String("created_by", caller.ID.String()),
		zap.Int("assignees", len(newTask.AssignedTo)))
	return newTask, nil
}

// UpdateTask overwrites the supplied fields. It is not assignment-checked:
// any authenticated caller may edit the core fields of any task.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Apply(t, options...)
	if !t.Priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("Invalid priority %q", t.Priority))
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, s.mapRepoError("update_task", id, err)
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.mapRepoError("delete_task", id, err)
	}
	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

// UpdateTaskStatus sets the status (kept when nil). A Completed task gets
// its whole checklist ticked and progress 100.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, caller user.Caller, id uuid.UUID, status *task.Status) (*task.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, t); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("Invalid status %q", *status))
	}

	if status != nil {
		t.Status = *status
	}
	if t.Status == task.StatusCompleted {
		task.ApplyCompletedStatus(t)
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, s.mapRepoError("update_task_status", id, err)
	}
	return t, nil
}

// UpdateTaskChecklist replaces the checklist and re-derives progress and
// status from it.
func (s *TaskService) UpdateTaskChecklist(ctx context.Context, caller user.Caller, id uuid.UUID, items []task.ChecklistItem) (*TaskDetail, error) {
	if items == nil {
		return nil, NewValidationError("todoChecklist", "todoChecklist must be an array")
	}

	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, t); err != nil {
		return nil, err
	}

	t.ReplaceChecklist(items)

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, s.mapRepoError("update_task_checklist", id, err)
	}

	details, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *TaskService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	return s.dashboard(ctx, task.Filter{})
}

// GetUserDashboard is scoped to the caller's assignments, admins included.
func (s *TaskService) GetUserDashboard(ctx context.Context, caller user.Caller) (*Dashboard, error) {
	id := caller.ID
	return s.dashboard(ctx, task.Filter{AssignedTo: &id})
}

func (s *TaskService) dashboard(ctx context.Context, scope task.Filter) (*Dashboard, error) {
	stats := DashboardStatistics{}
	var err error

	if stats.TotalTasks, err = s.tasks.Count(ctx, scope); err != nil {
		return nil, s.storeError("dashboard_total", err)
	}
	if stats.PendingTasks, err = s.tasks.Count(ctx, scope.WithStatus(task.StatusPending)); err != nil {
		return nil, s.storeError("dashboard_pending", err)
	}
	if stats.CompletedTasks, err = s.tasks.Count(ctx, scope.WithStatus(task.StatusCompleted)); err != nil {
		return nil, s.storeError("dashboard_completed", err)
	}
	if stats.OverdueTasks, err = s.tasks.Count(ctx, scope.Overdue(s.now())); err != nil {
		return nil, s.storeError("dashboard_overdue", err)
	}

	byStatus, err := s.tasks.CountBy(ctx, scope, task.FieldStatus)
	if err != nil {
		return nil, s.storeError("dashboard_status_distribution", err)
	}
	statusDistribution := make(map[string]int64, len(task.Statuses)+1)
	for _, st := range task.Statuses {
		statusDistribution[st.Key()] = byStatus[string(st)]
	}
	statusDistribution["All"] = stats.TotalTasks

	byPriority, err := s.tasks.CountBy(ctx, scope, task.FieldPriority)
	if err != nil {
		return nil, s.storeError("dashboard_priority_distribution", err)
	}
	priorityDistribution := make(map[string]int64, len(task.Priorities))
	for _, p := range task.Priorities {
		priorityDistribution[string(p)] = byPriority[string(p)]
	}

	recent, err := s.tasks.Recent(ctx, scope, recentTasksLimit)
	if err != nil {
		return nil, s.storeError("dashboard_recent", err)
	}

	return &Dashboard{
		Statistics:           stats,
		StatusDistribution:   statusDistribution,
		PriorityDistribution: priorityDistribution,
		RecentTasks:          recent,
	}, nil
}

func authorize(caller user.Caller, t *task.Task) error {
	if caller.IsAdmin() || t.IsAssigned(caller.ID) {
		return nil
	}
	logger.Warn("Service: caller is not assigned to the task",
		zap.String("task_id", t.UUID.String()),
		zap.String("caller_id", caller.ID.String()))
	return NewForbidden(msgNotAssigned)
}

func (s *TaskService) getTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("get_task", id, err)
	}
	return t, nil
}

// resolve annotates tasks with their assignee summaries, one user lookup
// for the whole batch. Unknown users are skipped.
func (s *TaskService) resolve(ctx context.Context, tasks ...*task.Task) ([]*TaskDetail, error) {
	ids := []uuid.UUID{}
	seen := map[uuid.UUID]struct{}{}
	for _, t := range tasks {
		for _, id := range t.AssignedTo {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	summaries := make(map[uuid.UUID]user.Summary, len(ids))
	if len(ids) > 0 {
		users, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, s.storeError("resolve_assignees", err)
		}
		for _, u := range users {
			summaries[u.UUID] = u.Summary()
		}
	}

	details := make([]*TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		assignees := make([]user.Summary, 0, len(t.AssignedTo))
		for _, id := range t.AssignedTo {
			if summary, ok := summaries[id]; ok {
				assignees = append(assignees, summary)
			}
		}
		details = append(details, &TaskDetail{
			Task:               t,
			Assignees:          assignees,
			CompletedTodoCount: task.CompletedCount(t.TodoChecklist),
		})
	}
	return details, nil
}

func (s *TaskService) mapRepoError(operation string, id uuid.UUID, err error) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: task not found", zap.String("target_id", id.String()))
		return NewNotFound("Task", id.String())
	}
	return s.storeError(operation, err)
}

func (s *TaskService) storeError(operation string, err error) error {
	logger.Error("Service: store failure", err, zap.String("operation", operation))
	return NewStoreError(operation, err)
}

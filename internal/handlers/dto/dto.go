package dto

import (
	"encoding/json"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/google/uuid"
)

// AssignedTo, TodoChecklist and DueDate stay raw so a present but malformed
// value can be told apart from an absent one.
type CreateTaskRequest struct {
	Title         string          `json:"title" validate:"required,max=255"`
	Description   string          `json:"description"`
	Priority      string          `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate       json.RawMessage `json:"dueDate"`
	AssignedTo    json.RawMessage `json:"assignedTo"`
	Attachments   []string        `json:"attachments" validate:"omitempty,dive,max=2048"`
	TodoChecklist json.RawMessage `json:"todoChecklist"`
}

type UpdateTaskRequest struct {
	Title         string          `json:"title" validate:"omitempty,max=255"`
	Description   string          `json:"description"`
	Priority      string          `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate       json.RawMessage `json:"dueDate"`
	AssignedTo    json.RawMessage `json:"assignedTo"`
	Attachments   []string        `json:"attachments" validate:"omitempty,dive,max=2048"`
	TodoChecklist json.RawMessage `json:"todoChecklist"`
}

type UpdateStatusRequest struct {
	Status *string `json:"status"`
}

type UpdateChecklistRequest struct {
	TodoChecklist json.RawMessage `json:"todoChecklist"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	ProfileImageURL  string `json:"profileImageUrl" validate:"omitempty,max=2048"`
	AdminInviteToken string `json:"adminInviteToken"`
}

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type TaskResponse struct {
	UUID          uuid.UUID            `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Priority      string               `json:"priority"`
	Status        string               `json:"status"`
	DueDate       time.Time            `json:"dueDate"`
	Progress      int                  `json:"progress"`
	TodoChecklist []task.ChecklistItem `json:"todoChecklist"`
	AssignedTo    []uuid.UUID          `json:"assignedTo"`
	CreatedBy     uuid.UUID            `json:"createdBy"`
	Attachments   []string             `json:"attachments"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     *time.Time           `json:"updatedAt,omitempty"`
}

// TaskDetailResponse is a task with assignees populated.
type TaskDetailResponse struct {
	UUID               uuid.UUID            `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Priority           string               `json:"priority"`
	Status             string               `json:"status"`
	DueDate            time.Time            `json:"dueDate"`
	Progress           int                  `json:"progress"`
	TodoChecklist      []task.ChecklistItem `json:"todoChecklist"`
	AssignedTo         []user.Summary       `json:"assignedTo"`
	CreatedBy          uuid.UUID            `json:"createdBy"`
	Attachments        []string             `json:"attachments"`
	CompletedTodoCount int                  `json:"completedTodoCount"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          *time.Time           `json:"updatedAt,omitempty"`
}

type StatusSummaryResponse struct {
	All             int64 `json:"all"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

type TaskListResponse struct {
	Tasks         []TaskDetailResponse  `json:"tasks"`
	StatusSummary StatusSummaryResponse `json:"statusSummary"`
}

type RecentTaskResponse struct {
	UUID      uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	DueDate   time.Time `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
}

type StatisticsResponse struct {
	TotalTasks     int64 `json:"totalTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
}

type ChartsResponse struct {
	TaskDistribution   map[string]int64 `json:"taskDistribution"`
	TaskPriorityLevels map[string]int64 `json:"taskPriorityLevels"`
}

type DashboardResponse struct {
	Statistics  StatisticsResponse   `json:"statistics"`
	Charts      ChartsResponse       `json:"charts"`
	RecentTasks []RecentTaskResponse `json:"recentTasks"`
}

type UserResponse struct {
	UUID            uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
}

type MemberResponse struct {
	UserResponse
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

// AuthResponse is the user record with the issued token next to it.
type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		UUID:          t.UUID,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		Status:        string(t.Status),
		DueDate:       t.DueDate,
		Progress:      t.Progress,
		TodoChecklist: nonNil(t.TodoChecklist),
		AssignedTo:    nonNil(t.AssignedTo),
		CreatedBy:     t.CreatedBy,
		Attachments:   nonNil(t.Attachments),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func FromTaskDetail(d *service.TaskDetail) TaskDetailResponse {
	return TaskDetailResponse{
		UUID:               d.UUID,
		Title:              d.Title,
		Description:        d.Description,
		Priority:           string(d.Priority),
		Status:             string(d.Status),
		DueDate:            d.DueDate,
		Progress:           d.Progress,
		TodoChecklist:      nonNil(d.TodoChecklist),
		AssignedTo:         nonNil(d.Assignees),
		CreatedBy:          d.CreatedBy,
		Attachments:        nonNil(d.Attachments),
		CompletedTodoCount: d.CompletedTodoCount,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func FromTaskList(list *service.TaskList) TaskListResponse {
	tasks := make([]TaskDetailResponse, len(list.Tasks))
	for i, d := range list.Tasks {
		tasks[i] = FromTaskDetail(d)
	}
	return TaskListResponse{
		Tasks: tasks,
		StatusSummary: StatusSummaryResponse{
			All:             list.Summary.All,
			PendingTasks:    list.Summary.Pending,
			InProgressTasks: list.Summary.InProgress,
			CompletedTasks:  list.Summary.Completed,
		},
	}
}

func FromDashboard(d *service.Dashboard) DashboardResponse {
	recent := make([]RecentTaskResponse, len(d.RecentTasks))
	for i, t := range d.RecentTasks {
		recent[i] = RecentTaskResponse{
			UUID:      t.UUID,
			Title:     t.Title,
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			DueDate:   t.DueDate,
			CreatedAt: t.CreatedAt,
		}
	}
	return DashboardResponse{
		Statistics: StatisticsResponse{
			TotalTasks:     d.Statistics.TotalTasks,
			PendingTasks:   d.Statistics.PendingTasks,
			CompletedTasks: d.Statistics.CompletedTasks,
			OverdueTasks:   d.Statistics.OverdueTasks,
		},
		Charts: ChartsResponse{
			TaskDistribution:   d.StatusDistribution,
			TaskPriorityLevels: d.PriorityDistribution,
		},
		RecentTasks: recent,
	}
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		UUID:            u.UUID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
	}
}

func FromAuth(token string, u *user.User) AuthResponse {
	return AuthResponse{
		UserResponse: FromUser(u),
		Token:        token,
	}
}

func FromMembers(members []*service.MemberWorkload) []MemberResponse {
	res := make([]MemberResponse, len(members))
	for i, m := range members {
		res[i] = MemberResponse{
			UserResponse:    FromUser(m.User),
			PendingTasks:    m.PendingTasks,
			InProgressTasks: m.InProgressTasks,
			CompletedTasks:  m.CompletedTasks,
		}
	}
	return res
}

func ToChecklist(items []ChecklistItem) []task.ChecklistItem {
	if items == nil {
		return nil
	}
	res := make([]task.ChecklistItem, len(items))
	for i, item := range items {
		res[i] = task.ChecklistItem{Text: item.Text, Completed: item.Completed}
	}
	return res
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

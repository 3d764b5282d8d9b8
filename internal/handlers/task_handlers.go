package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "task-manager"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC()),
	)
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var status *task.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := task.Status(raw)
		status = &st
	}

	list, err := s.TaskService.ListTasks(r.Context(), caller, status)
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(list.Tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(list))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: task fetched",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskDetail(detail))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	assignees, err := parseIDs(request.AssignedTo, "AssignedTo must be an array")
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	checklist, err := parseChecklist(request.TodoChecklist)
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	dueDate, err := parseDate(request.DueDate)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), caller, service.CreateTaskInput{
		Title:         request.Title,
		Description:   request.Description,
		DueDate:       dueDate,
		Priority:      task.Priority(request.Priority),
		AssignedTo:    assignees,
		Attachments:   request.Attachments,
		TodoChecklist: dto.ToChecklist(checklist),
	})
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "Task created successfully"),
		toPayload("task", dto.FromTask(created)),
	)
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	// falsy values keep the stored field
	if isFalsy(request.AssignedTo) {
		request.AssignedTo = nil
	}
	if isFalsy(request.TodoChecklist) {
		request.TodoChecklist = nil
	}

	assignees, err := parseIDs(request.AssignedTo, "AssignedTo must be an array of user IDs")
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	checklist, err := parseChecklist(request.TodoChecklist)
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	dueDate, err := parseDate(request.DueDate)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id,
		task.WithTitle(request.Title),
		task.WithDescription(request.Description),
		task.WithPriority(task.Priority(request.Priority)),
		task.WithDueDate(dueDate),
		task.WithChecklist(dto.ToChecklist(checklist)),
		task.WithAttachments(request.Attachments),
		task.WithAssignees(assignees),
	)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task updated successfully"),
		toPayload("updatedTask", dto.FromTask(updated)),
	)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", "Task deleted successfully"))
}

func (s *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request dto.UpdateStatusRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	// an absent or empty status keeps the stored one
	var status *task.Status
	if request.Status != nil && *request.Status != "" {
		st := task.Status(*request.Status)
		status = &st
	}

	updated, err := s.TaskService.UpdateTaskStatus(r.Context(), caller, id, status)
	if err != nil {
		handleServiceError(w, r, err, "update_task_status")
		return
	}

	logger.Info("HTTP_OUT: task status updated",
		zap.String("task_id", id.String()),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task status updated successfully"),
		toPayload("task", dto.FromTask(updated)),
	)
}

func (s *TaskHandler) UpdateTaskChecklist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var request dto.UpdateChecklistRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	checklist, err := parseChecklist(request.TodoChecklist)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	detail, err := s.TaskService.UpdateTaskChecklist(r.Context(), caller, id, dto.ToChecklist(checklist))
	if err != nil {
		handleServiceError(w, r, err, "update_task_checklist")
		return
	}

	logger.Info("HTTP_OUT: task checklist updated",
		zap.String("task_id", id.String()),
		zap.Int("progress", detail.Progress),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task checklist updated successfully"),
		toPayload("task", dto.FromTaskDetail(detail)),
	)
}

func (s *TaskHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	dashboard, err := s.TaskService.GetDashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "dashboard")
		return
	}

	logger.Info("HTTP_OUT: dashboard built",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromDashboard(dashboard))
}

func (s *TaskHandler) GetUserDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	dashboard, err := s.TaskService.GetUserDashboard(r.Context(), caller)
	if err != nil {
		handleServiceError(w, r, err, "user_dashboard")
		return
	}

	logger.Info("HTTP_OUT: user dashboard built",
		zap.String("caller_id", caller.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromDashboard(dashboard))
}

// requireCaller reads the caller set by the auth middleware. Routes mounted
// without it answer 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (user.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		logger.Warn("HTTP: request without caller",
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, service.NewUnauthorized("Not authorized, no token"))
		return user.Caller{}, false
	}
	return caller, true
}

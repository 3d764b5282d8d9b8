package task

import (
	"time"

	"github.com/google/uuid"
)

// TaskOption overwrites one field of a stored task. Constructors return nil
// for "empty" input (blank string, zero time, nil slice), such options are
// skipped by Apply and the stored value is kept.
type TaskOption func(*Task)

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDueDate(dueDate time.Time) TaskOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.DueDate = dueDate
	}
}

// WithChecklist replaces the checklist. A non-empty checklist re-derives
// progress and status, an empty one only resets progress.
func WithChecklist(items []ChecklistItem) TaskOption {
	if items == nil {
		return nil
	}
	return func(task *Task) {
		if len(items) == 0 {
			task.TodoChecklist = []ChecklistItem{}
			task.Progress = 0
			return
		}
		task.ReplaceChecklist(items)
	}
}

func WithAttachments(attachments []string) TaskOption {
	if attachments == nil {
		return nil
	}
	return func(task *Task) {
		task.Attachments = attachments
	}
}

func WithAssignees(ids []uuid.UUID) TaskOption {
	if ids == nil {
		return nil
	}
	return func(task *Task) {
		task.AssignedTo = UniqueAssignees(ids)
	}
}

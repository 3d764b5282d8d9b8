package task

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID          uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Priority      Priority        `json:"priority"`
	Status        Status          `json:"status"`
	DueDate       time.Time       `json:"dueDate"`
	Progress      int             `json:"progress"`
	TodoChecklist []ChecklistItem `json:"todoChecklist"`
	AssignedTo    []uuid.UUID     `json:"assignedTo"`
	CreatedBy     uuid.UUID       `json:"createdBy"`
	Attachments   []string        `json:"attachments"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Status string
type Priority string

const StatusPending Status = "Pending"
const StatusInProgress Status = "In Progress"
const StatusCompleted Status = "Completed"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

// Statuses and Priorities keep the order used by dashboards.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Key is the status without whitespace ("In Progress" -> "InProgress").
func (s Status) Key() string {
	return strings.Join(strings.Fields(string(s)), "")
}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// IsAssigned reports whether userID is one of the task assignees.
func (t *Task) IsAssigned(userID uuid.UUID) bool {
	return slices.Contains(t.AssignedTo, userID)
}

// IsOverdue: not completed and past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(now)
}

// Clone returns a deep copy, storages never share slices with callers.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.TodoChecklist = slices.Clone(t.TodoChecklist)
	c.AssignedTo = slices.Clone(t.AssignedTo)
	c.Attachments = slices.Clone(t.Attachments)
	if t.UpdatedAt != nil {
		updatedAt := *t.UpdatedAt
		c.UpdatedAt = &updatedAt
	}
	return &c
}

// UniqueAssignees drops duplicated ids keeping the first occurrence order.
func UniqueAssignees(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	res := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

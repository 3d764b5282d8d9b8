package task

import (
	"time"

	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// Filter is the storage-agnostic task predicate. Nil fields match anything.
type Filter struct {
	AssignedTo    *uuid.UUID
	Status        *Status
	ExcludeStatus *Status
	DueBefore     *time.Time
}

// Field names a task attribute tasks can be grouped by.
type Field string

const FieldStatus Field = "status"
const FieldPriority Field = "priority"

// ScopeFor is the visibility predicate of a caller: admins see every task,
// members only the tasks assigned to them.
func ScopeFor(caller user.Caller) Filter {
	if caller.IsAdmin() {
		return Filter{}
	}
	id := caller.ID
	return Filter{AssignedTo: &id}
}

// Merge returns f with every non-nil field of other applied on top.
func (f Filter) Merge(other Filter) Filter {
	if other.AssignedTo != nil {
		f.AssignedTo = other.AssignedTo
	}
	if other.Status != nil {
		f.Status = other.Status
	}
	if other.ExcludeStatus != nil {
		f.ExcludeStatus = other.ExcludeStatus
	}
	if other.DueBefore != nil {
		f.DueBefore = other.DueBefore
	}
	return f
}

func (f Filter) WithStatus(status Status) Filter {
	f.Status = &status
	return f
}

// Overdue narrows f to tasks not completed and due before now.
func (f Filter) Overdue(now time.Time) Filter {
	completed := StatusCompleted
	f.ExcludeStatus = &completed
	f.DueBefore = &now
	return f
}

func (f Filter) Match(t *Task) bool {
	if f.AssignedTo != nil && !t.IsAssigned(*f.AssignedTo) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.ExcludeStatus != nil && t.Status == *f.ExcludeStatus {
		return false
	}
	if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
		return false
	}
	return true
}

// GroupKey returns the value of field for t.
func (t *Task) GroupKey(field Field) string {
	switch field {
	case FieldPriority:
		return string(t.Priority)
	default:
		return string(t.Status)
	}
}

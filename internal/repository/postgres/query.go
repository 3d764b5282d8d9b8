package postgres

import (
	"fmt"
	"strings"

	"taskManager/internal/models/task"
)

const taskColumns = `uuid, title, description, priority, status, due_date, progress,
	todo_checklist, assigned_to, created_by, attachments, created_at, updated_at`

// whereClause renders f as a WHERE clause with positional arguments.
// An empty filter yields an empty clause.
func whereClause(f task.Filter) (string, []any) {
	conds := []string{}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.AssignedTo != nil {
		add("$%d = ANY(assigned_to)", *f.AssignedTo)
	}
	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.ExcludeStatus != nil {
		add("status <> $%d", string(*f.ExcludeStatus))
	}
	if f.DueBefore != nil {
		add("due_date < $%d", *f.DueBefore)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// groupColumn maps a groupable field to its column. Column names never
// come from user input.
func groupColumn(field task.Field) (string, error) {
	switch field {
	case task.FieldStatus:
		return "status", nil
	case task.FieldPriority:
		return "priority", nil
	default:
		return "", fmt.Errorf("unsupported group field %q", field)
	}
}

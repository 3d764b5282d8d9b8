package mongo

import (
	"fmt"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Ids are stored as their canonical string form so documents stay
// readable from the mongo shell.
type taskDocument struct {
	ID            string              `bson:"_id"`
	Title         string              `bson:"title"`
	Description   string              `bson:"description"`
	Priority      string              `bson:"priority"`
	Status        string              `bson:"status"`
	DueDate       time.Time           `bson:"dueDate"`
	Progress      int                 `bson:"progress"`
	TodoChecklist []checklistDocument `bson:"todoChecklist"`
	AssignedTo    []string            `bson:"assignedTo"`
	CreatedBy     string              `bson:"createdBy,omitempty"`
	Attachments   []string            `bson:"attachments"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     *time.Time          `bson:"updatedAt,omitempty"`
}

type checklistDocument struct {
	Text      string `bson:"text"`
	Completed bool   `bson:"completed"`
}

type userDocument struct {
	ID              string     `bson:"_id"`
	Name            string     `bson:"name"`
	Email           string     `bson:"email"`
	PasswordHash    string     `bson:"passwordHash"`
	ProfileImageURL string     `bson:"profileImageUrl"`
	Role            string     `bson:"role"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       *time.Time `bson:"updatedAt,omitempty"`
}

func toTaskDocument(t *task.Task) taskDocument {
	doc := taskDocument{
		ID:            t.UUID.String(),
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		Status:        string(t.Status),
		DueDate:       t.DueDate,
		Progress:      t.Progress,
		TodoChecklist: make([]checklistDocument, 0, len(t.TodoChecklist)),
		AssignedTo:    make([]string, 0, len(t.AssignedTo)),
		Attachments:   []string{},
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for _, item := range t.TodoChecklist {
		doc.TodoChecklist = append(doc.TodoChecklist, checklistDocument{Text: item.Text, Completed: item.Completed})
	}
	for _, id := range t.AssignedTo {
		doc.AssignedTo = append(doc.AssignedTo, id.String())
	}
	if t.CreatedBy != uuid.Nil {
		doc.CreatedBy = t.CreatedBy.String()
	}
	if t.Attachments != nil {
		doc.Attachments = t.Attachments
	}
	return doc
}

func (d taskDocument) toTask() (*task.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("task id %q: %w", d.ID, err)
	}

	t := &task.Task{
		UUID:          id,
		Title:         d.Title,
		Description:   d.Description,
		Priority:      task.Priority(d.Priority),
		Status:        task.Status(d.Status),
		DueDate:       d.DueDate,
		Progress:      d.Progress,
		TodoChecklist: make([]task.ChecklistItem, 0, len(d.TodoChecklist)),
		AssignedTo:    make([]uuid.UUID, 0, len(d.AssignedTo)),
		Attachments:   []string{},
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, item := range d.TodoChecklist {
		t.TodoChecklist = append(t.TodoChecklist, task.ChecklistItem{Text: item.Text, Completed: item.Completed})
	}
	for _, raw := range d.AssignedTo {
		assignee, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("assignee %q: %w", raw, err)
		}
		t.AssignedTo = append(t.AssignedTo, assignee)
	}
	if d.CreatedBy != "" {
		if t.CreatedBy, err = uuid.Parse(d.CreatedBy); err != nil {
			return nil, fmt.Errorf("creator %q: %w", d.CreatedBy, err)
		}
	}
	if d.Attachments != nil {
		t.Attachments = d.Attachments
	}
	return t, nil
}

func toUserDocument(u *user.User) userDocument {
	return userDocument{
		ID:              u.UUID.String(),
		Name:            u.Name,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		ProfileImageURL: u.ProfileImageURL,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDocument) toUser() (*user.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", d.ID, err)
	}
	return &user.User{
		UUID:            id,
		Name:            d.Name,
		Email:           d.Email,
		PasswordHash:    d.PasswordHash,
		ProfileImageURL: d.ProfileImageURL,
		Role:            user.Role(d.Role),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

// toFilter renders f as a query document. An empty filter matches all.
func toFilter(f task.Filter) bson.M {
	filter := bson.M{}
	if f.AssignedTo != nil {
		filter["assignedTo"] = f.AssignedTo.String()
	}

	status := bson.M{}
	if f.Status != nil {
		status["$eq"] = string(*f.Status)
	}
	if f.ExcludeStatus != nil {
		status["$ne"] = string(*f.ExcludeStatus)
	}
	if len(status) > 0 {
		filter["status"] = status
	}

	if f.DueBefore != nil {
		filter["dueDate"] = bson.M{"$lt": *f.DueBefore}
	}
	return filter
}

func groupField(field task.Field) (string, error) {
	switch field {
	case task.FieldStatus:
		return "status", nil
	case task.FieldPriority:
		return "priority", nil
	default:
		return "", fmt.Errorf("unsupported group field %q", field)
	}
}

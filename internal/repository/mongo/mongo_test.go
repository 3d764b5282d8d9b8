package mongo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"
	mongorepo "taskManager/internal/repository/mongo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type MongoTestSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	storage   *mongorepo.Storage
	dbName    string
	uri       string
}

func TestMongoTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(MongoTestSuite))
}

func (s *MongoTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "27017")
	s.Require().NoError(err)
	s.uri = fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func (s *MongoTestSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// Each test gets a fresh database.
func (s *MongoTestSuite) SetupTest() {
	s.dbName = "tasks_" + uuid.NewString()[:8]
	storage, err := mongorepo.New(s.ctx, config.MongoConfig{URI: s.uri, Database: s.dbName})
	s.Require().NoError(err)
	s.storage = storage
}

func (s *MongoTestSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close(s.ctx)
	}
}

func (s *MongoTestSuite) newTask(title string, createdAt time.Time, assignees ...uuid.UUID) *task.Task {
	return &task.Task{
		UUID:          uuid.New(),
		Title:         title,
		Priority:      task.PriorityMedium,
		Status:        task.StatusPending,
		DueDate:       time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond),
		TodoChecklist: []task.ChecklistItem{},
		AssignedTo:    assignees,
		CreatedAt:     createdAt.UTC().Truncate(time.Millisecond),
	}
}

func (s *MongoTestSuite) TestTaskLifecycle() {
	tasks := s.storage.Tasks()
	s.Require().NoError(tasks.HealthCheck(s.ctx))

	t := s.newTask("Write report", time.Now(), uuid.New())
	s.Require().NoError(tasks.Create(s.ctx, t))
	s.ErrorIs(tasks.Create(s.ctx, t), repo.ErrDuplicate)

	got, err := tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(t.Title, got.Title)
	s.Equal(t.AssignedTo, got.AssignedTo)

	t.Status = task.StatusCompleted
	t.Progress = 100
	s.Require().NoError(tasks.Update(s.ctx, t))

	got, err = tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(task.StatusCompleted, got.Status)
	s.NotNil(got.UpdatedAt)

	s.Require().NoError(tasks.Delete(s.ctx, t.UUID))
	s.ErrorIs(tasks.Delete(s.ctx, t.UUID), repo.ErrNotFound)
	s.ErrorIs(tasks.Update(s.ctx, t), repo.ErrNotFound)
	_, err = tasks.GetByID(s.ctx, t.UUID)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *MongoTestSuite) TestFiltersAndAggregates() {
	tasks := s.storage.Tasks()
	alice := uuid.New()
	base := time.Now().Add(-time.Hour)

	first := s.newTask("first", base, alice)
	second := s.newTask("second", base.Add(time.Minute), alice)
	second.Status = task.StatusCompleted
	second.Priority = task.PriorityHigh
	late := s.newTask("late", base.Add(2*time.Minute))
	late.DueDate = time.Now().Add(-time.Hour)

	for _, t := range []*task.Task{late, second, first} {
		s.Require().NoError(tasks.Create(s.ctx, t))
	}

	found, err := tasks.Find(s.ctx, task.Filter{AssignedTo: &alice})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("first", found[0].Title)

	overdue, err := tasks.Count(s.ctx, task.Filter{}.Overdue(time.Now()))
	s.Require().NoError(err)
	s.Equal(int64(1), overdue)

	byStatus, err := tasks.CountBy(s.ctx, task.Filter{}, task.FieldStatus)
	s.Require().NoError(err)
	s.Equal(map[string]int64{"Pending": 2, "Completed": 1}, byStatus)

	byPriority, err := tasks.CountBy(s.ctx, task.Filter{AssignedTo: &alice}, task.FieldPriority)
	s.Require().NoError(err)
	s.Equal(map[string]int64{"Medium": 1, "High": 1}, byPriority)

	recent, err := tasks.Recent(s.ctx, task.Filter{}, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("late", recent[0].Title)
	s.Equal("second", recent[1].Title)
}

func (s *MongoTestSuite) TestUsers() {
	users := s.storage.Users()
	alice := &user.User{UUID: uuid.New(), Name: "Alice", Email: "Alice@Example.com", Role: user.RoleMember}
	s.Require().NoError(users.Create(s.ctx, alice))
	s.ErrorIs(users.Create(s.ctx, &user.User{UUID: uuid.New(), Email: "alice@example.com"}), repo.ErrDuplicate)

	got, err := users.GetByEmail(s.ctx, "ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(alice.UUID, got.UUID)

	byIDs, err := users.GetByIDs(s.ctx, []uuid.UUID{alice.UUID, uuid.New()})
	s.Require().NoError(err)
	s.Len(byIDs, 1)

	members, err := users.ListByRole(s.ctx, user.RoleMember)
	s.Require().NoError(err)
	s.Len(members, 1)

	_, err = users.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, repo.ErrNotFound)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ScenarioSuite runs the services against the in-memory storage.
type ScenarioSuite struct {
	suite.Suite
	ctx    context.Context
	tasks  *inmemory.TaskStorage
	users  *inmemory.UserStorage
	svc    *service.TaskService
	admin  user.Caller
	alice  *user.User
	bob    *user.User
	future time.Time
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func (s *ScenarioSuite) SetupTest() {
	s.ctx = context.Background()
	s.tasks = inmemory.NewTaskStorage()
	s.users = inmemory.NewUserStorage()
	s.svc = service.NewTaskService(s.tasks, s.users)
	s.admin = user.Caller{ID: uuid.New(), Role: user.RoleAdmin}
	s.future = time.Now().Add(72 * time.Hour)

	s.alice = &user.User{UUID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: user.RoleMember}
	s.bob = &user.User{UUID: uuid.New(), Name: "Bob", Email: "bob@example.com", Role: user.RoleMember}
	s.Require().NoError(s.users.Create(s.ctx, s.alice))
	s.Require().NoError(s.users.Create(s.ctx, s.bob))
}

func (s *ScenarioSuite) caller(u *user.User) user.Caller {
	return user.Caller{ID: u.UUID, Role: u.Role}
}

func (s *ScenarioSuite) create(title string, assignees ...uuid.UUID) *task.Task {
	if assignees == nil {
		assignees = []uuid.UUID{}
	}
	created, err := s.svc.CreateTask(s.ctx, s.admin, service.CreateTaskInput{
		Title:      title,
		DueDate:    s.future,
		AssignedTo: assignees,
	})
	s.Require().NoError(err)
	return created
}

func (s *ScenarioSuite) TestForbiddenStatusChangeLeavesTaskUnchanged() {
	t := s.create("Alice only", s.alice.UUID)
	completed := task.StatusCompleted

	_, err := s.svc.UpdateTaskStatus(s.ctx, s.caller(s.bob), t.UUID, &completed)
	s.Require().Error(err)
	s.True(service.HasCode(err, service.CodeForbidden))

	stored, err := s.tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(task.StatusPending, stored.Status)
	s.Nil(stored.UpdatedAt)
}

func (s *ScenarioSuite) TestForbiddenChecklistChangeLeavesTaskUnchanged() {
	t := s.create("Alice only", s.alice.UUID)

	_, err := s.svc.UpdateTaskChecklist(s.ctx, s.caller(s.bob), t.UUID, []task.ChecklistItem{{Text: "x", Completed: true}})
	s.Require().Error(err)
	s.True(service.HasCode(err, service.CodeForbidden))

	stored, err := s.tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Empty(stored.TodoChecklist)
	s.Equal(0, stored.Progress)
}

func (s *ScenarioSuite) TestChecklistDrivesProgressAndStatus() {
	t := s.create("Checklist", s.alice.UUID)

	detail, err := s.svc.UpdateTaskChecklist(s.ctx, s.caller(s.alice), t.UUID, []task.ChecklistItem{
		{Text: "a", Completed: true},
		{Text: "b", Completed: true},
		{Text: "c"},
	})
	s.Require().NoError(err)
	s.Equal(67, detail.Progress)
	s.Equal(task.StatusInProgress, detail.Status)
	s.Equal(2, detail.CompletedTodoCount)
	s.Require().Len(detail.Assignees, 1)
	s.Equal("Alice", detail.Assignees[0].Name)

	detail, err = s.svc.UpdateTaskChecklist(s.ctx, s.caller(s.alice), t.UUID, []task.ChecklistItem{
		{Text: "a", Completed: true},
		{Text: "b", Completed: true},
		{Text: "c", Completed: true},
	})
	s.Require().NoError(err)
	s.Equal(100, detail.Progress)
	s.Equal(task.StatusCompleted, detail.Status)

	detail, err = s.svc.UpdateTaskChecklist(s.ctx, s.caller(s.alice), t.UUID, []task.ChecklistItem{})
	s.Require().NoError(err)
	s.Equal(0, detail.Progress)
	s.Equal(task.StatusPending, detail.Status)
}

func (s *ScenarioSuite) TestAdminCompletesUnassignedTask() {
	t := s.create("Nobody's")
	_, err := s.svc.UpdateTaskChecklist(s.ctx, s.admin, t.UUID, []task.ChecklistItem{{Text: "a"}, {Text: "b"}})
	s.Require().NoError(err)

	completed := task.StatusCompleted
	updated, err := s.svc.UpdateTaskStatus(s.ctx, s.admin, t.UUID, &completed)
	s.Require().NoError(err)
	s.Equal(100, updated.Progress)

	stored, err := s.tasks.GetByID(s.ctx, t.UUID)
	s.Require().NoError(err)
	s.Equal(task.StatusCompleted, stored.Status)
	for _, item := range stored.TodoChecklist {
		s.True(item.Completed)
	}
}

func (s *ScenarioSuite) TestListTasksRoleScoping() {
	s.create("Alice 1", s.alice.UUID)
	s.create("Alice and Bob", s.alice.UUID, s.bob.UUID)
	s.create("Bob 1", s.bob.UUID)

	list, err := s.svc.ListTasks(s.ctx, s.admin, nil)
	s.Require().NoError(err)
	s.Len(list.Tasks, 3)
	s.Equal(int64(3), list.Summary.All)

	list, err = s.svc.ListTasks(s.ctx, s.caller(s.alice), nil)
	s.Require().NoError(err)
	s.Len(list.Tasks, 2)
	for _, t := range list.Tasks {
		s.True(t.IsAssigned(s.alice.UUID))
	}
	s.Equal(service.StatusSummary{All: 2, Pending: 2}, list.Summary)

	shared := list.Tasks[1]
	s.Equal("Alice and Bob", shared.Title)
	s.Len(shared.Assignees, 2)
}

func (s *ScenarioSuite) TestListTasksStatusFilterKeepsAllCount() {
	first := s.create("First", s.alice.UUID)
	s.create("Second", s.alice.UUID)

	completed := task.StatusCompleted
	_, err := s.svc.UpdateTaskStatus(s.ctx, s.caller(s.alice), first.UUID, &completed)
	s.Require().NoError(err)

	list, err := s.svc.ListTasks(s.ctx, s.caller(s.alice), &completed)
	s.Require().NoError(err)
	s.Require().Len(list.Tasks, 1)
	s.Equal("First", list.Tasks[0].Title)
	s.Equal(service.StatusSummary{All: 2, Pending: 1, Completed: 1}, list.Summary)
}

func (s *ScenarioSuite) TestDashboardDistributions() {
	completed := task.StatusCompleted
	for i := 0; i < 8; i++ {
		created := s.create("Task", s.alice.UUID)
		if i >= 5 {
			_, err := s.svc.UpdateTaskStatus(s.ctx, s.admin, created.UUID, &completed)
			s.Require().NoError(err)
		}
	}

	dashboard, err := s.svc.GetDashboard(s.ctx)
	s.Require().NoError(err)

	s.Equal(map[string]int64{"Pending": 5, "InProgress": 0, "Completed": 3, "All": 8}, dashboard.StatusDistribution)
	s.Equal(map[string]int64{"Low": 0, "Medium": 8, "High": 0}, dashboard.PriorityDistribution)
	s.Equal(service.DashboardStatistics{TotalTasks: 8, PendingTasks: 5, CompletedTasks: 3}, dashboard.Statistics)
	s.Len(dashboard.RecentTasks, 8)
}

func (s *ScenarioSuite) TestDashboardRecentIsNewestFirstAndCapped() {
	for i := 0; i < 12; i++ {
		s.create("Task")
	}
	last := s.create("Newest")

	dashboard, err := s.svc.GetDashboard(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(dashboard.RecentTasks, 10)
	s.Equal(last.UUID, dashboard.RecentTasks[0].UUID)
}

func (s *ScenarioSuite) TestUserDashboardCountsOverdue() {
	_, err := s.svc.CreateTask(s.ctx, s.admin, service.CreateTaskInput{
		Title:      "Late",
		DueDate:    time.Now().Add(-time.Hour),
		Priority:   task.PriorityHigh,
		AssignedTo: []uuid.UUID{s.alice.UUID},
	})
	s.Require().NoError(err)
	s.create("Bob's", s.bob.UUID)

	dashboard, err := s.svc.GetUserDashboard(s.ctx, s.caller(s.alice))
	s.Require().NoError(err)
	s.Equal(int64(1), dashboard.Statistics.TotalTasks)
	s.Equal(int64(1), dashboard.Statistics.OverdueTasks)
	s.Equal(int64(1), dashboard.PriorityDistribution["High"])

	dashboard, err = s.svc.GetUserDashboard(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(int64(0), dashboard.Statistics.TotalTasks)
	s.Empty(dashboard.RecentTasks)
}

func (s *ScenarioSuite) TestMembersWorkload() {
	first := s.create("A1", s.alice.UUID)
	s.create("A2", s.alice.UUID)
	s.create("B1", s.bob.UUID)

	_, err := s.svc.UpdateTaskChecklist(s.ctx, s.caller(s.alice), first.UUID, []task.ChecklistItem{{Text: "a", Completed: true}, {Text: "b"}})
	s.Require().NoError(err)

	admin := &user.User{UUID: s.admin.ID, Name: "Root", Email: "root@example.com", Role: user.RoleAdmin}
	s.Require().NoError(s.users.Create(s.ctx, admin))

	members, err := service.NewUserService(s.users, s.tasks).ListMembers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(members, 2)

	s.Equal("Alice", members[0].Name)
	s.Equal(int64(1), members[0].PendingTasks)
	s.Equal(int64(1), members[0].InProgressTasks)
	s.Equal(int64(0), members[0].CompletedTasks)
	s.Equal("Bob", members[1].Name)
	s.Equal(int64(1), members[1].PendingTasks)
}

func TestUserService_CreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	users := inmemory.NewUserStorage()
	userSvc := service.NewUserService(users, inmemory.NewTaskStorage())
	authSvc := service.NewAuthService(users, auth.NewTokenManager("secret", time.Hour, "task-manager"), "")

	created, err := userSvc.CreateUser(ctx, service.CreateUserInput{
		Name:     "Carol",
		Email:    " Carol@Example.com ",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", created.Email)
	assert.Equal(t, user.RoleMember, created.Role)
	assert.NotEqual(t, "hunter22", created.PasswordHash)

	_, err = userSvc.CreateUser(ctx, service.CreateUserInput{Name: "Again", Email: "carol@example.com", Password: "hunter22"})
	assert.True(t, service.HasCode(err, service.CodeValidation))

	token, logged, err := authSvc.Login(ctx, "CAROL@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, created.UUID, logged.UUID)

	_, _, err = authSvc.Login(ctx, "carol@example.com", "wrong")
	assert.True(t, service.HasCode(err, service.CodeUnauthorized))

	_, _, err = authSvc.Login(ctx, "nobody@example.com", "hunter22")
	assert.True(t, service.HasCode(err, service.CodeUnauthorized))

	profile, err := userSvc.GetProfile(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Carol", profile.Name)

	_, err = userSvc.GetProfile(ctx, uuid.New())
	assert.True(t, service.HasCode(err, service.CodeNotFound))
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	svc := service.NewUserService(inmemory.NewUserStorage(), inmemory.NewTaskStorage())

	tests := []struct {
		name            string
		input           service.CreateUserInput
		expectedMessage string
	}{
		{
			name:            "error - missing name",
			input:           service.CreateUserInput{Email: "a@example.com", Password: "secret1"},
			expectedMessage: "name is required",
		},
		{
			name:            "error - blank name",
			input:           service.CreateUserInput{Name: "   ", Email: "a@example.com", Password: "secret1"},
			expectedMessage: "name is required",
		},
		{
			name:            "error - bad email",
			input:           service.CreateUserInput{Name: "A", Email: "not-an-email", Password: "secret1"},
			expectedMessage: "email must be a valid email",
		},
		{
			name:            "error - short password",
			input:           service.CreateUserInput{Name: "A", Email: "a@example.com", Password: "123"},
			expectedMessage: "password must be at least 6 characters",
		},
		{
			name:            "error - unknown role",
			input:           service.CreateUserInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: "owner"},
			expectedMessage: "role must be one of: admin member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, service.HasCode(err, service.CodeValidation))
			assert.Equal(t, tt.expectedMessage, err.(*service.BusinessError).Message)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("secret", time.Hour, "task-manager")

	tests := []struct {
		name         string
		serverToken  string
		requestToken string
		expectedRole user.Role
	}{
		{name: "success - no invite token gives member", serverToken: "invite-me", expectedRole: user.RoleMember},
		{name: "success - matching invite token gives admin", serverToken: "invite-me", requestToken: "invite-me", expectedRole: user.RoleAdmin},
		{name: "success - wrong invite token gives member", serverToken: "invite-me", requestToken: "guess", expectedRole: user.RoleMember},
		{name: "success - invites disabled gives member", serverToken: "", requestToken: "", expectedRole: user.RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := inmemory.NewUserStorage()
			svc := service.NewAuthService(users, tokens, tt.serverToken)

			token, registered, err := svc.Register(ctx, service.RegisterInput{
				Name:             "Dana",
				Email:            "Dana@Example.com",
				Password:         "secret1",
				ProfileImageURL:  "https://img.example.com/dana.png",
				AdminInviteToken: tt.requestToken,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRole, registered.Role)
			assert.Equal(t, "dana@example.com", registered.Email)

			caller, err := tokens.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, registered.UUID, caller.ID)
			assert.Equal(t, tt.expectedRole, caller.Role)

			_, logged, err := svc.Login(ctx, "dana@example.com", "secret1")
			require.NoError(t, err)
			assert.Equal(t, registered.UUID, logged.UUID)
		})
	}
}

func TestAuthService_Register_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(inmemory.NewUserStorage(), auth.NewTokenManager("secret", time.Hour, "task-manager"), "")

	_, _, err := svc.Register(ctx, service.RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, service.RegisterInput{Name: "Eve", Email: "EVE@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "User already exists", err.(*service.BusinessError).Message)

	_, _, err = svc.Register(ctx, service.RegisterInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assert.True(t, service.HasCode(err, service.CodeValidation))
}

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/tokens"
)

var testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type fakeAuthService struct {
	// access token -> user id
	accessTokens map[string]string

	registerResult *services.RegisterResult
	registerErr    error
	loginErr       error
	refreshErr     error
	logoutErr      error

	loggedOut []string
}

func (s *fakeAuthService) Register(_ context.Context, _ services.RegisterParams) (*services.RegisterResult, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.registerResult, nil
}

func (s *fakeAuthService) Login(_ context.Context, params services.LoginParams) (*tokens.Pair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &tokens.Pair{Access: "access-" + params.Username, Refresh: "refresh-" + params.Username}, nil
}

func (s *fakeAuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return "access-from-" + refreshToken, nil
}

func (s *fakeAuthService) Logout(_ context.Context, refreshToken string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.loggedOut = append(s.loggedOut, refreshToken)
	return nil
}

func (s *fakeAuthService) ParseAccessToken(token string) (*tokens.Claims, error) {
	userID, ok := s.accessTokens[token]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return &tokens.Claims{
		TokenType:        tokens.TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}, nil
}

type fakeUserService struct {
	users map[string]*models.User
}

func (s *fakeUserService) CreateUser(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserService) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserService) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *fakeUserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (s *fakeUserService) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// fakeTaskService keeps tasks in memory. It applies fields without
// validating them, validation is covered by the services package.
type fakeTaskService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task
	clock  time.Time

	createErr  error
	updateErr  error
	lastFilter services.ListTasksFilter
	lastUpdate services.UpdateTaskParams
}

func newFakeTaskService() *fakeTaskService {
	return &fakeTaskService{
		tasks: make(map[int64]*models.Task),
		clock: testNow,
	}
}

func (s *fakeTaskService) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeTaskService) add(userID, title string) *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.tick()
	task := &models.Task{
		ID:        s.nextID,
		UserID:    userID,
		Title:     title,
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[task.ID] = task
	return task
}

func (s *fakeTaskService) CreateTask(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	task := s.add(params.UserID, "")
	s.mu.Lock()
	defer s.mu.Unlock()
	applyFields(task, params.TaskFields)
	return task, nil
}

func (s *fakeTaskService) ListTasks(_ context.Context, userID string, filter services.ListTasksFilter) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastFilter = filter
	var tasks []*models.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *fakeTaskService) GetTask(_ context.Context, userID string, taskID int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, services.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskService) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	_, err := s.GetTask(ctx, params.UserID, params.ID)
	if err != nil {
		return nil, err
	}
	if s.updateErr != nil {
		return nil, s.updateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUpdate = params
	task := s.tasks[params.ID]
	applyFields(task, params.TaskFields)
	task.UpdatedAt = s.tick()
	copied := *task
	return &copied, nil
}

func (s *fakeTaskService) DeleteTask(_ context.Context, userID string, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return services.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func applyFields(task *models.Task, fields services.TaskFields) {
	if fields.Title.Present() {
		task.Title = strings.TrimSpace(fields.Title.Value)
	}
	if fields.Description.Present() {
		task.Description = fields.Description.Value
	}
	if fields.Status.Present() {
		task.Status = fields.Status.Value
	}
	if fields.Priority.Present() {
		task.Priority = fields.Priority.Value
	}
	if fields.DueDate.Set {
		task.DueDate = nil
		if fields.DueDate.Present() && fields.DueDate.Value != "" {
			dueDate, err := models.ParseDate(fields.DueDate.Value)
			if err == nil {
				task.DueDate = &dueDate
			}
		}
	}
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

var (
	alice = &models.User{ID: "0192d3a0-0000-7000-8000-00000000000a", Username: "alice", Email: "alice@example.com"}
	bob   = &models.User{ID: "0192d3a0-0000-7000-8000-00000000000b", Username: "bob", Email: "bob@example.com"}
)

const (
	aliceToken = "alice-access"
	bobToken   = "bob-access"
)

type fixture struct {
	router *gin.Engine
	auth   *fakeAuthService
	users  *fakeUserService
	tasks  *fakeTaskService
	pinger *fakePinger
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)

	f := &fixture{
		auth: &fakeAuthService{
			accessTokens: map[string]string{
				aliceToken: alice.ID,
				bobToken:   bob.ID,
				"ghost":    "0192d3a0-0000-7000-8000-0000000000ff",
			},
		},
		users: &fakeUserService{
			users: map[string]*models.User{
				alice.ID: alice,
				bob.ID:   bob,
			},
		},
		tasks:  newFakeTaskService(),
		pinger: &fakePinger{},
	}

	handler := New(zerolog.Nop(), f.pinger, f.auth, f.users, f.tasks)
	f.router = gin.New()
	RegisterRoutes(f.router, handler)
	return f
}

// do sends body as is when it is a string and as JSON otherwise.
func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func decodeObject(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func decodeArray(t *testing.T, resp *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

var errDatabaseDown = errors.New("database is down")

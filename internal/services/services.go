package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/tokens"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenBlacklisted   = errors.New("token is blacklisted")
	ErrTaskNotFound       = errors.New("task not found")
)

// DB is the subset of *pgxpool.Pool the services depend on.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuthService interface {
	// Register validates the registration form, creates the user with
	// an argon2id password hash and issues a fresh token pair.
	//
	// It returns *ValidationError if any field is invalid, including
	// an already registered username or email.
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)

	// Login authenticates the user by username and password and issues
	// a token pair.
	//
	// It returns ErrInvalidCredentials if the user doesn't exist or
	// the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*tokens.Pair, error)

	// Refresh exchanges a refresh token for a new access token.
	//
	// It returns ErrInvalidToken if the token can't be verified and
	// ErrTokenBlacklisted if it was revoked.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Logout blacklists the given refresh token.
	//
	// It returns ErrInvalidToken if the token can't be verified and
	// ErrTokenBlacklisted if it was already revoked.
	Logout(ctx context.Context, refreshToken string) error

	// ParseAccessToken verifies an access token and returns its claims.
	ParseAccessToken(token string) (*tokens.Claims, error)
}

type UserService interface {
	// CreateUser inserts the user. It returns ErrUsernameTaken or
	// ErrEmailTaken on a unique constraint violation.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type TokenBlacklist interface {
	// Add revokes the token. It returns ErrTokenBlacklisted if the
	// token is already revoked.
	Add(ctx context.Context, token *models.BlacklistedToken) error
	Contains(ctx context.Context, jti string) (bool, error)

	// FlushExpired removes revoked tokens that have expired anyway.
	FlushExpired(ctx context.Context, now time.Time) (int64, error)
}

type TaskService interface {
	// CreateTask validates the fields and stores a task owned by
	// params.UserID. It returns *ValidationError on invalid input.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListTasks returns the user's tasks matching the filter.
	ListTasks(ctx context.Context, userID string, filter ListTasksFilter) ([]*models.Task, error)

	// GetTask returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)

	// UpdateTask looks the task up, validates the fields and applies
	// them. It returns ErrTaskNotFound before any validation error.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	DeleteTask(ctx context.Context, userID string, taskID int64) error
}

type RegisterParams struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

type RegisterResult struct {
	User   *models.User
	Tokens *tokens.Pair
}

type LoginParams struct {
	Username string
	Password string
}

// TaskFields are the client-writable task fields.
type TaskFields struct {
	Title       models.Optional[string]
	Description models.Optional[string]
	Status      models.Optional[string]
	Priority    models.Optional[string]
	DueDate     models.Optional[string]
}

type CreateTaskParams struct {
	UserID string
	TaskFields
}

type UpdateTaskParams struct {
	ID     int64
	UserID string
	// Partial leaves every field optional, otherwise the title is required.
	Partial bool
	TaskFields
}

type ListTasksFilter struct {
	Status   string
	Priority string
	Search   string
	Ordering string
}

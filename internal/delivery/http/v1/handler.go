package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleMe(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleListTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandlePartialUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	db     Pinger
	auth   services.AuthService
	users  services.UserService
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	db Pinger,
	authService services.AuthService,
	userService services.UserService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		db:     db,
		auth:   authService,
		users:  userService,
		tasks:  taskService,
	}
}

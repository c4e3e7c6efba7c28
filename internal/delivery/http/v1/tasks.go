package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

type taskResponse struct {
	ID          int64        `json:"id"`
	Owner       string       `json:"owner"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     *models.Date `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func newTaskResponse(task *models.Task, owner string) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Owner:       owner,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type taskListItemResponse struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Status    string       `json:"status"`
	Priority  string       `json:"priority"`
	DueDate   *models.Date `json:"due_date"`
	CreatedAt time.Time    `json:"created_at"`
}

func newTaskListItemResponse(task *models.Task) taskListItemResponse {
	return taskListItemResponse{
		ID:        task.ID,
		Title:     task.Title,
		Status:    task.Status,
		Priority:  task.Priority,
		DueDate:   task.DueDate,
		CreatedAt: task.CreatedAt,
	}
}

type taskMessageResponse struct {
	Message string       `json:"message"`
	Task    taskResponse `json:"task"`
}

// taskRequest is the writable part of a task. Unknown keys such as
// owner are ignored.
type taskRequest struct {
	Title       models.Optional[string] `json:"title"`
	Description models.Optional[string] `json:"description"`
	Status      models.Optional[string] `json:"status"`
	Priority    models.Optional[string] `json:"priority"`
	DueDate     models.Optional[string] `json:"due_date"`
}

func (r taskRequest) fields() services.TaskFields {
	return services.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	tasks, err := h.tasks.ListTasks(c, user.ID, services.ListTasksFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	response := make([]taskListItemResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskListItemResponse(task)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	var req taskRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		h.abortWithError(c, err)
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:     user.ID,
		TaskFields: req.fields(),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskMessageResponse{
		Message: "Task created successfully.",
		Task:    newTaskResponse(task, user.Username),
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		abort(c, newNotFoundError())
		return
	}

	task, err := h.tasks.GetTask(c, user.ID, taskID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task, user.Username))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	h.updateTask(c, false)
}

func (h *handlerImpl) HandlePartialUpdateTask(c *gin.Context) {
	h.updateTask(c, true)
}

func (h *handlerImpl) updateTask(c *gin.Context, partial bool) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		abort(c, newNotFoundError())
		return
	}

	var req taskRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		// Another user's task must not be told apart from a missing one,
		// whatever the body looks like.
		_, lookupErr := h.tasks.GetTask(c, user.ID, taskID)
		if lookupErr != nil {
			h.abortWithError(c, lookupErr)
			return
		}
		h.abortWithError(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:         taskID,
		UserID:     user.ID,
		Partial:    partial,
		TaskFields: req.fields(),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskMessageResponse{
		Message: "Task updated successfully.",
		Task:    newTaskResponse(task, user.Username),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		abort(c, newNotFoundError())
		return
	}

	err := h.tasks.DeleteTask(c, user.ID, taskID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully."})
}

// parseTaskID reports false for ids no task can have.
func parseTaskID(c *gin.Context) (int64, bool) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		return 0, false
	}
	return taskID, true
}

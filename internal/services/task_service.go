package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	db       DB
	location *time.Location
	now      func() time.Time
}

// NewTaskService returns a TaskService whose "today" for due date
// checks is taken in location.
func NewTaskService(
	logger zerolog.Logger,
	db DB,
	location *time.Location,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		db:       db,
		location: location,
		now:      time.Now,
	}
}

// timestamp returns the current time truncated to the microsecond
// precision of timestamptz.
func (s *taskServiceImpl) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := s.timestamp()
	changes, err := validateTaskFields(params.TaskFields, true, today(now, s.location))
	if err != nil {
		s.logger.Debug().
			Str("error", err.Error()).
			Msg("invalid task")
		return nil, err
	}

	task := &models.Task{
		UserID:      params.UserID,
		Title:       *changes.title,
		Description: "",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		DueDate:     changes.dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if changes.description != nil {
		task.Description = *changes.description
	}
	if changes.status != nil {
		task.Status = *changes.status
	}
	if changes.priority != nil {
		task.Priority = *changes.priority
	}

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   title,
                   description,
                   status,
                   priority,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`
	err = s.db.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		dueDateArg(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string, filter ListTasksFilter) ([]*models.Task, error) {
	query, args, err := buildListTasksQuery(userID, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to build select tasks query")
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		var dueDate *time.Time
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Status,
			&task.Priority,
			&dueDate,
			&task.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		task.DueDate = dateFromTime(dueDate)
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	const selectTaskQuery = `
SELECT id,
       title,
       description,
       status,
       priority,
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE id = $1 AND user_id = $2
`
	task, err := s.scanTask(s.db.QueryRow(ctx, selectTaskQuery, taskID, userID), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Int64("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("selected task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	_, err := s.GetTask(ctx, params.UserID, params.ID)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	changes, err := validateTaskFields(params.TaskFields, !params.Partial, today(now, s.location))
	if err != nil {
		s.logger.Debug().
			Str("error", err.Error()).
			Msg("invalid task")
		return nil, err
	}

	query, args, err := buildUpdateTaskQuery(params.UserID, params.ID, changes, now)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to build update task query")
		return nil, err
	}

	task, err := s.scanTask(s.db.QueryRow(ctx, query, args...), params.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task deleted during update")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Bool("partial", params.Partial).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.db.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug().
			Int64("task_id", taskID).
			Str("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) scanTask(row pgx.Row, userID string) (*models.Task, error) {
	task := &models.Task{UserID: userID}
	var dueDate *time.Time
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DueDate = dateFromTime(dueDate)
	return task, nil
}

func dateFromTime(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}

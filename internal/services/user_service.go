package services

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

type userServiceImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewUserService(
	logger zerolog.Logger,
	db DB,
) UserService {
	return &userServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *userServiceImpl) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.db.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Username,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Error().
				Str("constraint", pgErr.ConstraintName).
				Msg("user already exists")
			switch pgErr.ConstraintName {
			case usersUsernameKey:
				return ErrUsernameTaken
			case usersEmailKey:
				return ErrEmailTaken
			}
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("created user")
	return nil
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const selectUserByIDQuery = `
SELECT id,
       username,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	return s.selectUser(ctx, selectUserByIDQuery, userID)
}

func (s *userServiceImpl) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const selectUserByUsernameQuery = `
SELECT id,
       username,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE username = $1
`
	return s.selectUser(ctx, selectUserByUsernameQuery, username)
}

func (s *userServiceImpl) UsernameExists(ctx context.Context, username string) (bool, error) {
	const usernameExistsQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
`
	return s.exists(ctx, usernameExistsQuery, username)
}

func (s *userServiceImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	const emailExistsQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
`
	return s.exists(ctx, emailExistsQuery, email)
}

func (s *userServiceImpl) selectUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := new(models.User)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("key", arg).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("selected user")
	return user, nil
}

func (s *userServiceImpl) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, query, arg).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to check user existence")
		return false, err
	}
	return exists, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/tokens"
)

type authServiceImpl struct {
	logger    zerolog.Logger
	users     UserService
	blacklist TokenBlacklist
	tokens    *tokens.Manager
	now       func() time.Time
}

func NewAuthService(
	logger zerolog.Logger,
	userService UserService,
	blacklist TokenBlacklist,
	tokenManager *tokens.Manager,
) AuthService {
	return &authServiceImpl{
		logger:    logger,
		users:     userService,
		blacklist: blacklist,
		tokens:    tokenManager,
		now:       time.Now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	params = params.normalized()
	verr := validateRegistration(params)

	if !verr.Has("username") {
		exists, err := s.users.UsernameExists(ctx, params.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			verr.Add("username", MsgUsernameTaken)
		}
	}

	if !verr.Has("email") {
		exists, err := s.users.EmailExists(ctx, params.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			verr.Add("email", MsgEmailTaken)
		}
	}

	if !verr.Empty() {
		s.logger.Debug().
			Str("error", verr.Error()).
			Msg("invalid registration")
		return nil, verr
	}

	now := s.now()
	user := &models.User{
		Username:  params.Username,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			verr.Add("username", MsgUsernameTaken)
			return nil, verr
		case errors.Is(err, ErrEmailTaken):
			verr.Add("email", MsgEmailTaken)
			return nil, verr
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token pair")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return &RegisterResult{
		User:   user,
		Tokens: pair,
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*tokens.Pair, error) {
	user, err := s.users.GetUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token pair")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return pair, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to parse refresh token")
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	blacklisted, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if blacklisted {
		s.logger.Warn().
			Str("jti", claims.ID).
			Msg("refresh token is blacklisted")
		return "", ErrTokenBlacklisted
	}

	accessToken, err := s.tokens.IssueAccess(claims.UserID())
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue access token")
		return "", err
	}

	s.logger.Info().
		Str("user_id", claims.UserID()).
		Msg("refreshed access token")
	return accessToken, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to parse refresh token")
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	err = s.blacklist.Add(ctx, &models.BlacklistedToken{
		JTI:           claims.ID,
		UserID:        claims.UserID(),
		ExpiresAt:     claims.ExpiresAt.Time,
		BlacklistedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return err
	}

	s.logger.Info().
		Str("user_id", claims.UserID()).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) ParseAccessToken(token string) (*tokens.Claims, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

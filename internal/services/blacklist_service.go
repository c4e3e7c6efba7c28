package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

type tokenBlacklistImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewTokenBlacklist(
	logger zerolog.Logger,
	db DB,
) TokenBlacklist {
	return &tokenBlacklistImpl{
		logger: logger,
		db:     db,
	}
}

func (s *tokenBlacklistImpl) Add(ctx context.Context, token *models.BlacklistedToken) error {
	const insertBlacklistedTokenQuery = `
INSERT INTO token_blacklist (jti,
                             user_id,
                             expires_at,
                             blacklisted_at)
VALUES ($1, $2, $3, $4)
`
	_, err := s.db.Exec(
		ctx,
		insertBlacklistedTokenQuery,
		token.JTI,
		token.UserID,
		token.ExpiresAt,
		token.BlacklistedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				s.logger.Warn().
					Str("jti", token.JTI).
					Msg("token already blacklisted")
				return ErrTokenBlacklisted
			case pgerrcode.ForeignKeyViolation:
				s.logger.Warn().
					Str("user_id", token.UserID).
					Msg("token owner not found")
				return ErrUserNotFound
			}
		}

		s.logger.Error().
			Err(err).
			Str("jti", token.JTI).
			Msg("failed to blacklist token")
		return err
	}

	s.logger.Info().
		Str("jti", token.JTI).
		Str("user_id", token.UserID).
		Msg("blacklisted token")
	return nil
}

func (s *tokenBlacklistImpl) Contains(ctx context.Context, jti string) (bool, error) {
	const blacklistedTokenExistsQuery = `
SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)
`
	var exists bool
	err := s.db.QueryRow(ctx, blacklistedTokenExistsQuery, jti).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("jti", jti).
			Msg("failed to check blacklisted token")
		return false, err
	}
	return exists, nil
}

func (s *tokenBlacklistImpl) FlushExpired(ctx context.Context, now time.Time) (int64, error) {
	const deleteExpiredTokensQuery = `
DELETE FROM token_blacklist
WHERE expires_at < $1
`
	tag, err := s.db.Exec(ctx, deleteExpiredTokensQuery, now)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to flush expired tokens")
		return 0, err
	}

	s.logger.Info().
		Int64("affected", tag.RowsAffected()).
		Msg("flushed expired tokens")
	return tag.RowsAffected(), nil
}

package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

const (
	userCtxKey      = "user"
	requestIDCtxKey = "request_id"

	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if parts[0] != bearerPrefix {
		h.logger.Debug().Msg("unsupported authorization scheme")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		h.logger.Warn().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(msgInvalidAccessToken))
		return
	}

	claims, err := h.auth.ParseAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to parse access token")
		abort(c, newUnauthorizedError(msgInvalidAccessToken))
		return
	}

	user, err := h.users.GetUserByID(c, claims.UserID())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.logger.Warn().
				Str("user_id", claims.UserID()).
				Msg("token subject not found")
			abort(c, newUnauthorizedError(msgUserNotFound))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to fetch user")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// RequestLogger propagates or assigns an X-Request-ID and logs every
// request once it has been served.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if len(requestID) > maxRequestIDLength {
			requestID = requestID[:maxRequestIDLength]
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDCtxKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(startedAt)).
			Str("client_ip", c.ClientIP()).
			Msg("served request")
	}
}

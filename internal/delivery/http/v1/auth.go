package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/tokens"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func newTokenPairResponse(pair *tokens.Pair) tokenPairResponse {
	return tokenPairResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type registerResponse struct {
	Message string            `json:"message"`
	User    userResponse      `json:"user"`
	Tokens  tokenPairResponse `json:"tokens"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		h.abortWithError(c, err)
		return
	}

	result, err := h.auth.Register(c, services.RegisterParams{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.logger.Info().
		Str("user_id", result.User.ID).
		Msg("registered")
	c.JSON(http.StatusCreated, registerResponse{
		Message: "Registration successful.",
		User:    newUserResponse(result.User),
		Tokens:  newTokenPairResponse(result.Tokens),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		h.abortWithError(c, err)
		return
	}

	pair, err := h.auth.Login(c, services.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			abort(c, newUnauthorizedError(msgNoActiveAccount))
			return
		}
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokenPairResponse(pair))
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	var req refreshRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		h.abortWithError(c, err)
		return
	}

	access, err := h.auth.Refresh(c, req.Refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrTokenBlacklisted) {
			abort(c, newUnauthorizedError(msgRefreshTokenInvalid))
			return
		}
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	var req logoutRequest
	err := bindJSON(c, &req)
	if err != nil || req.Refresh == "" {
		abort(c, newBadRequestError(msgRefreshTokenRequired))
		return
	}

	err = h.auth.Logout(c, req.Refresh)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidToken) && !errors.Is(err, services.ErrTokenBlacklisted) {
			h.logger.Error().
				Err(err).
				Msg("failed to blacklist refresh token")
		}
		abort(c, newBadRequestError(msgLogoutTokenInvalid))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func (h *handlerImpl) HandleMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgCredentialsNotProvided))
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

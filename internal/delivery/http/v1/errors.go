package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

const (
	msgNotFound               = "Not found."
	msgNotAString             = "Not a valid string."
	msgCredentialsNotProvided = "Authentication credentials were not provided."
	msgInvalidAccessToken     = "Given token not valid for any token type"
	msgUserNotFound           = "User not found"
	msgNoActiveAccount        = "No active account found with the given credentials"
	msgRefreshTokenInvalid    = "Token is invalid or expired"
	msgRefreshTokenRequired   = "Refresh token is required."
	msgLogoutTokenInvalid     = "Invalid or expired token."
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func abortValidation(c *gin.Context, err *services.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, err.Fields)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError() apiError {
	return newAPIError(http.StatusNotFound, msgNotFound)
}

// abortWithError writes the response for errors every handler shares.
func (h *handlerImpl) abortWithError(c *gin.Context, err error) {
	var (
		verr   *services.ValidationError
		apiErr apiError
	)
	switch {
	case errors.As(err, &verr):
		abortValidation(c, verr)
	case errors.As(err, &apiErr):
		abort(c, apiErr)
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError())
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("unexpected error")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

// bindJSON decodes the request body into obj and runs its binding rules.
// An empty body counts as an empty object. Failures come back as
// *services.ValidationError when they can be tied to a field and as an
// apiError otherwise.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}

	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		verr := services.NewValidationError()
		for _, fieldErr := range fieldErrs {
			verr.Add(jsonFieldName(obj, fieldErr.StructField()), bindingMessage(fieldErr))
		}
		return verr
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr := services.NewValidationError()
		verr.Add(typeErr.Field, msgNotAString)
		return verr
	default:
		return newBadRequestError(errInvalidRequestBody.Error())
	}
}

func bindingMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return services.MsgRequired
	default:
		return "Invalid value."
	}
}

// jsonFieldName returns the json key of the struct field of obj.
func jsonFieldName(obj any, structField string) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return structField
	}

	field, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return structField
	}
	return name
}

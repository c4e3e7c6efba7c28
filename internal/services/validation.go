package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

const (
	MsgRequired         = "This field is required."
	MsgNull             = "This field may not be null."
	MsgBlank            = "This field may not be blank."
	MsgTitleTooShort    = "Title must be at least 3 characters long."
	MsgDueDateInPast    = "Due date cannot be in the past."
	MsgDueDateFormat    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgInvalidEmail     = "Enter a valid email address."
	MsgInvalidUsername  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgEmailTaken       = "A user with this email already exists."
	MsgUsernameTaken    = "A user with that username already exists."
	MsgPasswordMismatch = "Passwords do not match."
)

const (
	titleMinLength    = 3
	titleMaxLength    = 255
	usernameMaxLength = 150
	emailMaxLength    = 254
	passwordMinLength = 8
)

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// ValidationError collects messages per request field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func maxLengthMessage(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func minLengthMessage(n int) string {
	return fmt.Sprintf("Ensure this field has at least %d characters.", n)
}

func invalidChoiceMessage(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

// taskChanges holds validated, normalized task fields. A nil pointer
// means the field is left untouched.
type taskChanges struct {
	title       *string
	description *string
	status      *string
	priority    *string
	setDueDate  bool
	dueDate     *models.Date
}

func validateTaskFields(fields TaskFields, requireTitle bool, today models.Date) (*taskChanges, error) {
	verr := NewValidationError()
	changes := new(taskChanges)

	switch {
	case !fields.Title.Set:
		if requireTitle {
			verr.Add("title", MsgRequired)
		}
	case fields.Title.Null:
		verr.Add("title", MsgNull)
	default:
		title := strings.TrimSpace(fields.Title.Value)
		length := utf8.RuneCountInString(title)
		switch {
		case length == 0:
			verr.Add("title", MsgBlank)
		case length > titleMaxLength:
			verr.Add("title", maxLengthMessage(titleMaxLength))
		case length < titleMinLength:
			verr.Add("title", MsgTitleTooShort)
		default:
			changes.title = &title
		}
	}

	if fields.Description.Set {
		if fields.Description.Null {
			verr.Add("description", MsgNull)
		} else {
			description := strings.TrimSpace(fields.Description.Value)
			changes.description = &description
		}
	}

	changes.status = validateChoice(verr, "status", fields.Status, models.IsValidStatus)
	changes.priority = validateChoice(verr, "priority", fields.Priority, models.IsValidPriority)

	if fields.DueDate.Set {
		changes.setDueDate = true
		if fields.DueDate.Present() {
			dueDate, err := models.ParseDate(strings.TrimSpace(fields.DueDate.Value))
			switch {
			case err != nil:
				verr.Add("due_date", MsgDueDateFormat)
			case dueDate.Before(today):
				verr.Add("due_date", MsgDueDateInPast)
			default:
				changes.dueDate = &dueDate
			}
		}
	}

	err := verr.orNil()
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func validateChoice(verr *ValidationError, field string, value models.Optional[string], valid func(string) bool) *string {
	if !value.Set {
		return nil
	}
	if value.Null {
		verr.Add(field, MsgNull)
		return nil
	}
	if !valid(value.Value) {
		verr.Add(field, invalidChoiceMessage(value.Value))
		return nil
	}
	choice := value.Value
	return &choice
}

// validateRegistration checks the format rules of the registration form.
// Uniqueness is checked separately against the user store.
func validateRegistration(params RegisterParams) *ValidationError {
	verr := NewValidationError()
	params = params.normalized()

	switch {
	case params.Username == "":
		verr.Add("username", MsgRequired)
	case utf8.RuneCountInString(params.Username) > usernameMaxLength:
		verr.Add("username", maxLengthMessage(usernameMaxLength))
	case !usernamePattern.MatchString(params.Username):
		verr.Add("username", MsgInvalidUsername)
	}

	switch {
	case params.Email == "":
		verr.Add("email", MsgRequired)
	case len(params.Email) > emailMaxLength:
		verr.Add("email", maxLengthMessage(emailMaxLength))
	case validate.Var(params.Email, "email") != nil:
		verr.Add("email", MsgInvalidEmail)
	}

	switch {
	case params.Password == "":
		verr.Add("password", MsgRequired)
	case utf8.RuneCountInString(params.Password) < passwordMinLength:
		verr.Add("password", minLengthMessage(passwordMinLength))
	}

	if params.PasswordConfirm == "" {
		verr.Add("password_confirm", MsgRequired)
	}

	if !verr.Has("password") && !verr.Has("password_confirm") &&
		params.Password != params.PasswordConfirm {
		verr.Add("password", MsgPasswordMismatch)
	}
	return verr
}

// today returns the current calendar date in loc.
func today(now time.Time, loc *time.Location) models.Date {
	return models.DateOf(now.In(loc))
}

// normalized trims the surrounding whitespace of username and email.
// Passwords are kept as sent.
func (p RegisterParams) normalized() RegisterParams {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var authErr *auth.AuthError
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Checked first: a dropped store can surface under any operation
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable

	// Authentication errors
	case errors.As(err, &authErr),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnknownSubject),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors; a task owned by someone else is reported the same way
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	// Bad request errors, duplicate registration included
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return shared.MsgInternalError
	}

	var authErr *auth.AuthError
	var validationErrs validator.ValidationErrors
	var domainErr *domain.ValidationError

	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		return shared.MsgStoreUnavailable

	case errors.As(err, &authErr) && authErr.Reason == auth.ReasonMissingToken,
		errors.Is(err, auth.ErrMissingToken):
		return shared.MsgNoToken
	case errors.Is(err, auth.ErrInvalidCredentials):
		return shared.MsgInvalidCredentials
	case errors.As(err, &authErr),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnknownSubject):
		return shared.MsgTokenNotValid

	case errors.Is(err, store.ErrTaskNotFound):
		return shared.MsgTaskNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return shared.MsgUserNotFound
	case errors.Is(err, store.ErrNotFound), errors.Is(err, domain.ErrInvalidID):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists), errors.Is(err, store.ErrDuplicate):
		return shared.MsgUserExists
	case errors.Is(err, domain.ErrTitleRequired):
		return shared.MsgTitleRequired
	case errors.As(err, &domainErr):
		return capitalize(domainErr.Error())
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, shared.ErrInvalidBody):
		return shared.MsgInvalidBody
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return shared.MsgInternalError
	}
}

// SanitizeValidationError turns struct validation failures into a message
// that names the field but not the Go type behind it. A missing required
// field yields the generic "provide all required fields" message.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	for _, fe := range errs {
		if fe.Tag() == "required" {
			return shared.MsgMissingFields
		}
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleAPIError writes the response for err: the mapped status code and
// safe message. fallbackMessage replaces the generic message of a 500.
// The redacted error is always logged; it reaches the client only for a
// 500 on a request with error details enabled.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

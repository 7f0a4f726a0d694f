package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MapErrorToStatusCode maps an error kind to an HTTP status. Anything
// without a known kind is a 500.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a client-facing message for err. Domain
// messages are written by this service and are safe to return; everything
// else gets a generic text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		validationErr  *domain.ValidationError
		permissionErr  *domain.PermissionError
		notFoundErr    *domain.NotFoundError
		conflictErr    *domain.ConflictError
		validationErrs validator.ValidationErrors
	)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Incorrect email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.As(err, &permissionErr):
		return "Permission denied: " + permissionErr.Reason
	case errors.As(err, &notFoundErr):
		return capitalize(notFoundErr.Entity) + " not found"
	case errors.As(err, &conflictErr):
		if conflictErr.Field == "email" {
			return "Email already registered"
		}
		return capitalize(conflictErr.Message)
	case errors.As(err, &validationErr):
		if validationErr.Field == "" {
			return "Invalid " + validationErr.Message
		}
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError reports the first failing field of a struct
// validation without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}
	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
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
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for a failed service call. An empty
// fallback keeps the mapped safe message for 5xx errors too.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

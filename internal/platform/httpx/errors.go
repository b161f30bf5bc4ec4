// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// ErrForbidden is returned when an owner touches another owner's record.
var ErrForbidden = errors.New("forbidden")

// ErrBadRequest marks malformed input such as undecodable bodies.
var ErrBadRequest = errors.New("bad request")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		ValidationProblem(w, verr.Fields)
	case errors.As(err, &fieldErrs):
		ValidationProblem(w, FieldMessages(fieldErrs))
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate), errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrNoChanges):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// FieldMessages flattens validator errors into json-field keyed messages.
func FieldMessages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "is required"
		case "email":
			out[field] = "must be a valid email"
		case "oneof":
			out[field] = "must be one of " + fe.Param()
		case "min":
			out[field] = "must be at least " + fe.Param()
		case "max":
			out[field] = "must be at most " + fe.Param()
		case "len":
			out[field] = "must have length " + fe.Param()
		case "eqfield":
			out[field] = "does not match"
		case "url":
			out[field] = "must be a valid URL"
		case "datetime":
			out[field] = "must be a date like " + fe.Param()
		default:
			out[field] = "is invalid"
		}
	}
	return out
}

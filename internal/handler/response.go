package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/service"
)

// APIError represents an error in the API response.
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError maps an error to an HTTP status and writes the error envelope.
func WriteError(w http.ResponseWriter, err error) {
	status, apiErr := mapError(err)
	WriteJSON(w, status, errorResponse{Error: &apiErr})
}

func mapError(err error) (int, APIError) {
	var policyErr *service.PasswordPolicyError
	if errors.As(err, &policyErr) {
		return http.StatusBadRequest, APIError{
			Code:    "weak_password",
			Message: "Password does not meet the policy",
			Details: policyErr.Violations,
		}
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, APIError{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: []string{validationErr.Error()},
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "The requested resource was not found",
		}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, APIError{
			Code:    "unauthorized",
			Message: "Invalid credentials",
		}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, APIError{
			Code:    "conflict",
			Message: "The resource already exists or conflicts with current state",
		}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, APIError{
			Code:    "invalid_token",
			Message: "Invalid or expired reset token",
		}
	case errors.Is(err, domain.ErrProfileIncomplete):
		return http.StatusBadRequest, APIError{
			Code:    "profile_incomplete",
			Message: "The provider did not supply the required profile data",
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, APIError{
			Code:    "invalid_input",
			Message: "The request is invalid",
		}
	default:
		slog.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "An unexpected error occurred",
		}
	}
}

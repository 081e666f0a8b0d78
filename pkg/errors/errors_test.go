package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("empty id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("slot already booked"), CodeConflict, http.StatusConflict},
		{"forbidden", Forbidden("not the owner"), CodeForbidden, http.StatusForbidden},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("storage"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("write failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestNotFoundWithIDDetails(t *testing.T) {
	err := NotFoundWithID("Creator", "abc123")
	if err.Details["id"] != "abc123" {
		t.Errorf("Details[id] = %v, want abc123", err.Details["id"])
	}
	if err.Details["resource"] != "Creator" {
		t.Errorf("Details[resource] = %v, want Creator", err.Details["resource"])
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("oops")
	if appErr, ok := AsAppError(plain); ok || appErr != nil {
		t.Errorf("AsAppError(plain) = %v, %v, want nil, false", appErr, ok)
	}

	conflict := Conflict("taken")
	if got, ok := AsAppError(conflict); !ok || got != conflict {
		t.Error("expected AsAppError to return the AppError unchanged")
	}

	wrapped := fmt.Errorf("checkout: %w", conflict)
	if got, ok := AsAppError(wrapped); !ok || got != conflict {
		t.Error("expected AsAppError to unwrap to the AppError")
	}
}

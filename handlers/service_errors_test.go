package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage string
	}{
		{
			name:           "not found error",
			err:            services.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "validation error",
			err:            services.ErrInvalidRole.WithDetail("role", "JANITOR"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:            "invalid credentials",
			err:             services.ErrInvalidCredentials,
			expectedStatus:  http.StatusUnauthorized,
			expectedError:   "unauthorized",
			expectedMessage: "invalid email or password",
		},
		{
			name:           "disabled account",
			err:            services.ErrAccountDisabled,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "duplicate email",
			err:            services.ErrDuplicateEmail.WithDetail("email", "alex@student.edu"),
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:           "storage unavailable",
			err:            services.ErrStorageUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "service_unavailable",
		},
		{
			name:            "internal error hides cause",
			err:             services.WrapInternal("failed to hash", errors.New("bcrypt: cost out of range")),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An internal error occurred",
		},
		{
			name:            "unknown error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp utils.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp.Error)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, resp.Message)
			}
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, nil, logger)
		assert.Empty(t, w.Body.String())
	})

	t.Run("details are forwarded", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, services.ErrDuplicateEmail.WithDetail("email", "alex@student.edu"), logger)

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alex@student.edu", resp.Details["email"])
	})
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("structured validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"email": "email is required"},
		}, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Validation failed", resp.Message)
		assert.Equal(t, "email is required", resp.Details["email"])
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("request body is required"), logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "request body is required", resp.Message)
		assert.Nil(t, resp.Details)
	})
}

package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeBadSignature, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeRunInProgress, http.StatusConflict},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInternalRetryable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse_JSON(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrCodeValidation, "month is not a valid reporting period", "req-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "VALIDATION_ERROR", "message": "month is not a valid reporting period", "request_id": "req-1"}
	}`, string(raw))
}

func TestNewSuccessResponse_OmitsError(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse(map[string]int{"created": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "data": {"created": 2}}`, string(raw))
}

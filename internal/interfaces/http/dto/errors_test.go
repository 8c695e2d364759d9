package dto

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeTenantNotFound, http.StatusNotFound},
		{shared.CodeTenantDisabled, http.StatusNotFound},
		{shared.CodeUnauthenticated, http.StatusUnauthorized},
		{shared.CodeInvalidCredentials, http.StatusUnauthorized},
		{shared.CodePropertyNotFound, http.StatusNotFound},
		{shared.CodeDomainNotConfigured, http.StatusConflict},
		{shared.CodeDomainVerificationFailed, http.StatusUnprocessableEntity},
		{shared.CodeRateLimited, http.StatusTooManyRequests},
		{shared.CodeQuotaExceeded, http.StatusForbidden},
		{shared.CodeUpstreamTimeout, http.StatusInternalServerError},
		{shared.CodeDataStoreFailure, http.StatusInternalServerError},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_SLUG", http.StatusBadRequest},
		{"ALREADY_INACTIVE", http.StatusConflict},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorInfoFor(t *testing.T) {
	t.Run("client error keeps message and details", func(t *testing.T) {
		err := shared.ErrDomainVerificationFailed.WithDetails(map[string]any{"expected": "tok"})
		status, info := ErrorInfoFor(err, "req-1")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, shared.CodeDomainVerificationFailed, info.Code)
		assert.Equal(t, "tok", info.Details["expected"])
		assert.Equal(t, "req-1", info.RequestID)
	})

	t.Run("store failure is opaque", func(t *testing.T) {
		err := shared.NewDataStoreFailure("find property", errors.New("pq: connection refused"))
		status, info := ErrorInfoFor(err, "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, shared.CodeDataStoreFailure, info.Code)
		assert.NotContains(t, info.Message, "pq")
		assert.Nil(t, info.Details)
	})

	t.Run("plain error", func(t *testing.T) {
		status, info := ErrorInfoFor(errors.New("boom"), "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, ErrCodeInternal, info.Code)
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 20)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type req struct {
		Slug  string `json:"slug" validate:"required,slug"`
		Label string `json:"subdomain" validate:"omitempty,dnslabel"`
	}

	assert.NoError(t, v.Struct(req{Slug: "acme-hotel", Label: "acme"}))

	err := v.Struct(req{Slug: "Acme_Hotel", Label: "-bad"})
	require.Error(t, err)
	details := ValidationDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "slug", details[0].Field)
	assert.Equal(t, "subdomain", details[1].Field)
	assert.Equal(t, "Must be a valid DNS label", details[1].Message)

	assert.Equal(t, "body", ValidationDetails(errors.New("EOF"))[0].Field)
}

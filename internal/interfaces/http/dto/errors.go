package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

// Codes produced only at the HTTP boundary
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeConflict        = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeTenantNotFound:           http.StatusNotFound,
	shared.CodeTenantDisabled:           http.StatusNotFound,
	shared.CodeUnauthenticated:          http.StatusUnauthorized,
	shared.CodeInvalidCredentials:       http.StatusUnauthorized,
	shared.CodePropertyNotFound:         http.StatusNotFound,
	shared.CodeDomainNotConfigured:      http.StatusConflict,
	shared.CodeDomainVerificationFailed: http.StatusUnprocessableEntity,
	shared.CodeRateLimited:              http.StatusTooManyRequests,
	shared.CodeQuotaExceeded:            http.StatusForbidden,
	shared.CodeUpstreamTimeout:          http.StatusInternalServerError,
	shared.CodeDataStoreFailure:         http.StatusInternalServerError,

	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInvalidInput:        http.StatusBadRequest,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeConflict:        http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code. Field-level
// domain codes (INVALID_SLUG, INVALID_DOMAIN, ...) are client errors and
// ALREADY_* lifecycle codes are conflicts; anything else unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorInfoFor renders err for a response. 500-class errors are opaque:
// their message and details never reach the client.
func ErrorInfoFor(err error, requestID string) (int, *ErrorInfo) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:      ErrCodeInternal,
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		}
	}

	status := GetHTTPStatus(domainErr.Code)
	if status >= http.StatusInternalServerError {
		return status, &ErrorInfo{
			Code:      domainErr.Code,
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		}
	}
	return status, &ErrorInfo{
		Code:      domainErr.Code,
		Message:   domainErr.Message,
		Details:   domainErr.Details,
		RequestID: requestID,
	}
}

package shared

import "fmt"

// Error codes shared by the domain and the HTTP boundary.
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeAlreadyExists            = "ALREADY_EXISTS"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeConcurrencyConflict      = "CONCURRENCY_CONFLICT"
	CodeForbidden                = "FORBIDDEN"
	CodeInvalidState             = "INVALID_STATE"
	CodeInvalidCredentials       = "INVALID_CREDENTIALS"
	CodeTenantNotFound           = "TENANT_NOT_FOUND"
	CodeTenantDisabled           = "TENANT_DISABLED"
	CodeUnauthenticated          = "UNAUTHENTICATED"
	CodePropertyNotFound         = "PROPERTY_NOT_FOUND"
	CodeDomainNotConfigured      = "DOMAIN_NOT_CONFIGURED"
	CodeDomainVerificationFailed = "DOMAIN_VERIFICATION_FAILED"
	CodeRateLimited              = "RATE_LIMITED"
	CodeQuotaExceeded            = "QUOTA_EXCEEDED"
	CodeUpstreamTimeout          = "UPSTREAM_TIMEOUT"
	CodeDataStoreFailure         = "DATA_STORE_FAILURE"
)

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal, so
// sentinels below can be compared against enriched copies.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying the given details
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of the error with a different message
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of the error wrapping cause
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidCredentials  = NewDomainError(CodeInvalidCredentials, "Invalid email or password")
)

// Tenancy and gating errors
var (
	ErrTenantNotFound           = NewDomainError(CodeTenantNotFound, "Tenant not found")
	ErrTenantDisabled           = NewDomainError(CodeTenantDisabled, "Tenant not found")
	ErrUnauthenticated          = NewDomainError(CodeUnauthenticated, "Authentication required")
	ErrPropertyNotFound         = NewDomainError(CodePropertyNotFound, "Property not found")
	ErrDomainNotConfigured      = NewDomainError(CodeDomainNotConfigured, "No custom domain to verify")
	ErrDomainVerificationFailed = NewDomainError(CodeDomainVerificationFailed, "Domain verification failed")
	ErrRateLimited              = NewDomainError(CodeRateLimited, "Too many requests")
	ErrQuotaExceeded            = NewDomainError(CodeQuotaExceeded, "Plan quota exceeded")
	ErrUpstreamTimeout          = NewDomainError(CodeUpstreamTimeout, "Upstream service timed out")
	ErrDataStoreFailure         = NewDomainError(CodeDataStoreFailure, "Data store failure")
)

// NewDataStoreFailure wraps a storage error for operation op.
func NewDataStoreFailure(op string, cause error) *DomainError {
	return ErrDataStoreFailure.WithMessage(fmt.Sprintf("%s failed", op)).Wrap(cause)
}

// Package apperror provides structured error handling for the service center API.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal                   = "INTERNAL_ERROR"
	CodeDatabase                   = "DATABASE_ERROR"
	CodeIdentifierGenerationFailed = "IDENTIFIER_GENERATION_FAILED"
	CodeUpdateFailed               = "UPDATE_FAILED"

	// Validation errors (400)
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeIncorrectCodeFormat = "INCORRECT_CODE_FORMAT"

	// Business rule violations (400)
	CodeBusinessRule             = "BUSINESS_RULE_VIOLATION"
	CodeStockNotAvailable        = "STOCK_NOT_AVAILABLE"
	CodeComplaintClosed          = "COMPLAINT_CLOSED"
	CodeCannotChangeCustomerName = "CANNOT_CHANGE_CUSTOMER_NAME"
	CodeCannotDeleteCurrentUser  = "CANNOT_DELETE_CURRENT_USER"

	// Authorization errors (401, 403)
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"

	// Not found (404)
	CodeNotFound         = "NOT_FOUND"
	CodeSpareNotFound    = "SPARE_NOT_FOUND"
	CodeEmployeeNotFound = "EMPLOYEE_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"

	// Conflict (409)
	CodeConflict              = "CONFLICT"
	CodeDuplicate             = "DUPLICATE_ENTRY"
	CodeCustomerAlreadyExists = "CUSTOMER_ALREADY_EXISTS"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, resolution, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewNotFoundCode creates a not found error (404) carrying a domain-specific code.
func NewNotFoundCode(code, entity string, id any) *AppError {
	appErr := NewNotFound(entity, id)
	appErr.Code = code
	return appErr
}

// NewBusinessRule creates a business rule violation error (400)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewStockNotAvailable creates a stock shortage error
func NewStockNotAvailable(spareCode string, requested, available int) *AppError {
	return &AppError{
		Code:       CodeStockNotAvailable,
		Message:    "Stock Not Available",
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"spare_code": spareCode,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewCustomerAlreadyExists is returned when a customer name is taken (409).
func NewCustomerAlreadyExists(name string) *AppError {
	return &AppError{
		Code:       CodeCustomerAlreadyExists,
		Message:    "Customer Already Exists",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"name": name},
	}
}

// NewIncorrectCodeFormat is returned for business codes that cannot be normalised.
func NewIncorrectCodeFormat(code string) *AppError {
	return &AppError{
		Code:       CodeIncorrectCodeFormat,
		Message:    "Incorrect Code Format",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"code": code},
	}
}

// NewIdentifierGenerationFailed is returned when every identifier attempt collided.
func NewIdentifierGenerationFailed(family string, attempts int) *AppError {
	return &AppError{
		Code:       CodeIdentifierGenerationFailed,
		Message:    fmt.Sprintf("Unable to generate %s number", family),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"family": family, "attempts": attempts},
	}
}

// NewUpdateFailed creates an error for multi-row updates that were rolled back.
func NewUpdateFailed(err error) *AppError {
	return &AppError{
		Code:       CodeUpdateFailed,
		Message:    "Failed to update",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase creates an error carrying the raw database message as resolution (500).
func NewDatabase(message string, err error) *AppError {
	appErr := &AppError{
		Code:       CodeDatabase,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
	if err != nil {
		appErr.Details = map[string]any{"resolution": err.Error()}
	}
	return appErr
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInvalidCredentials creates a login failure error (401)
func NewInvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid Credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether the first AppError in the chain carries code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err renders as 404.
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus == http.StatusNotFound
	}
	return false
}

// IsDuplicate checks if error is CodeDuplicate
func IsDuplicate(err error) bool {
	return HasCode(err, CodeDuplicate)
}

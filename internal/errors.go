package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	// ErrorTypeConfig covers disabled integration and missing mandatory
	// mappings. Fatal to the record or the run, never retried.
	ErrorTypeConfig ErrorType = "CONFIG_ERROR"
	// ErrorTypeTransport covers non-2xx, non-JSON and network failures on the
	// remote API. Fatal to the current page fetch and therefore the run.
	ErrorTypeTransport ErrorType = "TRANSPORT_ERROR"
	// ErrorTypeRecord covers per-record mapping/posting failures. Caught by
	// the orchestrator, counted as skipped, never aborts the run.
	ErrorTypeRecord   ErrorType = "RECORD_ERROR"
	ErrorTypeConflict ErrorType = "CONFLICT"
	ErrorTypeInternal ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeIntegrationDisabled ErrorCode = "INTEGRATION_DISABLED"
	ErrCodeSettingsNotFound    ErrorCode = "SETTINGS_NOT_FOUND"

	ErrCodeHTTPError    ErrorCode = "HTTP_ERROR"
	ErrCodeInvalidJSON  ErrorCode = "INVALID_JSON"
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"

	ErrCodeCardNotMapped   ErrorCode = "CARD_NOT_MAPPED"
	ErrCodeBranchMandatory ErrorCode = "BRANCH_MANDATORY"
	ErrCodePostingFailed   ErrorCode = "POSTING_FAILED"

	ErrCodeSyncAlreadyRunning ErrorCode = "SYNC_ALREADY_RUNNING"
	ErrCodeInvalidFromDate    ErrorCode = "INVALID_FROM_DATE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewConfigError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConfig,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewTransportError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

func NewRecordError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeRecord,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeRecord,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

var (
	ErrIntegrationDisabled = NewConfigError("Moola integration is disabled in Moola Settings", ErrCodeIntegrationDisabled)
	ErrSettingsNotFound    = NewConfigError("Moola Settings record does not exist", ErrCodeSettingsNotFound)
	ErrSyncAlreadyRunning  = NewConflictError("a sync run is already in progress", ErrCodeSyncAlreadyRunning)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

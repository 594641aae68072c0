// Package errors defines custom error types and error handling utilities for the gridrisk scoring service.
// This package provides structured error types that map to API error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/gridrisk/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// RiskError represents a structured error with additional metadata
type RiskError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) RiskError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) RiskError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of RiskError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) RiskError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) RiskError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// Is reports whether target carries the same error code, so sentinel
// comparisons with errors.Is work across freshly constructed errors.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return t.code == e.code
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new RiskError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) RiskError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) RiskError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed.",
		message,
	)
}

// ErrServerError creates a server_error error
func ErrServerError(message string) RiskError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ErrTemporarilyUnavailable creates a temporarily_unavailable error
func ErrTemporarilyUnavailable(message string) RiskError {
	return NewError(
		constants.ErrCodeTemporarilyUnavailable,
		http.StatusServiceUnavailable,
		"A backing store is currently unreachable.",
		message,
	)
}

// ErrRateLimitExceeded creates a rate limit error
func ErrRateLimitExceeded(scope string, limit int) RiskError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"Rate limit exceeded",
		fmt.Sprintf("rate limit exceeded for %s (limit %d/s)", scope, limit),
	).WithMetadata("scope", scope).WithMetadata("limit", limit)
}

// ================================================================================
// Domain-Specific Error Constructors
// ================================================================================

// ErrParseFailure reports a raw attribute that did not match its grammar.
// It is never fatal: the attribute is skipped and scoring continues.
func ErrParseFailure(codeType constants.CodeType, raw string, reason string) RiskError {
	return NewError(
		constants.ErrCodeParseFailure,
		http.StatusUnprocessableEntity,
		"Attribute value could not be parsed",
		fmt.Sprintf("%s %q: %s", codeType, raw, reason),
	).WithMetadata("code_type", string(codeType)).
		WithMetadata("raw", raw).
		WithMetadata("reason", reason)
}

// ErrInvalidConfiguration reports unusable scoring tables. Fatal at startup.
func ErrInvalidConfiguration(reason string) RiskError {
	return NewError(
		constants.ErrCodeInvalidConfiguration,
		http.StatusInternalServerError,
		"Scoring configuration is invalid",
		fmt.Sprintf("invalid configuration: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrScoring reports an entity that could not be scored. The batch continues.
func ErrScoring(entityID string, reason string) RiskError {
	return NewError(
		constants.ErrCodeScoringError,
		http.StatusUnprocessableEntity,
		"Entity score unavailable",
		reason,
	).WithMetadata("entity_id", entityID).
		WithMetadata("reason", reason)
}

// ErrEntityNotFound creates a not_found error for an entity or profile
func ErrEntityNotFound(entityID string) RiskError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"Entity not found",
		fmt.Sprintf("entity %s not found", entityID),
	).WithMetadata("entity_id", entityID)
}

// ErrDatabaseOperation wraps a failed repository call
func ErrDatabaseOperation(op string, cause error) RiskError {
	return ErrServerError(fmt.Sprintf("database operation %s failed", op)).
		WithCause(cause).
		WithMetadata("operation", op)
}

// ErrCache wraps a failed cache call
func ErrCache(op string, cause error) RiskError {
	return ErrTemporarilyUnavailable(fmt.Sprintf("cache operation %s failed", op)).
		WithCause(cause).
		WithMetadata("operation", op)
}

// ErrPublish wraps a failed profile publication
func ErrPublish(sink string, cause error) RiskError {
	return ErrTemporarilyUnavailable(fmt.Sprintf("publishing to %s failed", sink)).
		WithCause(cause).
		WithMetadata("sink", sink)
}

// ================================================================================
// Error Conversion Utilities
// ================================================================================

// AsRiskError extracts a RiskError from an error chain
func AsRiskError(err error) (RiskError, bool) {
	var riskErr RiskError
	if stderrors.As(err, &riskErr) {
		return riskErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code constants.ErrorCode) bool {
	if riskErr, ok := AsRiskError(err); ok {
		return riskErr.Code() == code
	}
	return false
}

// StatusOf returns the HTTP status for err, 500 for unstructured errors
func StatusOf(err error) int {
	if riskErr, ok := AsRiskError(err); ok && riskErr.HTTPStatus() != 0 {
		return riskErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ================================================================================
// Error Classification Utilities
// ================================================================================

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	return HasCode(err, constants.ErrCodeNotFound)
}

// ShouldLogError determines if an error should be logged based on severity
func ShouldLogError(err error) bool {
	if riskErr, ok := AsRiskError(err); ok {
		status := riskErr.HTTPStatus()
		return status >= 500 || status == http.StatusTooManyRequests
	}
	return true
}

//Personal.AI order the ending

// Package errors defines the structured error type shared by the bridge and
// the constructor helpers for each failure class: bridge transport failures,
// {success:false} operation acks, positioning/navigation domain errors and
// viewer transport errors.
package errors

import (
	"fmt"

	"github.com/wayfarerhq/mapbridge/logger"
)

type ErrorType string

const (
	// BridgeError covers transport failures talking to the native engine,
	// including the fatal "engine not reachable" case at startup.
	BridgeError ErrorType = "BRIDGE_ERROR"
	// OperationFailedError covers native operations acknowledged with
	// {success:false}.
	OperationFailedError ErrorType = "OPERATION_FAILED"
	// ValidationError covers malformed requests and inbound viewer messages
	// rejected at the deserialization boundary.
	ValidationError ErrorType = "VALIDATION_ERROR"
	// NotFoundError covers cartography lookups with no match.
	NotFoundError ErrorType = "NOT_FOUND"
	// ViewerTransportError covers failures on the viewer message channel.
	ViewerTransportError ErrorType = "VIEWER_TRANSPORT_ERROR"
	// ServerError is the fallback for everything else.
	ServerError ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error.
type AppError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Raw     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Detail:  detail,
	}
}

// Wrap wraps a raw error with AppError context.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Detail:  err.Error(),
		Raw:     err,
	}
}

// NewBridgeError wraps a transport failure against the native engine. The
// original error is logged and kept for unwrapping.
func NewBridgeError(err error) *AppError {
	logger.GetLogger().Errorw("Bridge transport error", "error", err)
	return &AppError{
		Type:    BridgeError,
		Message: "Native bridge operation failed",
		Detail:  err.Error(),
		Raw:     err,
	}
}

// NewOperationFailedError represents a native operation that completed with a
// negative acknowledgement.
func NewOperationFailedError(message string, err error) *AppError {
	return &AppError{
		Type:    OperationFailedError,
		Message: message,
		Detail:  detailOf(err),
		Raw:     err,
	}
}

// ValidationFailed rejects malformed input with a descriptive detail.
func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:    ValidationError,
		Message: message,
		Detail:  details,
	}
}

// NotFound reports a missing cartography entity.
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:    NotFoundError,
		Message: fmt.Sprintf("%s not found", entity),
		Detail:  fmt.Sprintf("ID: %v", id),
	}
}

// NewViewerTransportError classifies a failure on the viewer channel.
func NewViewerTransportError(code string, err error) *AppError {
	return &AppError{
		Type:    ViewerTransportError,
		Code:    code,
		Message: "Viewer channel failure",
		Detail:  detailOf(err),
		Raw:     err,
	}
}

// InternalServerError is the catch-all constructor.
func InternalServerError(message string) *AppError {
	return &AppError{
		Type:    ServerError,
		Message: message,
	}
}

func detailOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

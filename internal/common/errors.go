package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds surfaced by the extraction engine.
const (
	CodeNoItems              = "no-items"
	CodeMalformedCode        = "malformed-code"
	CodeMalformedLLMResponse = "malformed-llm-response"
	CodeRemoteCall           = "remote-call-error"
	CodeTextExtraction       = "text-extraction-error"
	CodeConfig               = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
	ErrDatabase             = errors.New("database error")
	ErrValidation           = errors.New("validation failed")
	ErrRemoteCall           = errors.New("remote call failed")
	ErrMalformedLLMResponse = errors.New("malformed llm response")
	ErrTextExtraction       = errors.New("text extraction failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// RemoteCallError tags a transport or service failure talking to the LLM.
func RemoteCallError(message string, cause error) error {
	return NewAppError(CodeRemoteCall, message, errors.Join(ErrRemoteCall, cause))
}

// MalformedLLMResponseError tags a response that could not be parsed even after repair.
func MalformedLLMResponseError(message string, cause error) error {
	return NewAppError(CodeMalformedLLMResponse, message, errors.Join(ErrMalformedLLMResponse, cause))
}

// TextExtractionError tags a failure of the text extraction collaborator.
func TextExtractionError(message string, cause error) error {
	return NewAppError(CodeTextExtraction, message, errors.Join(ErrTextExtraction, cause))
}

// ErrorCode returns the AppError code anywhere in the chain, or "".
func ErrorCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsCode reports whether err carries the given AppError code.
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

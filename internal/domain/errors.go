package domain

import (
	"errors"
	"net/http"
)

// Error codes for console errors.
const (
	CodeNotFound          = 1
	CodeValidation        = 3
	CodeInternal          = 4
	CodeUpload            = 5
	CodeFetch             = 6
	CodeMutation          = 7
	CodeInvalidTransition = 8
)

// AppError represents a console error with a code, message, and optional wrapped error.
// Fields carries per-field messages for validation errors.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsValidation, etc.)
// instead of errors.Is. The helpers compare error codes, so they match any
// *AppError carrying the same code, including wrapped ones.
var (
	ErrNotFound          = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal          = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrReadOnly          = &AppError{Code: CodeValidation, Message: "form is read-only"}
	ErrFormClosed        = &AppError{Code: CodeValidation, Message: "form is not open"}
	ErrNoDeleteTarget    = &AppError{Code: CodeValidation, Message: "no delete target selected"}
	ErrInvalidTransition = &AppError{Code: CodeInvalidTransition, Message: "transaction is not pending"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error carrying per-field messages.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "validation error",
		Fields:  fields,
	}
}

// NewUploadError wraps an image upload failure. The message stays generic.
func NewUploadError(err error) *AppError {
	return NewAppError(CodeUpload, "image upload failed", err)
}

// NewFetchError wraps a failed list load.
func NewFetchError(err error) *AppError {
	return NewAppError(CodeFetch, "failed to load records", err)
}

// NewMutationError wraps a failed create, update, delete or status change.
func NewMutationError(action string, err error) *AppError {
	return NewAppError(CodeMutation, action+" failed", err)
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUpload reports whether err is or wraps an AppError with CodeUpload.
func IsUpload(err error) bool {
	return hasCode(err, CodeUpload)
}

// IsFetch reports whether err is or wraps an AppError with CodeFetch.
func IsFetch(err error) bool {
	return hasCode(err, CodeFetch)
}

// IsMutation reports whether err is or wraps an AppError with CodeMutation.
func IsMutation(err error) bool {
	return hasCode(err, CodeMutation)
}

// IsInvalidTransition reports whether err is or wraps an AppError with CodeInvalidTransition.
func IsInvalidTransition(err error) bool {
	return hasCode(err, CodeInvalidTransition)
}

// FieldErrors returns the per-field messages of a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeValidation {
		return appErr.Fields
	}
	return nil
}

// hasCode checks whether err is or wraps an *AppError with the given code.
// The outermost AppError decides.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeValidation:
			return http.StatusBadRequest
		case CodeInvalidTransition:
			return http.StatusConflict
		case CodeUpload, CodeFetch, CodeMutation:
			return http.StatusBadGateway
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError independently of its wire code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindInvalidState
	KindForbidden
	KindUnauthorized
	KindIntegrity
	KindMethodNotAllowed
)

// ErrorCode is a catalogued, stable error identifier with its default message and HTTP status.
type ErrorCode struct {
	Code    string
	Message string
	Status  int
	Kind    ErrorKind
}

// Common
var (
	ErrInternalServer   = ErrorCode{"COMMON-500", "An internal server error occurred.", http.StatusInternalServerError, KindInternal}
	ErrInvalidJSON      = ErrorCode{"COMMON-400-JSON", "The request body is malformed.", http.StatusBadRequest, KindValidation}
	ErrValidation       = ErrorCode{"COMMON-400-VALIDATION", "The request contains invalid values.", http.StatusBadRequest, KindValidation}
	ErrMissingParameter = ErrorCode{"COMMON-400-MISSING_PARAM", "A required request parameter is missing.", http.StatusBadRequest, KindValidation}
	ErrTypeMismatch     = ErrorCode{"COMMON-400-TYPE_MISMATCH", "A request parameter has the wrong type.", http.StatusBadRequest, KindValidation}
	ErrMethodNotAllowed = ErrorCode{"COMMON-405", "The HTTP method is not supported.", http.StatusMethodNotAllowed, KindMethodNotAllowed}
	ErrNotFound         = ErrorCode{"COMMON-404", "The requested resource was not found.", http.StatusNotFound, KindNotFound}
	ErrInvalidArgument  = ErrorCode{"COMMON-400-ARG", "The request is invalid.", http.StatusBadRequest, KindValidation}
)

// Authentication and authorization
var (
	ErrUnauthorized = ErrorCode{"AUTH-401", "Authentication is required.", http.StatusUnauthorized, KindUnauthorized}
	ErrForbidden    = ErrorCode{"AUTH-403", "You do not have permission to access this resource.", http.StatusForbidden, KindForbidden}
	ErrJWTExpired   = ErrorCode{"AUTH-401-JWT_EXPIRED", "The access token has expired.", http.StatusUnauthorized, KindUnauthorized}
	ErrJWTInvalid   = ErrorCode{"AUTH-401-JWT_INVALID", "The access token is invalid.", http.StatusUnauthorized, KindUnauthorized}
)

// Storage
var (
	ErrDataIntegrity  = ErrorCode{"DB-409-INTEGRITY", "The request violates a data integrity constraint.", http.StatusConflict, KindIntegrity}
	ErrDuplicateValue = ErrorCode{"DB-400-DUPLICATE", "The value is already in use.", http.StatusBadRequest, KindIntegrity}
)

// Domain
var (
	ErrUserNotFound  = ErrorCode{"USER-404", "The user was not found.", http.StatusNotFound, KindNotFound}
	ErrBoardNotFound = ErrorCode{"BOARD-404", "The board was not found.", http.StatusNotFound, KindNotFound}

	ErrCommentNotFound       = ErrorCode{"COMMENT-404", "The comment was not found.", http.StatusNotFound, KindNotFound}
	ErrCommentBoardRequired  = ErrorCode{"COMMENT-400-BOARD_REQUIRED", "A comment must belong to a board.", http.StatusBadRequest, KindValidation}
	ErrCommentAuthorRequired = ErrorCode{"COMMENT-400-AUTHOR_REQUIRED", "A comment must have an author.", http.StatusBadRequest, KindValidation}
	ErrCommentContentEmpty   = ErrorCode{"COMMENT-400-CONTENT_EMPTY", "Comment content must not be empty.", http.StatusBadRequest, KindValidation}
	ErrCommentContentTooLong = ErrorCode{"COMMENT-400-CONTENT_TOO_LONG", "Comment content must be at most 2000 characters.", http.StatusBadRequest, KindValidation}
	ErrCommentParentRequired = ErrorCode{"COMMENT-400-PARENT_REQUIRED", "A reply must reference a parent comment.", http.StatusBadRequest, KindValidation}
	ErrCommentInvalidDepth   = ErrorCode{"COMMENT-409-INVALID_DEPTH", "Replies can only be attached to root comments.", http.StatusConflict, KindInvalidState}
	ErrCommentBoardMismatch  = ErrorCode{"COMMENT-409-BOARD_MISMATCH", "The parent comment belongs to a different board.", http.StatusConflict, KindInvalidState}
	ErrCommentAlreadyDeleted = ErrorCode{"COMMENT-409-ALREADY_DELETED", "The comment has already been deleted.", http.StatusConflict, KindInvalidState}
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Status  int
	Kind    ErrorKind
	Data    any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError carrying the catalogue's default message.
func (c ErrorCode) New() *AppError {
	return &AppError{Code: c.Code, Message: c.Message, Status: c.Status, Kind: c.Kind}
}

// WithMessage creates an AppError with a caller-specific message.
func (c ErrorCode) WithMessage(message string) *AppError {
	e := c.New()
	e.Message = message
	return e
}

// Wrap creates an AppError that keeps the underlying cause.
func (c ErrorCode) Wrap(err error) *AppError {
	e := c.New()
	e.Err = err
	return e
}

// HasCode reports whether err (or anything it wraps) is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code.Code
}

// Predefined error constructors

func NewNotFoundError(resource string, id interface{}) *AppError {
	code := ErrNotFound
	switch resource {
	case "User":
		code = ErrUserNotFound
	case "Board":
		code = ErrBoardNotFound
	case "Comment":
		code = ErrCommentNotFound
	}
	return code.WithMessage(fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewValidationError(message string) *AppError {
	return ErrValidation.WithMessage(message)
}

func NewUnauthorizedError(message string) *AppError {
	return ErrUnauthorized.WithMessage(message)
}

func NewForbiddenError(message string) *AppError {
	return ErrForbidden.WithMessage(message)
}

func NewDuplicateError(field string) *AppError {
	return ErrDuplicateValue.WithMessage(fmt.Sprintf("%s is already in use", field))
}

func NewConflictError(message string) *AppError {
	return ErrDataIntegrity.WithMessage(message)
}

func NewInternalError(err error) *AppError {
	return ErrInternalServer.Wrap(err)
}

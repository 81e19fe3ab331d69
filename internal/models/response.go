package models

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	successCode    = "SUCCESS"
	successMessage = "The request was processed successfully."
)

// CommonAPIResponse is the envelope wrapped around every API response body.
type CommonAPIResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// OK builds a success envelope.
func OK(data any) CommonAPIResponse {
	return CommonAPIResponse{
		Success:   true,
		Code:      successCode,
		Message:   successMessage,
		Status:    fiber.StatusOK,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Fail builds a failure envelope from an AppError.
func Fail(appErr *AppError) CommonAPIResponse {
	return CommonAPIResponse{
		Success:   false,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Status:    appErr.Status,
		Data:      appErr.Data,
		Timestamp: time.Now(),
	}
}

// Respond writes a success envelope with the given HTTP status.
func Respond(c *fiber.Ctx, status int, data any) error {
	body := OK(data)
	body.Status = status
	return c.Status(status).JSON(body)
}

// AsAppError normalizes any error into an AppError. Unknown errors become COMMON-500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return ErrNotFound.New()
		case fiber.StatusMethodNotAllowed:
			return ErrMethodNotAllowed.New()
		case fiber.StatusBadRequest:
			return ErrInvalidArgument.WithMessage(fiberErr.Message)
		case fiber.StatusRequestEntityTooLarge:
			return ErrInvalidArgument.WithMessage(fiberErr.Message)
		}
	}
	return NewInternalError(err)
}

// RespondWithError writes a failure envelope. A status of 0 uses the status of the error code.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	appErr := AsAppError(err)
	if status == 0 {
		status = appErr.Status
	}
	body := Fail(appErr)
	body.Status = status
	return c.Status(status).JSON(body)
}

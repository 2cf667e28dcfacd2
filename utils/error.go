package utils

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var ErrorRecordNotFound = errors.New("record not found")

// AppError carries the HTTP status a handler should answer with.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) error {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

// NewBadRequestError is used for precondition failures (inactive debt, unknown admin, ...).
func NewBadRequestError(message string) error {
	return &AppError{Status: http.StatusBadRequest, Message: message}
}

func NewConflictError(message string) error {
	return &AppError{Status: http.StatusConflict, Message: message}
}

// NotFoundOr turns gorm.ErrRecordNotFound into a 404 with message and passes any other
// error through unchanged.
func NotFoundOr(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrorRecordNotFound) {
		return NewNotFoundError(message)
	}
	return err
}

// StatusOf reports the status code for err, 500 when err is not an *AppError or
// *ValidationError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

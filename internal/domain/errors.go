package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
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

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrMissingAlertKey = &AppError{
		Code:       "MISSING_ALERT_KEY",
		Message:    "alert_key is required",
		StatusCode: 422,
	}

	ErrInvalidPriority = &AppError{
		Code:       "INVALID_PRIORITY",
		Message:    "Priority must be between 1 and 5",
		StatusCode: 422,
	}

	ErrAlertNotFound = &AppError{
		Code:       "ALERT_NOT_FOUND",
		Message:    "Alert not found",
		StatusCode: 404,
	}

	ErrConfigNotFound = &AppError{
		Code:       "ALERT_CONFIG_NOT_FOUND",
		Message:    "Alert config not found",
		StatusCode: 404,
	}

	ErrConfigExists = &AppError{
		Code:       "ALERT_CONFIG_EXISTS",
		Message:    "Alert config already exists for this alert_key",
		StatusCode: 409,
	}

	ErrStorageUnavailable = &AppError{
		Code:       "STORAGE_UNAVAILABLE",
		Message:    "Storage is temporarily unavailable",
		StatusCode: 503,
	}
)

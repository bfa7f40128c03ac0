package service

import (
	"errors"

	"nrw-report-service/internal/validate"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUploadFailed         = errors.New("image upload failed")
	ErrSubmissionFailed     = errors.New("report submission failed")
	ErrPersistence          = errors.New("report store unavailable")
	ErrConfirmationRequired = errors.New("delete must be confirmed")
	ErrSubmissionInFlight   = errors.New("submission already in progress")
)

// ValidationError carries the field errors of a rejected form. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Fields validate.ErrorMap
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

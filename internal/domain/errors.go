package domain

import (
	"errors"
	"fmt"
)

// ErrEstimationUnavailable is returned by an estimator that could not produce
// any value. The composed estimator always falls back, so callers rarely see it.
var ErrEstimationUnavailable = errors.New("eta estimation unavailable")

// InvalidPassengerRecordError marks a stored passenger that cannot be
// processed, e.g. one without pickup coordinates.
type InvalidPassengerRecordError struct {
	PassengerID string
	Field       string
	Err         error
}

func (e InvalidPassengerRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid passenger record %s", e.PassengerID)
	}
	return fmt.Sprintf("invalid passenger record %s: %s is missing", e.PassengerID, e.Field)
}

func (e InvalidPassengerRecordError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func IsInvalidPassengerRecord(err error) bool {
	var target InvalidPassengerRecordError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

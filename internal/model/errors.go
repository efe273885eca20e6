package model

import (
	"errors"
	"fmt"
)

var (
	ErrRecordDoesNotExist = errors.New("record does not exist")
	ErrUnknownPage        = errors.New("unknown page")
	ErrUnknownModel       = errors.New("model is not in the fetched list")
)

// ValidationError is raised before any network call when a required local value is missing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HttpError is a non-success status whose body carried no usable error message.
type HttpError struct {
	Status int
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// ApiError is a non-success status with a parseable error message in the body.
type ApiError struct {
	Status  int
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

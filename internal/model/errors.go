package model

import "errors"

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the request clashes with current state,
	// such as a duplicate tag or slaughtering an animal twice.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")
)

package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrValidation  = errors.New("invalid input")
	ErrDuplicate   = errors.New("already exists")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
	ErrCorrupted   = errors.New("data file is corrupted")
	ErrCancelled   = errors.New("cancelled")
	ErrInputClosed = errors.New("input closed")
)

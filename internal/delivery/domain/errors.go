package domain

import "errors"

var (
	// ErrInvalidIdentifier id or segment name is not a safe path component
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNotFound record, file or object does not exist
	ErrNotFound = errors.New("not found")
	// ErrMalformedRange Range header cannot be satisfied
	ErrMalformedRange = errors.New("malformed range")
	// ErrIOFailure disk read, seek or stat failed
	ErrIOFailure = errors.New("io failure")
)

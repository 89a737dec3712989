package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateResponse is returned when a volunteer has already
	// responded to the announcement. The storage layer maps its unique
	// constraint violation to this error, so concurrent duplicate
	// requests resolve to exactly one success.
	ErrDuplicateResponse = errors.New("duplicate response")

	// ErrPhoneTaken is returned when the phone number is already
	// registered.
	ErrPhoneTaken = errors.New("phone number already registered")
)

package middleware

import "errors"

// Request validation errors shared by the API handlers.
var (
	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrEmptySQL        = errors.New("sql must not be empty")
	ErrSessionNotFound = errors.New("session not found")
)

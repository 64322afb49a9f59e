package main

import "errors"

// Error kinds returned by the auth and storage helpers. Handlers map each kind
// to its own HTTP status instead of collapsing unrelated failures into one
// response code.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUser      = errors.New("user already exists")
)

package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes with errors.Is.
var (
	// ErrInvalidInput covers any field that fails validation, including a
	// user record with no zipcode at candidate-selection time.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned on any login failure. It does not
	// distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserNotFound is returned when the requested profile does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfMatch is returned when a user tries to match with themselves.
	ErrSelfMatch = errors.New("cannot match with yourself")

	// ErrTargetNotFound is returned when the match target does not exist.
	ErrTargetNotFound = errors.New("match target not found")

	// ErrNotAuthorized is returned when a user requests another user's
	// match lists.
	ErrNotAuthorized = errors.New("not authorized")
)

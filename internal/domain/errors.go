package domain

import "errors"

var (
	// ErrDuplicateUser is returned when a username is already registered (any letter case).
	ErrDuplicateUser = errors.New("username already exists")
	// ErrUserNotFound is returned when no user matches the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrEmptyQuestionPool indicates there are no questions for the requested scope.
	ErrEmptyQuestionPool = errors.New("no questions available")
	// ErrInvalidDate indicates a date of birth could not be parsed.
	ErrInvalidDate = errors.New("invalid date format")
)

// ErrInvalidField is returned when a username or password is empty or contains '|' or a line break.
var ErrInvalidField = errors.New("value must not be empty or contain '|' or line breaks")

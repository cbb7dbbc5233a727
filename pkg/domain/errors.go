package domain

import "errors"

// ErrInvalidState is returned when a state value is not part of the funnel.
var ErrInvalidState = errors.New("invalid conversation state")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyUserID is returned when a request carries no user identifier.
var ErrEmptyUserID = errors.New("user id is required")

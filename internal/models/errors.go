package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when an order is placed with no lines
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")
)

// StoreWriteError wraps a failed write to the backing store
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreReadError wraps a failed read from the backing store
type StoreReadError struct {
	Op  string
	Err error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("store read %s: %v", e.Op, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// Auth failure codes
const (
	AuthUserNotFound   = "user-not-found"
	AuthWrongPassword  = "wrong-password"
	AuthInvalidSession = "invalid-session"
)

// AuthError is a failed sign-in or an unusable session
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %s", e.Code, e.Message)
}

// ValidationError rejects a request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

package errors

import (
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func NotFound(what string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound}
}

func Forbidden(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden}
}

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	if _, ok := err.(T); ok {
		return true
	}
	return false
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

// StorageError is a failed read/write against the blob store. During the
// synchronous upload path it propagates to the caller as request failure;
// inside the thumbnail task it is retryable.
type StorageError struct {
	Op       string
	Location string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob storage %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DecodeError means the stored original could not be decoded as an image.
// Terminal for the thumbnail task: logged, never retried, never surfaced to
// the uploader (the upload response was already sent).
type DecodeError struct {
	Location string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.Location, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConflictError signals a scheduling-invariant violation, e.g. deleting an
// image whose thumbnail job may still be in flight. Must never be silently
// swallowed.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

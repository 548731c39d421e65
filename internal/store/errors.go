package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeCorrupt indicates the backing store holds a record that does
	// not decode.
	ErrCodeCorrupt ErrorCode = "CORRUPT_STORE"

	// ErrCodePersist indicates a snapshot could not be written back.
	ErrCodePersist ErrorCode = "PERSIST_FAILED"

	// ErrCodeInvalidLabel indicates a label that cannot be represented in
	// the line format.
	ErrCodeInvalidLabel ErrorCode = "INVALID_LABEL"

	// ErrCodeOpen indicates the backing store could not be created or opened.
	ErrCodeOpen ErrorCode = "OPEN_FAILED"
)

// Error is returned by Store and Backend operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Label is the affected label, if any.
	Label string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Label != "" {
		msg = fmt.Sprintf("%s (label=%q)", msg, e.Label)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DecodeError describes a single malformed line in the backing file.
type DecodeError struct {
	Line   int    // 1-based line number
	Text   string // raw line content
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

// IsCorrupt returns true if the error reports an undecodable backing store.
// Uses errors.As to handle wrapped errors.
func IsCorrupt(err error) bool {
	return hasCode(err, ErrCodeCorrupt)
}

// IsPersistFailure returns true if a snapshot could not be saved.
func IsPersistFailure(err error) bool {
	return hasCode(err, ErrCodePersist)
}

// IsInvalidLabel returns true if a mutation was rejected for its label.
func IsInvalidLabel(err error) bool {
	return hasCode(err, ErrCodeInvalidLabel)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newCorruptError(err error) *Error {
	return &Error{
		Code:    ErrCodeCorrupt,
		Message: "backing store is corrupt",
		Err:     err,
	}
}

func newPersistError(err error) *Error {
	return &Error{
		Code:    ErrCodePersist,
		Message: "failed to save todo list",
		Err:     err,
	}
}

func newInvalidLabelError(label, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidLabel,
		Message: reason,
		Label:   label,
	}
}

func newOpenError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeOpen,
		Message: fmt.Sprintf("could not open %s", path),
		Err:     err,
	}
}

// Package errors provides standardized error types and helpers for the JuniperMARC codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrFormat indicates a structural violation in MARC transmission data
	ErrFormat = errors.New("malformed record")
	// ErrEncoding indicates a MARC-8 transcoding failure
	ErrEncoding = errors.New("encoding failure")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// FormatError represents a structural violation in the MARC21 binary layout:
// wrong leader length, missing directory or record terminator, non-numeric
// length/offset fields, out-of-bounds directory entries, premature stream end.
type FormatError struct {
	Offset  int64  // Byte offset from the start of the record, -1 if unknown
	Message string // Human-readable description of the violated invariant
	Err     error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed record at byte %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("malformed record: %s", e.Message)
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFormat
}

// EncodingError represents a MARC-8 transcoding failure: an invalid or
// incomplete escape sequence, a byte with no mapping in the active character
// set, or a codepoint absent from every reverse table.
type EncodingError struct {
	Offset  int    // Byte or codepoint offset within the field being transcoded
	Byte    byte   // Offending byte (decode direction), 0 if not applicable
	Rune    rune   // Offending codepoint (encode direction), 0 if not applicable
	Message string // Human-readable description
}

func (e *EncodingError) Error() string {
	if e.Rune != 0 {
		return fmt.Sprintf("encoding failure at offset %d: %s (codepoint U+%04X)", e.Offset, e.Message, e.Rune)
	}
	if e.Byte != 0 {
		return fmt.Sprintf("encoding failure at offset %d: %s (byte 0x%02X)", e.Offset, e.Message, e.Byte)
	}
	return fmt.Sprintf("encoding failure at offset %d: %s", e.Offset, e.Message)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// ValidationError represents a field model contract violation: subfields on a
// control field, a data field built with a control tag, a malformed tag.
type ValidationError struct {
	Field   string // Component that failed validation (e.g., "tag", "indicators")
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "record", "index entry")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewFormat creates a FormatError at a known byte offset.
func NewFormat(offset int64, message string) *FormatError {
	return &FormatError{
		Offset:  offset,
		Message: message,
	}
}

// NewFormatf creates a FormatError at a known byte offset with a formatted message.
func NewFormatf(offset int64, format string, args ...interface{}) *FormatError {
	return &FormatError{
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewBadByte creates an EncodingError for a byte with no mapping.
func NewBadByte(offset int, b byte, message string) *EncodingError {
	return &EncodingError{
		Offset:  offset,
		Byte:    b,
		Message: message,
	}
}

// NewBadRune creates an EncodingError for a codepoint with no mapping.
func NewBadRune(offset int, r rune, message string) *EncodingError {
	return &EncodingError{
		Offset:  offset,
		Rune:    r,
		Message: message,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

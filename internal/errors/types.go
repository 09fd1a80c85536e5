package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeScan       ErrorType = "scan"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes used across templex.
const (
	CodeUnterminated   = "UNTERMINATED"
	CodeBadPipe        = "BAD_PIPE"
	CodeSinkWrite      = "SINK_WRITE"
	CodeReadSource     = "READ_SOURCE"
	CodeDecodeSource   = "DECODE_SOURCE"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeMalformedInput = "MALFORMED_INPUT"
)

// TemplexError is a structured error type with context.
type TemplexError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Line        int
	Column      int
	Offset      int
	Recoverable bool
}

// Error implements the error interface.
func (e *TemplexError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TemplexError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *TemplexError) Is(target error) bool {
	var t *TemplexError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *TemplexError) WithContext(key string, value interface{}) *TemplexError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *TemplexError) WithLocation(filePath string, line, column int) *TemplexError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// NewScanError creates an error for a fatal scan failure at a source offset.
func NewScanError(code, message string, offset int) *TemplexError {
	return &TemplexError{
		Type:        ErrorTypeScan,
		Code:        code,
		Message:     message,
		Offset:      offset,
		Recoverable: false,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *TemplexError {
	return &TemplexError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *TemplexError {
	return &TemplexError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *TemplexError {
	return &TemplexError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *TemplexError {
	return &TemplexError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var te *TemplexError
	if errors.As(err, &te) {
		return te.Recoverable
	}

	return false
}

// IsScanError checks if an error came from the template scanner.
func IsScanError(err error) bool {
	return hasType(err, ErrorTypeScan)
}

// IsIOError checks if an error is I/O related.
func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

func hasType(err error, t ErrorType) bool {
	var te *TemplexError
	if errors.As(err, &te) {
		return te.Type == t
	}

	return false
}

// FieldValidationError describes one invalid configuration field.
type FieldValidationError struct {
	FieldName   string
	FieldValue  interface{}
	Message     string
	Suggestions []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("%s: %s", fve.FieldName, fve.Message)
}

// ValidationErrorCollection aggregates field errors.
type ValidationErrorCollection struct {
	Errors []*FieldValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	msgs := make([]string, 0, len(vec.Errors))
	for _, err := range vec.Errors {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("%d validation errors: %s", len(vec.Errors), strings.Join(msgs, "; "))
}

// AddField records an invalid field.
func (vec *ValidationErrorCollection) AddField(field string, value interface{}, message string, suggestions ...string) {
	vec.Errors = append(vec.Errors, &FieldValidationError{
		FieldName:   field,
		FieldValue:  value,
		Message:     message,
		Suggestions: suggestions,
	})
}

// HasErrors reports whether any field failed.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToTemplexError converts the collection into a config error.
func (vec *ValidationErrorCollection) ToTemplexError() *TemplexError {
	if !vec.HasErrors() {
		return nil
	}

	te := NewConfigError(CodeInvalidConfig, vec.Error())
	for _, err := range vec.Errors {
		if len(err.Suggestions) > 0 {
			te.WithContext(err.FieldName, err.Suggestions)
		}
	}

	return te
}

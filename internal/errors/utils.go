package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context, creating a TemplexError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *TemplexError {
	if err == nil {
		return nil
	}

	// Keep the location of an existing TemplexError
	var te *TemplexError
	if errors.As(err, &te) {
		return &TemplexError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       te,
			Context:     te.Context,
			FilePath:    te.FilePath,
			Line:        te.Line,
			Column:      te.Column,
			Offset:      te.Offset,
			Recoverable: te.Recoverable,
		}
	}

	return &TemplexError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *TemplexError {
	templErr := Wrap(err, ErrorTypeIO, code, message)
	if templErr != nil {
		templErr.Recoverable = false
	}
	return templErr
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *TemplexError {
	templErr := Wrap(err, ErrorTypeConfig, code, message)
	if templErr != nil {
		templErr.Recoverable = false
	}
	return templErr
}

// AsTemplexError returns the first TemplexError in err's chain.
func AsTemplexError(err error) (*TemplexError, bool) {
	var te *TemplexError
	ok := errors.As(err, &te)
	return te, ok
}

// FormatError renders err for terminal output, one line per cause.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var te *TemplexError
	if !errors.As(err, &te) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s error", te.Type))
	if te.FilePath != "" {
		b.WriteString(fmt.Sprintf(" in %s", te.FilePath))
		if te.Line > 0 {
			b.WriteString(fmt.Sprintf(" at line %d, column %d", te.Line, te.Column))
		}
	}
	b.WriteString(": ")
	b.WriteString(te.Message)

	return b.String()
}

// CombineErrors joins the non-nil errors, or returns nil
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return errors.Join(nonNil...)
	}
}

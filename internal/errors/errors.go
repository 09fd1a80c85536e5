// Package errors provides the structured error types used by templex:
// scan failures carrying a source location, sink I/O failures from the
// serializer, and configuration validation errors.
package errors

import (
	"sort"
	"sync"
)

// ErrorCollector collects errors from independent parse attempts that may run
// concurrently.
type ErrorCollector struct {
	errors []*TemplexError
	other  []error
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]*TemplexError, 0),
		other:  make([]error, 0),
	}
}

// Add adds an error to the collector. Nil errors are ignored.
func (ec *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	if te, ok := err.(*TemplexError); ok {
		ec.errors = append(ec.errors, te)
		return
	}
	ec.other = append(ec.other, err)
}

// GetErrors returns the structured errors ordered by file and position.
func (ec *ErrorCollector) GetErrors() []*TemplexError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]*TemplexError, len(ec.errors))
	copy(result, ec.errors)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].FilePath != result[j].FilePath {
			return result[i].FilePath < result[j].FilePath
		}
		return result[i].Offset < result[j].Offset
	})
	return result
}

// GetErrorsByFile returns errors for a specific file
func (ec *ErrorCollector) GetErrorsByFile(file string) []*TemplexError {
	var fileErrors []*TemplexError
	for _, err := range ec.GetErrors() {
		if err.FilePath == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0 || len(ec.other) > 0
}

// Err combines everything collected into one error, or nil.
func (ec *ErrorCollector) Err() error {
	all := make([]error, 0)
	for _, te := range ec.GetErrors() {
		all = append(all, te)
	}
	ec.mutex.RLock()
	all = append(all, ec.other...)
	ec.mutex.RUnlock()
	return CombineErrors(all...)
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
	ec.other = ec.other[:0]
}

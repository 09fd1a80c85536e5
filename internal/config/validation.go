package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/logging"
)

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors   errors.ValidationErrorCollection
	Warnings errors.ValidationErrorCollection
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return vr.Errors.HasErrors()
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return vr.Warnings.HasErrors()
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if vr.HasErrors() {
		builder.WriteString("Validation errors:\n")
		writeIssues(&builder, vr.Errors.Errors)
		builder.WriteString("\n")
	}
	if vr.HasWarnings() {
		builder.WriteString("Validation warnings:\n")
		writeIssues(&builder, vr.Warnings.Errors)
	}

	return builder.String()
}

func writeIssues(b *strings.Builder, issues []*errors.FieldValidationError) {
	for _, issue := range issues {
		fmt.Fprintf(b, "  • %s: %s\n", issue.FieldName, issue.Message)
		for _, suggestion := range issue.Suggestions {
			fmt.Fprintf(b, "    hint: %s\n", suggestion)
		}
	}
}

// Validate returns a config error listing every invalid field.
func (c *Config) Validate() error {
	if result := ValidateWithDetails(c); result.HasErrors() {
		return result.Errors.ToTemplexError()
	}
	return nil
}

// ValidateWithDetails checks every section and collects errors and
// warnings with suggestions.
func ValidateWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateLexerConfig(&config.Lexer, result)
	validateWatchConfig(&config.Watch, result)
	validateServerConfig(&config.Server, result)
	validateLogConfig(&config.Log, result)

	return result
}

func validateLexerConfig(config *LexerConfig, result *ValidationResult) {
	syntax := (&Config{Lexer: *config}).Syntax()
	if err := syntax.Validate(); err != nil {
		result.Errors.AddField("lexer", syntax, err.Error(),
			"The default delimiters are {{ and }}",
			"Delimiters must differ and contain no whitespace")
	}

	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			result.Errors.AddField("lexer.extensions", ext,
				fmt.Sprintf("extension %q must start with a dot and name no directory", ext),
				"Use values like .hbs or .html")
		}
	}
}

func validateWatchConfig(config *WatchConfig, result *ValidationResult) {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			result.Errors.AddField("watch.paths", path, err.Error())
		}
	}

	switch {
	case config.Debounce < 0:
		result.Errors.AddField("watch.debounce", config.Debounce, "debounce must not be negative")
	case config.Debounce > 0 && config.Debounce < 10*time.Millisecond:
		result.Warnings.AddField("watch.debounce", config.Debounce,
			"very short debounce re-lexes on every intermediate write",
			"Editors often write files in several steps; 100ms or more is typical")
	}
}

func validateServerConfig(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.Errors.AddField("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Common development ports: 3000, 8080, 8000")
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings.AddField("server.port", config.Port,
			"port below 1024 requires elevated privileges",
			"Consider using a port above 1024 for development")
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.Errors.AddField("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces")
		}
	}
}

func validateLogConfig(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.Errors.AddField("log.level", config.Level, err.Error(),
			"Use one of debug, info, warn, error")
	}
	switch config.Format {
	case "", "text", "json":
	default:
		result.Errors.AddField("log.format", config.Format,
			fmt.Sprintf("unknown log format %q", config.Format),
			"Use text or json")
	}
}

func validateHostname(host string) error {
	if net.ParseIP(host) != nil || host == "localhost" {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("hostname too long")
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid hostname %q", host)
		}
		for _, r := range label {
			isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !isAlnum && r != '-' {
				return fmt.Errorf("hostname contains invalid character %q", r)
			}
		}
	}
	return nil
}

// validatePath rejects empty paths and parent-directory traversal.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	cleanPath := filepath.Clean(path)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path contains traversal: %s", path)
	}
	return nil
}

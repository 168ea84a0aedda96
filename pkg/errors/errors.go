package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "FLAB1001"
	ErrCodeConnectionTimeout    ErrorCode = "FLAB1002"
	ErrCodeAuthenticationFailed ErrorCode = "FLAB1003"
	ErrCodeNetworkUnavailable   ErrorCode = "FLAB1004"
	ErrCodeNotConnected         ErrorCode = "FLAB1005"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound   ErrorCode = "FLAB2001"
	ErrCodeConfigInvalid    ErrorCode = "FLAB2002"
	ErrCodeConfigMissing    ErrorCode = "FLAB2003"
	ErrCodeConfigPermission ErrorCode = "FLAB2004"

	// Deployment errors (3xxx)
	ErrCodeDeploymentFailed ErrorCode = "FLAB3001"
	ErrCodeStepFailed       ErrorCode = "FLAB3002"
	ErrCodeCleanupFailed    ErrorCode = "FLAB3003"
	ErrCodeDataGeneration   ErrorCode = "FLAB3004"

	// SQL execution errors (4xxx)
	ErrCodeSQLSyntax         ErrorCode = "FLAB4001"
	ErrCodeSQLPermission     ErrorCode = "FLAB4002"
	ErrCodeSQLTimeout        ErrorCode = "FLAB4003"
	ErrCodeSQLObjectNotFound ErrorCode = "FLAB4005"
	ErrCodeSQLExecution      ErrorCode = "FLAB4006"
	ErrCodeStagingFailed     ErrorCode = "FLAB4007"
	ErrCodeNoResults         ErrorCode = "FLAB4008"

	// File system errors (5xxx)
	ErrCodeFileNotFound   ErrorCode = "FLAB5001"
	ErrCodeFilePermission ErrorCode = "FLAB5002"
	ErrCodeFileOperation  ErrorCode = "FLAB5005"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "FLAB6001"
	ErrCodeInvalidInput     ErrorCode = "FLAB6002"
	ErrCodeRequiredField    ErrorCode = "FLAB6003"
	ErrCodeUserInput        ErrorCode = "FLAB6004"

	// Security errors (7xxx)
	ErrCodeSecurityViolation ErrorCode = "FLAB7001"
	ErrCodeEncryptionFailed  ErrorCode = "FLAB7002"
	ErrCodeCredentialMissing ErrorCode = "FLAB7003"

	// System errors (9xxx)
	ErrCodeInternal           ErrorCode = "FLAB9001"
	ErrCodeTimeout            ErrorCode = "FLAB9002"
	ErrCodeResourceExhausted  ErrorCode = "FLAB9003"
	ErrCodeServiceUnavailable ErrorCode = "FLAB9004"
	ErrCodeResultParsing      ErrorCode = "FLAB9005"
	ErrCodeNotFound           ErrorCode = "FLAB9006"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // Run cannot continue
	SeverityError    ErrorSeverity = "ERROR"    // Step failed
	SeverityWarning  ErrorSeverity = "WARNING"  // Best-effort step failed, run continues
	SeverityInfo     ErrorSeverity = "INFO"
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with AppError. Context from a wrapped
// AppError is carried over.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	var inner *AppError
	if errors.As(err, &inner) {
		for k, v := range inner.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSuggestions(
			"Check your network connection",
			"Verify the account identifier in connections.toml",
			"Run 'flakelab connections test' to check the profile",
		)
}

// ConfigNotFound reports a missing configuration file or profile
func ConfigNotFound(message string, searched ...string) *AppError {
	err := New(ErrCodeConfigNotFound, message)
	if len(searched) > 0 {
		err.WithContext("searched", searched)
		suggestions := make([]string, 0, len(searched)+1)
		suggestions = append(suggestions, "Create connections.toml in one of:")
		for _, p := range searched {
			suggestions = append(suggestions, "  "+p)
		}
		err.WithSuggestions(suggestions...)
	}
	return err
}

// SQLError creates an SQL execution error. The code is refined from the
// driver message of cause.
func SQLError(message string, query string, cause error) *AppError {
	err := New(ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))
	err.Cause = cause

	detail := strings.ToLower(message)
	if cause != nil {
		detail += " " + strings.ToLower(cause.Error())
	}

	switch {
	case strings.Contains(detail, "does not exist") || strings.Contains(detail, "not found"):
		err.Code = ErrCodeSQLObjectNotFound
		_ = err.WithSuggestions(
			"Verify the object exists in the target database and schema",
			"Check that the deployment ran before this command",
		)
	case strings.Contains(detail, "insufficient privileges") || strings.Contains(detail, "access denied") || strings.Contains(detail, "permission"):
		err.Code = ErrCodeSQLPermission
		_ = err.WithSuggestions(
			"Verify the role has the required privileges",
			"Set 'role' in the connection profile",
		)
	case strings.Contains(detail, "timeout"):
		err.Code = ErrCodeSQLTimeout
		_ = err.WithSuggestions(
			"Increase QUERY_TIMEOUT_SECONDS",
			"Use a larger warehouse",
		)
	case strings.Contains(detail, "syntax error"):
		err.Code = ErrCodeSQLSyntax
	}

	return err
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// InvalidInput reports a bad command-line value
func InvalidInput(what, value string, allowed ...string) *AppError {
	err := New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s %q", what, value)).
		WithContext(what, value)
	if len(allowed) > 0 {
		err.WithSuggestions("Use one of: " + strings.Join(allowed, ", "))
	}
	return err
}

// NotFound reports a missing record
func NotFound(kind, id string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s %q not found", kind, id)).
		WithContext("id", id)
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

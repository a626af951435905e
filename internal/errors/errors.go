package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes failures by the data-quality rule that tripped.
type ErrorType int

const (
	// MissingInput - no weekly files found, or a questionnaire definition
	// file is absent. Recoverable by skipping the category/week.
	ErrorTypeMissingInput ErrorType = iota
	// MalformedRow - a response field could not be parsed as a score.
	// Recovered by treating the item as absent.
	ErrorTypeMalformedRow
	// AmbiguousIdentity - the resolver could not uniquely match a late-week
	// record. Degrades to new-record creation, never fatal.
	ErrorTypeAmbiguousIdentity
	// DegenerateDenominator - a rescaled-score computation with a zero
	// scaling denominator. The score becomes null, never an error return.
	ErrorTypeDegenerateDenominator
	// Config - invalid or missing configuration.
	ErrorTypeConfig
	// FileSystem - file I/O failures.
	ErrorTypeFileSystem
	// Internal - unexpected internal state.
	ErrorTypeInternal
)

// Severity represents how critical an error is.
type Severity int

const (
	// SeverityLow - logged, processing continues untouched.
	SeverityLow Severity = iota
	// SeverityMedium - degraded output, worth surfacing for manual review.
	SeverityMedium
	// SeverityHigh - a whole week or category was dropped.
	SeverityHigh
	// SeverityCritical - the run cannot produce any usable output.
	SeverityCritical
)

// Error is a structured error carrying the data-quality taxonomy.
type Error struct {
	Type     ErrorType
	Severity Severity
	Message  string
	Cause    error
	Context  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for diagnostics.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Is matches on error type, so callers can use errors.Is against a sentinel
// of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal reports whether this error should abort the run.
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString renders the error with its context for log output.
func (e *Error) DetailedString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] [%s] %s", severityString(e.Severity), typeString(e.Type), e.Message))
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (caused by: %v)", e.Cause))
	}
	for k, v := range e.Context {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}
	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeMissingInput:
		return "MISSING_INPUT"
	case ErrorTypeMalformedRow:
		return "MALFORMED_ROW"
	case ErrorTypeAmbiguousIdentity:
		return "AMBIGUOUS_IDENTITY"
	case ErrorTypeDegenerateDenominator:
		return "DEGENERATE_DENOMINATOR"
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// New creates a new structured error.
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Context:  make(map[string]any),
	}
}

// Wrap wraps an existing error with taxonomy information.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Cause:    err,
		Context:  make(map[string]any),
	}
}

// MissingInput creates a missing-input error. Severity is high, not
// critical: a single missing week or questionnaire is skipped.
func MissingInput(message string) *Error {
	return New(ErrorTypeMissingInput, SeverityHigh, message)
}

// MissingInputf creates a missing-input error with formatting.
func MissingInputf(format string, args ...any) *Error {
	return MissingInput(fmt.Sprintf(format, args...))
}

// NoUsableInput is the only fatal variant of MissingInput: nothing at all
// could be loaded, so the run has no output to produce.
func NoUsableInput(message string) *Error {
	return New(ErrorTypeMissingInput, SeverityCritical, message)
}

// MalformedRow creates a malformed-row error.
func MalformedRow(message string) *Error {
	return New(ErrorTypeMalformedRow, SeverityLow, message)
}

// MalformedRowf creates a malformed-row error with formatting.
func MalformedRowf(format string, args ...any) *Error {
	return MalformedRow(fmt.Sprintf(format, args...))
}

// AmbiguousIdentity creates an ambiguous-identity warning. This is the main
// latent-bug surface of the pipeline; callers log it with full candidate
// context for manual review.
func AmbiguousIdentity(message string) *Error {
	return New(ErrorTypeAmbiguousIdentity, SeverityMedium, message)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// FileSystemError wraps a filesystem error.
func FileSystemError(err error, message string) *Error {
	return Wrap(err, ErrorTypeFileSystem, SeverityHigh, message)
}

// InternalErrorf creates an internal error with formatting.
func InternalErrorf(format string, args ...any) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// IsFatal checks whether an error should stop the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.IsFatal()
	}
	return false
}

// GetType returns the taxonomy type of an error, defaulting to internal for
// foreign errors.
func GetType(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

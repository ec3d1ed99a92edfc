package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorType int

const (
	ErrValidation ErrorType = iota
	ErrParse
	ErrIO
)

func (t ErrorType) String() string {
	switch t {
	case ErrValidation:
		return "Validation"
	case ErrParse:
		return "Parse"
	case ErrIO:
		return "IO"
	default:
		return "Unknown"
	}
}

// Reason is a user-facing cause of a failure.
type Reason string

const (
	ReasonEmptyDirectory    Reason = "empty-directory"
	ReasonDirectoryNotFound Reason = "directory-not-found"
	ReasonEmptyFileName     Reason = "empty-filename"
	ReasonMalformedDocument Reason = "malformed-document"
	ReasonReadFailed        Reason = "read-failed"
	ReasonWriteFailed       Reason = "write-failed"
	ReasonOverwriteDeclined Reason = "overwrite-declined"
)

// Message categories shown by front ends.
const (
	CategoryDirectory = "directory"
	CategoryFileName  = "filename"
	CategoryParse     = "parse"
	CategorySave      = "save"
)

// Error is returned by every merge and save operation.
type Error struct {
	Type    ErrorType
	Reason  Reason
	Message string
	// Path is the file the error relates to, if any.
	Path    string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, reason Reason, message string) *Error {
	return &Error{
		Type:    errorType,
		Reason:  reason,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, reason Reason, message string, cause error) *Error {
	e := NewError(errorType, reason, message)
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path: %s", e.Path))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Category returns the message category a front end should display.
// A matched file that cannot be read is reported like one that cannot be parsed.
func (e *Error) Category() string {
	switch {
	case e.Type == ErrValidation && e.Reason == ReasonEmptyFileName:
		return CategoryFileName
	case e.Type == ErrValidation:
		return CategoryDirectory
	case e.Type == ErrParse, e.Reason == ReasonReadFailed:
		return CategoryParse
	default:
		return CategorySave
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var mergeErr *Error
	if errors.As(err, &mergeErr) {
		return mergeErr.Type == errorType
	}
	return false
}

// ReasonOf returns the reason of a merge error, or "" for other errors.
func ReasonOf(err error) Reason {
	var mergeErr *Error
	if errors.As(err, &mergeErr) {
		return mergeErr.Reason
	}
	return ""
}

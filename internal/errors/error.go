package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryParse     Category = "parse"
	CategoryReconcile Category = "reconcile"
	CategoryPatch     Category = "patch"
	CategoryTheme     Category = "theme"
	CategoryStore     Category = "store"
	CategorySource    Category = "source"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location represents a position inside a document.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	file := l.File
	if file == "" {
		file = "<input>"
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", file, l.Line)
}

// Error is a structured error with a registry code, an optional document
// location and a hint on how to fix it.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the node path or patch target the error refers to.
	Path string

	// Location is the position in the source document, if known.
	Location *Location

	// Context contains the document lines surrounding Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithPath records the node path or patch target.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithLocation adds a document location to the error.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSource resolves a byte offset inside data to a line and column and
// keeps the surrounding lines for Format.
func (e *Error) WithSource(file string, data []byte, offset int64) *Error {
	if offset < 0 {
		return e
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	e.Location = &Location{File: file, Line: line, Column: col}
	e.Context = contextLines(data, line, 3)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// contextLines returns up to size lines centred on target (1-based).
func contextLines(data []byte, target, size int) []string {
	lines := bytes.Split(data, []byte("\n"))
	start := target - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > len(lines) {
		end = len(lines)
	}
	var out []string
	for i := start; i <= end; i++ {
		out = append(out, string(bytes.TrimRight(lines[i-1], "\r")))
	}
	return out
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var ye *Error
	if stderrors.As(err, &ye) {
		return ye
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var ye *Error
		if !stderrors.As(err, &ye) {
			return false
		}
		if ye.Code == code {
			return true
		}
		err = ye.Wrapped
	}
	return false
}

// Package errors defines the error taxonomy shared by the follow engine,
// its file handles and the presentation layer. It re-exports the standard
// helpers so callers only need to import one errors package.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Standard errors package helpers re-exported for convenience
var (
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// ErrorKind classifies an application error
type ErrorKind int

const (
	Unknown ErrorKind = iota
	// Open failures
	FileNotFound
	FileAccessDenied
	NotRegular
	FileOpenFailed
	// Read failures
	ReadFailed
	HandleClosed
	FileTruncated
	// Lifecycle failures
	JoinTimeout
	TaskPanic
	InvalidArgument
)

// Sentinel errors checked with Is
var (
	ErrHandleClosed  = &ApplicationError{msg: "file handle closed", kind: HandleClosed}
	ErrJoinTimeout   = &ApplicationError{msg: "background task did not stop in time", kind: JoinTimeout}
	ErrInvalidChunk  = &ApplicationError{msg: "chunk size must be positive", kind: InvalidArgument}
	ErrInvalidOffset = &ApplicationError{msg: "offset outside file bounds", kind: InvalidArgument}
	ErrFileTruncated = &ApplicationError{msg: "file shrank below read offset", kind: FileTruncated}
)

// ApplicationError is the base error type
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileOpenError is returned once from a session open when the file cannot be
// followed. The session does not start.
type FileOpenError struct {
	ApplicationError
	path string
}

// NewFileOpenError classifies err and wraps it with the path
func NewFileOpenError(path string, err error) *FileOpenError {
	kind := FileOpenFailed
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = FileNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = FileAccessDenied
	}
	return &FileOpenError{
		ApplicationError: ApplicationError{msg: "open log file", err: err, kind: kind},
		path:             path,
	}
}

// NewNotRegularError reports a path that exists but is not a regular file
func NewNotRegularError(path string) *FileOpenError {
	return &FileOpenError{
		ApplicationError: ApplicationError{msg: "not a regular file", kind: NotRegular},
		path:             path,
	}
}

// Error returns the open error message
func (e *FileOpenError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, e.path)
}

// Path returns the path that failed to open
func (e *FileOpenError) Path() string {
	return e.path
}

// IOFailure wraps a read error together with the operation and offset
type IOFailure struct {
	ApplicationError
	op     string
	offset int64
}

// NewIOFailure creates a read failure for op at offset
func NewIOFailure(op string, offset int64, err error) *IOFailure {
	kind := ReadFailed
	switch {
	case errors.Is(err, fs.ErrClosed):
		kind = HandleClosed
	case errors.Is(err, ErrFileTruncated):
		kind = FileTruncated
	}
	return &IOFailure{
		ApplicationError: ApplicationError{msg: "read failed", err: err, kind: kind},
		op:               op,
		offset:           offset,
	}
}

// Error returns the failure message
func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s at offset %d: %s: %v", e.op, e.offset, e.msg, e.err)
}

// Op returns the operation that failed
func (e *IOFailure) Op() string {
	return e.op
}

// Offset returns the byte offset of the failed read
func (e *IOFailure) Offset() int64 {
	return e.offset
}

// Is matches the sentinel for a closed handle
func (e *IOFailure) Is(target error) bool {
	return target == ErrHandleClosed && e.kind == HandleClosed
}

// NewPanicError converts a recovered panic value into an error
func NewPanicError(task string, value interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf("%s task panicked: %v", task, value),
		kind: TaskPanic,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err, kind: KindOf(err)}
}

// KindOf returns the kind of the first application error in err's chain
func KindOf(err error) ErrorKind {
	var appErr interface{ Kind() ErrorKind }
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return Unknown
}

// IsFileOpenError checks whether err came from opening a file
func IsFileOpenError(err error) bool {
	var openErr *FileOpenError
	return errors.As(err, &openErr)
}

// IsIOFailure checks whether err is a read failure
func IsIOFailure(err error) bool {
	var ioErr *IOFailure
	return errors.As(err, &ioErr)
}

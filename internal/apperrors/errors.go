package apperrors

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned once the run context has been cancelled,
// typically by SIGINT/SIGTERM.
var ErrInterrupted = errors.New("interrupted by a signal")

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewSubtitlesNotFoundError creates a specific error for when a source has no
// subtitles for an episode in the given language.
func NewSubtitlesNotFoundError(language string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "subtitles",
		ID:       language,
	}
}

// ErrNotRecognized is returned when a file name follows none of the supported
// episode naming conventions.
type ErrNotRecognized struct {
	Filename string
	Subtitle bool
}

// Error implements the error interface.
func (e *ErrNotRecognized) Error() string {
	kind := "video"
	if e.Subtitle {
		kind = "subtitles"
	}
	return fmt.Sprintf("%s: this is not a TV show %s file or it has a non-standard file name", e.Filename, kind)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotRecognized) Is(target error) bool {
	_, ok := target.(*ErrNotRecognized)
	return ok
}

// NewNotRecognizedError creates a new ErrNotRecognized.
func NewNotRecognizedError(filename string, subtitle bool) *ErrNotRecognized {
	return &ErrNotRecognized{Filename: filename, Subtitle: subtitle}
}

// ErrFatal marks a condition that is not worth continuing against: malformed
// remote responses, authentication failures, exhausted retries.
type ErrFatal struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ErrFatal) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrFatal) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrFatal) Is(target error) bool {
	_, ok := target.(*ErrFatal)
	return ok
}

// NewFatalError wraps err as fatal for source. A nil err yields nil and an
// error that is already fatal is returned as is.
func NewFatalError(source string, err error) error {
	if err == nil {
		return nil
	}
	var fatal *ErrFatal
	if errors.As(err, &fatal) {
		return err
	}
	return &ErrFatal{Source: source, Err: err}
}

// ErrTransient is a single failed fetch attempt. It is retried and becomes
// fatal once every attempt has failed.
type ErrTransient struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrTransient) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrTransient) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTransient) Is(target error) bool {
	_, ok := target.(*ErrTransient)
	return ok
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, &ErrNotFound{})
}

// IsFatal reports whether err is an ErrFatal.
func IsFatal(err error) bool {
	return errors.Is(err, &ErrFatal{})
}

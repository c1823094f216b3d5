package parser

import (
	"errors"
	"io"
)

// Parser defines a generic interface for parsing one kind of catalog page
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}

// ErrUnexpectedMarkup is returned when a catalog page no longer has the
// structure the parsers expect.
var ErrUnexpectedMarkup = errors.New("failed to parse a server response")

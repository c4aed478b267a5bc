package objinfo

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// StopQuery may be returned from a QueryFunc to end iteration early.  Drivers
// do not report it as an error.
var StopQuery = errors.New("stop query")

// QueryFunc is invoked once for each document matched by a view, in the
// order the database returns them.
type QueryFunc func(Document) error

// Document is one record returned by a view query.  It exposes named
// fields and named binary attachments, and is read-only.
type Document interface {
	HasField(name string) bool

	// Field returns the string value of a field, or "" if absent.
	Field(name string) string

	HasAttachment(name string) bool

	// Attachment opens a stream over the named attachment.
	Attachment(ctx context.Context, name string) (io.ReadCloser, error)
}

// DB is a connection to an object database
type DB interface {

	// Parameters describe the backend flavor and its connection parameters
	Parameters() Params

	// Query executes a view, invoking the callback with each matching document.
	// Iteration ends when the documents are exhausted, or the callback returns
	// an error.  StopQuery ends iteration without error.
	Query(ctx context.Context, v View, f QueryFunc) error
}

// Unconfigured is a DB with no backend set.  Queries always fail with
// ErrNotConfigured.
type Unconfigured struct{}

// Parameters returns an Empty parameter bag
func (Unconfigured) Parameters() Params {
	return Params{}
}

// Query fails with ErrNotConfigured
func (Unconfigured) Query(context.Context, View, QueryFunc) error {
	return ErrNotConfigured
}

// IsStop tells whether an error (possibly wrapped) is StopQuery
func IsStop(err error) bool {
	return err != nil && errors.Cause(err) == StopQuery
}

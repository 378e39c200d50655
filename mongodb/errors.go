package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Common errors returned by this package. Driver errors are normalised to these
// by TranslateError.
var (
	// ErrRecordNotFound is returned when a query matches no document
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write violates a unique index
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrConnectionFailed is returned when the server cannot be reached
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrQueryTimeout is returned when an operation exceeds its deadline
	ErrQueryTimeout = errors.New("query timeout exceeded")

	// ErrNotConnected is returned by persistence calls on a model without a connection
	ErrNotConnected = errors.New("model is not bound to a connection")

	// ErrModelOverwrite is returned when a model name is registered again with another schema
	ErrModelOverwrite = errors.New("cannot overwrite model once compiled")

	// ErrMissingSchema is returned when a model is compiled without a schema
	ErrMissingSchema = errors.New("schema hasn't been registered for model")

	// ErrUnknownMethod is returned by Call for a method the schema does not declare
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidID is returned when a value cannot be used as a document id
	ErrInvalidID = errors.New("invalid object id")

	// ErrValidation is returned when a document misses a required path
	ErrValidation = errors.New("document validation failed")
)

// TranslateError converts MongoDB driver errors into the errors defined by this
// package. Errors it does not recognise are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return ErrQueryTimeout
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err):
		return ErrConnectionFailed
	case errors.Is(err, primitive.ErrInvalidHex):
		return ErrInvalidID
	}
	return err
}

// IsRetryable reports whether an operation that failed with err may succeed when retried.
func IsRetryable(err error) bool {
	translated := TranslateError(err)
	return errors.Is(translated, ErrConnectionFailed) || errors.Is(translated, ErrQueryTimeout)
}

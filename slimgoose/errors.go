package slimgoose

import "errors"

var (
	// ErrNoTestConnection is returned by ResetDefaultForTest when ConnectDefaultForTest was not called.
	ErrNoTestConnection = errors.New("no default test connection")

	// ErrAlreadyConnected is returned by Connect when the default connection is open.
	ErrAlreadyConnected = errors.New("default connection already open")

	// ErrInvalidClass is returned by UseClass for a value that provides nothing to load.
	ErrInvalidClass = errors.New("class provides no methods, statics or static fields")
)

package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOption is returned when a known option is set with a value of the wrong type.
	ErrInvalidOption = errors.New("invalid schema option")

	// ErrInvalidIndex is returned for an empty key list or an unsupported key direction.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrNilPlugin is returned when Plugin is called with nil.
	ErrNilPlugin = errors.New("plugin is nil")

	// ErrUnknownOperation is returned when middleware targets an operation that does not exist.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidMethod is returned for an empty method name or a nil implementation.
	ErrInvalidMethod = errors.New("invalid method")
)

func errOptionType(key string, want string, got any) error {
	return fmt.Errorf("%w: %q expects %s, got %T", ErrInvalidOption, key, want, got)
}

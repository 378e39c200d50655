package hooks

import (
	"fmt"

	"github.com/aalemi-dev/slimgoose/serial"
)

// ErrInvalidInput is returned when a hook or method is nil or a method name is empty.
// It is the same sentinel the serial runner uses.
var ErrInvalidInput = serial.ErrInvalidInput

func errNilHook(name string) error {
	return fmt.Errorf("%w: pre hook for %q is not a function", ErrInvalidInput, name)
}

func errNilMethod(name string) error {
	return fmt.Errorf("%w: method %q is not a function", ErrInvalidInput, name)
}

func errEmptyName() error {
	return fmt.Errorf("%w: method name is empty", ErrInvalidInput)
}

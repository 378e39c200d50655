package serial

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the task list is nil, or when an entry is nil
	// and the run is not fail-soft.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTaskPanic wraps the value recovered from a panicking task.
	ErrTaskPanic = errors.New("task panicked")
)

func errNilTasks() error {
	return fmt.Errorf("%w: requires slice of tasks", ErrInvalidInput)
}

func errNotAFunction(index int) error {
	return fmt.Errorf("%w: task %d is not a function", ErrInvalidInput, index)
}

func errPanic(index int, recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("%w: task %d: %w", ErrTaskPanic, index, err)
	}
	return fmt.Errorf("%w: task %d: %v", ErrTaskPanic, index, recovered)
}

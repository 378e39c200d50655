package serial

import "context"

// Task is one link of a serial run. The returned value is appended to the
// accumulated results; a non-nil error fails the task.
type Task[D any] func(ctx context.Context, tc TaskContext[D]) (any, error)

// TaskContext is what a task receives.
type TaskContext[D any] struct {
	// Index is the position of the task in the run.
	Index int

	// Results holds the values of all earlier tasks, in order, with nil for
	// skipped or failed-but-safe tasks. It is a private copy.
	Results []any

	// Data is a private clone of Options.Data.
	Data D
}

// SkipContext is passed to Options.Skip.
type SkipContext struct {
	Index int
}

// Options controls a run.
type Options[D any] struct {
	// Safe makes the run fail-soft: a failing or nil task contributes nil to the
	// results and the run continues.
	Safe bool

	// Skip, when set, is consulted before each task. A skipped task contributes nil
	// and does not count as a failure.
	Skip func(SkipContext) bool

	// Data is handed to every task, cloned once per task.
	Data D

	// Clone overrides how Data is copied for each task. When nil, a Clone() D method
	// on the data is used if present, otherwise a reflective deep copy.
	Clone func(D) D

	// Name labels the run in logs and observer events.
	Name string

	// Logger receives a warning for every failure swallowed in Safe mode.
	Logger Logger
}

// Logger is the subset of logger.Logger used here.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

package serial

import (
	"context"
	"slices"
	"time"

	"github.com/aalemi-dev/slimgoose/observability"
)

// Runner executes task lists one task at a time. The zero value is ready to use;
// an Observer can be attached with WithObserver.
type Runner struct {
	observer observability.Observer
}

// WithObserver attaches an observer notified once per run.
func (r *Runner) WithObserver(observer observability.Observer) *Runner {
	r.observer = observer
	return r
}

// Run executes tasks strictly in order with the default Runner.
//
// Example:
//
//	urls := []string{"url1", "url2", "url3"}
//	tasks := make([]serial.Task[any], len(urls))
//	for i, u := range urls {
//	    tasks[i] = func(ctx context.Context, _ serial.TaskContext[any]) (any, error) { return u, nil }
//	}
//	results, err := serial.Run(ctx, tasks, serial.Options[any]{})
//	// results == []any{"url1", "url2", "url3"}
func Run[D any](ctx context.Context, tasks []Task[D], opts Options[D]) ([]any, error) {
	return RunWith(ctx, nil, tasks, opts)
}

// RunWith is Run with an explicit Runner, whose observer (if any) sees the run.
//
// Task N+1 starts only after task N has returned. Each task gets a fresh copy
// of the results so far and a fresh clone of opts.Data.
//
// In strict mode the first failing task ends the run and its error is returned
// unchanged together with the results gathered before it. In Safe mode failures
// become nil results. The context is checked between tasks; a running task is
// never interrupted.
func RunWith[D any](ctx context.Context, r *Runner, tasks []Task[D], opts Options[D]) (results []any, err error) {
	if tasks == nil {
		return nil, errNilTasks()
	}

	start := time.Now()
	var skipped, failed int
	defer func() {
		r.observe(opts.Name, len(tasks), skipped, failed, time.Since(start), err)
	}()

	results = make([]any, 0, len(tasks))
	clone := cloner(opts)

	for index, task := range tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if opts.Skip != nil && opts.Skip(SkipContext{Index: index}) {
			skipped++
			results = append(results, nil)
			continue
		}

		if task == nil {
			if !opts.Safe {
				return results, errNotAFunction(index)
			}
			failed++
			logWarn(ctx, opts, "skipping nil task in fail-soft run", nil, index)
			results = append(results, nil)
			continue
		}

		value, taskErr := invoke(ctx, task, TaskContext[D]{
			Index:   index,
			Results: slices.Clone(results),
			Data:    clone(opts.Data),
		}, index)
		if taskErr != nil {
			if !opts.Safe {
				return results, taskErr
			}
			failed++
			logWarn(ctx, opts, "task failed in fail-soft run, continuing", taskErr, index)
			results = append(results, nil)
			continue
		}

		results = append(results, value)
	}

	return results, nil
}

// invoke runs a single task and turns a panic into an error.
func invoke[D any](ctx context.Context, task Task[D], tc TaskContext[D], index int) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			value, err = nil, errPanic(index, recovered)
		}
	}()
	return task(ctx, tc)
}

func cloner[D any](opts Options[D]) func(D) D {
	if opts.Clone != nil {
		return opts.Clone
	}
	return func(data D) D {
		if c, ok := any(data).(interface{ Clone() D }); ok {
			return c.Clone()
		}
		copied, ok := CloneValue(data).(D)
		if !ok {
			// nil interfaces have nothing to copy
			return data
		}
		return copied
	}
}

func logWarn[D any](ctx context.Context, opts Options[D], msg string, err error, index int) {
	if opts.Logger == nil {
		return
	}
	opts.Logger.WarnWithContext(ctx, msg, err, map[string]interface{}{
		"run":   opts.Name,
		"index": index,
	})
}

func (r *Runner) observe(name string, size, skipped, failed int, duration time.Duration, err error) {
	if r == nil || r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component: "serial",
		Operation: "run",
		Resource:  name,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
		Metadata: map[string]interface{}{
			"skipped": skipped,
			"failed":  failed,
		},
	})
}

// Package serial runs an ordered list of tasks one at a time.
//
// Each task sees the results of every task before it and its own clone of a
// shared data value, so a task may depend on the side effects and return values
// of its predecessors but cannot corrupt what later tasks receive. Tasks never run
// concurrently: task N+1 starts only after task N has returned.
//
// # Failure modes
//
// Strict (default): the first failing task stops the run and its error is
// returned as is. Tasks after it do not run.
//
// Fail-soft (Options.Safe): a failing task, a panicking task or a nil entry
// contributes nil to the results and the run continues. Swallowed errors are
// logged at warning level when a Logger is set.
//
// Skipping: Options.Skip is asked before every task; a skipped task contributes
// nil and is not a failure.
//
// # Data cloning
//
// Options.Data is cloned before every task. Types can control this by
// implementing Clone() D; otherwise CloneValue is used. It deep-copies maps,
// slices and exported fields with github.com/mohae/deepcopy, keeps unexported
// fields by value and shares functions and channels.
//
//	results, err := serial.Run(ctx, []serial.Task[map[string]any]{
//	    func(ctx context.Context, tc serial.TaskContext[map[string]any]) (any, error) {
//	        tc.Data["seen"] = true // not visible to the next task
//	        return tc.Data["user"], nil
//	    },
//	    func(ctx context.Context, tc serial.TaskContext[map[string]any]) (any, error) {
//	        return fmt.Sprintf("after %v", tc.Results[0]), nil
//	    },
//	}, serial.Options[map[string]any]{Data: map[string]any{"user": "ada"}})
package serial

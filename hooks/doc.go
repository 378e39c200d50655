// Package hooks intercepts named methods with ordered chains of pre hooks.
//
// A Registry holds, for one Kind (Instance or Static), a chain of hooks per method
// name. Decorate wraps a Method so that each call first runs the chain for its
// name through the serial runner and then calls the original method.
//
// Each hook receives the results of the hooks before it and a Data value with the
// method name, the receiver and the current arguments. A hook replaces the
// arguments seen by the following hooks and by the method with
// Data.SetNewArguments. Return values only feed Results unless
// WithReturnedArguments is enabled.
//
// # Failure handling
//
// In strict mode (the default) the first failing hook aborts the call and its error
// is returned unchanged; the method does not run. WithSafe(true) swallows hook
// failures. Errors returned by the method itself are never touched.
//
//	reg := hooks.NewRegistry(hooks.Instance)
//	_ = reg.Register("rename", func(ctx context.Context, hc hooks.Context) (any, error) {
//	    hc.Data.SetNewArguments(strings.TrimSpace(hc.Data.Args[0].(string)))
//	    return nil, nil
//	})
//	rename, _ := reg.Decorate("rename", func(ctx context.Context, self any, args ...any) (any, error) {
//	    self.(*mongodb.Document).Set("name", args[0])
//	    return nil, nil
//	})
//
// Chains are looked up at call time, so hooks registered after Decorate still run.
// Hooks of one call never run concurrently; separate calls share nothing but the
// registered chains.
package hooks

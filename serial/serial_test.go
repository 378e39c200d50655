package serial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aalemi-dev/slimgoose/logger"
	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func constTasks(values ...string) []Task[any] {
	tasks := make([]Task[any], len(values))
	for i, v := range values {
		tasks[i] = func(context.Context, TaskContext[any]) (any, error) { return v, nil }
	}
	return tasks
}

func TestRun_ResolvesInOrder(t *testing.T) {
	t.Parallel()
	results, err := Run(context.Background(), constTasks("url1", "url2", "url3"), Options[any]{})
	require.NoError(t, err)
	assert.Equal(t, []any{"url1", "url2", "url3"}, results)
}

func TestRun_InvokesStrictlyInOrder(t *testing.T) {
	t.Parallel()
	var order []int
	tasks := make([]Task[any], 10)
	for i := range tasks {
		tasks[i] = func(_ context.Context, tc TaskContext[any]) (any, error) {
			order = append(order, tc.Index)
			return nil, nil
		}
	}

	_, err := Run(context.Background(), tasks, Options[any]{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()
	for name, opts := range map[string]Options[any]{
		"no options": {},
		"safe":       {Safe: true},
		"skip all":   {Skip: func(SkipContext) bool { return true }},
	} {
		t.Run(name, func(t *testing.T) {
			results, err := Run(context.Background(), []Task[any]{}, opts)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestRun_NilTasks(t *testing.T) {
	t.Parallel()
	results, err := Run[any](context.Background(), nil, Options[any]{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "requires slice of tasks")
	assert.Nil(t, results)
}

func TestRun_Skip(t *testing.T) {
	t.Parallel()
	results, err := Run(context.Background(), constTasks("url1", "url2", "url3"), Options[any]{
		Skip: func(sc SkipContext) bool { return sc.Index == 1 },
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"url1", nil, "url3"}, results)
}

func TestRun_SkippedTaskIsNotInvoked(t *testing.T) {
	t.Parallel()
	called := false
	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { called = true; return nil, nil },
	}
	_, err := Run(context.Background(), tasks, Options[any]{Skip: func(SkipContext) bool { return true }})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRun_SafeSwallowsFailures(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { return "Hello", nil },
		func(context.Context, TaskContext[any]) (any, error) { return nil, errors.New("second failed") },
		func(context.Context, TaskContext[any]) (any, error) { return "world!", nil },
	}

	results, err := Run(context.Background(), tasks, Options[any]{
		Safe:   true,
		Name:   "greeting",
		Logger: logger.NewFromZap(zap.New(core), false),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"Hello", nil, "world!"}, results)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "second failed", logs.All()[0].ContextMap()["error"])
	assert.EqualValues(t, 1, logs.All()[0].ContextMap()["index"])
}

func TestRun_StrictStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	failure := errors.New("second failed")
	reachedEnd := false
	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { return "first", nil },
		func(context.Context, TaskContext[any]) (any, error) { return nil, failure },
		func(context.Context, TaskContext[any]) (any, error) { reachedEnd = true; return nil, nil },
	}

	results, err := Run(context.Background(), tasks, Options[any]{})
	assert.Same(t, failure, err)
	assert.False(t, reachedEnd)
	assert.Equal(t, []any{"first"}, results)
}

func TestRun_NilEntry(t *testing.T) {
	t.Parallel()
	tasks := append(constTasks("a"), nil)
	tasks = append(tasks, constTasks("c")...)

	_, err := Run(context.Background(), tasks, Options[any]{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "task 1 is not a function")

	results, err := Run(context.Background(), tasks, Options[any]{Safe: true})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil, "c"}, results)
}

func TestRun_PanicIsAFailure(t *testing.T) {
	t.Parallel()
	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { panic("kaboom") },
		func(context.Context, TaskContext[any]) (any, error) { return "after", nil },
	}

	_, err := Run(context.Background(), tasks, Options[any]{})
	assert.ErrorIs(t, err, ErrTaskPanic)
	assert.Contains(t, err.Error(), "kaboom")

	results, err := Run(context.Background(), tasks, Options[any]{Safe: true})
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "after"}, results)
}

func TestRun_PassesDataAndPreviousResults(t *testing.T) {
	t.Parallel()
	type call struct {
		results []any
		data    map[string]any
	}
	var calls []call

	urls := []string{"url1", "url2", "url3", "url4", "url5", "url6"}
	tasks := make([]Task[map[string]any], len(urls))
	for i, u := range urls {
		tasks[i] = func(_ context.Context, tc TaskContext[map[string]any]) (any, error) {
			calls = append(calls, call{
				results: append([]any(nil), tc.Results...),
				data:    copyMap(tc.Data),
			})
			// neither of these mutations may leak into the next task
			if u == "url3" {
				tc.Data["cool3"] = 42
			}
			if u == "url5" {
				tc.Results = append(tc.Results[:2], append([]any{"my5"}, tc.Results[2:]...)...)
			}
			return u + "!", nil
		}
	}

	data := map[string]any{"foo": "bar"}
	results, err := Run(context.Background(), tasks, Options[map[string]any]{Data: data})
	require.NoError(t, err)

	assert.Equal(t, []any{"url1!", "url2!", "url3!", "url4!", "url5!", "url6!"}, results)
	assert.Equal(t, map[string]any{"foo": "bar"}, data)

	require.Len(t, calls, 6)
	assert.Empty(t, calls[0].results)
	assert.Equal(t, []any{"url1!"}, calls[1].results)
	assert.Equal(t, []any{"url1!", "url2!", "url3!", "url4!"}, calls[4].results)
	assert.Equal(t, []any{"url1!", "url2!", "url3!", "url4!", "url5!"}, calls[5].results)
	for i, c := range calls {
		assert.Equal(t, map[string]any{"foo": "bar"}, c.data, "task %d", i)
	}
}

type counterData struct {
	seen *int
	n    int
}

func (c counterData) Clone() counterData {
	*c.seen++
	return counterData{seen: c.seen, n: c.n}
}

func TestRun_UsesCloneMethod(t *testing.T) {
	t.Parallel()
	seen := 0
	_, err := Run(context.Background(), []Task[counterData]{
		func(context.Context, TaskContext[counterData]) (any, error) { return nil, nil },
		func(context.Context, TaskContext[counterData]) (any, error) { return nil, nil },
	}, Options[counterData]{Data: counterData{seen: &seen}})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

type account struct {
	Name   string
	Tags   []string
	secret string
}

func TestRun_DefaultCloneKeepsUnexportedFields(t *testing.T) {
	t.Parallel()
	var seen []account
	task := func(_ context.Context, tc TaskContext[account]) (any, error) {
		seen = append(seen, tc.Data)
		tc.Data.Tags[0] = "changed"
		return tc.Data.secret, nil
	}
	data := account{Name: "ada", Tags: []string{"admin"}, secret: "s"}

	results, err := Run(context.Background(), []Task[account]{task, task}, Options[account]{Data: data})
	require.NoError(t, err)
	assert.Equal(t, []any{"s", "s"}, results)
	require.Len(t, seen, 2)
	assert.Equal(t, "s", seen[1].secret)
	assert.Equal(t, "admin", data.Tags[0])
}

func TestRun_DefaultCloneOfStructPointer(t *testing.T) {
	t.Parallel()
	data := &account{Name: "ada", Tags: []string{"admin"}, secret: "s"}
	results, err := Run(context.Background(), []Task[*account]{
		func(_ context.Context, tc TaskContext[*account]) (any, error) { return tc.Data.secret, nil },
	}, Options[*account]{Data: data})
	require.NoError(t, err)
	assert.Equal(t, []any{"s"}, results)
}

func TestCloneValue(t *testing.T) {
	t.Parallel()
	nested := map[string]any{"tags": []string{"a"}}
	copied := CloneValue(nested).(map[string]any)
	copied["tags"].([]string)[0] = "b"
	assert.Equal(t, []string{"a"}, nested["tags"])

	acc := account{Name: "ada", Tags: []string{"x"}, secret: "s"}
	accCopy := CloneValue(acc).(account)
	accCopy.Tags[0] = "y"
	assert.Equal(t, "s", accCopy.secret)
	assert.Equal(t, []string{"x"}, acc.Tags)

	assert.Nil(t, CloneValue(nil))
}

func TestRun_UsesCloneOption(t *testing.T) {
	t.Parallel()
	var received []int
	_, err := Run(context.Background(), []Task[int]{
		func(_ context.Context, tc TaskContext[int]) (any, error) { received = append(received, tc.Data); return nil, nil },
		func(_ context.Context, tc TaskContext[int]) (any, error) { received = append(received, tc.Data); return nil, nil },
	}, Options[int]{Data: 1, Clone: func(d int) int { return d * 10 }})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10}, received)
}

func TestRun_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	ranSecond := false
	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { cancel(); return "first", nil },
		func(context.Context, TaskContext[any]) (any, error) { ranSecond = true; return nil, nil },
	}

	results, err := Run(ctx, tasks, Options[any]{Safe: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ranSecond)
	assert.Equal(t, []any{"first"}, results)
}

func TestRun_IndependentConcurrentRuns(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			tasks := make([]Task[any], 5)
			for j := range tasks {
				tasks[j] = func(_ context.Context, tc TaskContext[any]) (any, error) {
					// results only ever contain this run's values
					for _, r := range tc.Results {
						if !strings.HasPrefix(r.(string), fmt.Sprintf("%d-", run)) {
							return nil, fmt.Errorf("foreign result %v", r)
						}
					}
					return fmt.Sprintf("%d-%d", run, tc.Index), nil
				}
			}
			results, err := Run(context.Background(), tasks, Options[any]{})
			assert.NoError(t, err)
			assert.Len(t, results, 5)
		}(i)
	}
	wg.Wait()
}

func TestRunWith_NotifiesObserver(t *testing.T) {
	t.Parallel()
	var events []observability.OperationContext
	r := (&Runner{}).WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		events = append(events, op)
	}))

	tasks := []Task[any]{
		func(context.Context, TaskContext[any]) (any, error) { return nil, errors.New("x") },
		func(context.Context, TaskContext[any]) (any, error) { return 1, nil },
		func(context.Context, TaskContext[any]) (any, error) { return 2, nil },
	}
	_, err := RunWith(context.Background(), r, tasks, Options[any]{
		Safe: true,
		Name: "save",
		Skip: func(sc SkipContext) bool { return sc.Index == 2 },
	})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "serial", events[0].Component)
	assert.Equal(t, "run", events[0].Operation)
	assert.Equal(t, "save", events[0].Resource)
	assert.EqualValues(t, 3, events[0].Size)
	assert.Equal(t, 1, events[0].Metadata["failed"])
	assert.Equal(t, 1, events[0].Metadata["skipped"])
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

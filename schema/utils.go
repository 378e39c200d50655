package schema

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// KnownOperation reports whether middleware can be attached to op.
func KnownOperation(op Operation) bool {
	for _, known := range Operations {
		if op == known {
			return true
		}
	}
	return false
}

func checkMethod(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMethod)
	}
	if fn == nil {
		return fmt.Errorf("%w: %q is not a function", ErrInvalidMethod, name)
	}
	return nil
}

func validDirection(v any) bool {
	switch d := v.(type) {
	case int:
		return d == 1 || d == -1
	case int32:
		return d == 1 || d == -1
	case int64:
		return d == 1 || d == -1
	case string:
		return d == "text" || d == "2dsphere" || d == "hashed"
	}
	return false
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	copied, ok := deepcopy.Copy(m).(map[string]any)
	if !ok {
		return make(map[string]any)
	}
	return copied
}

func copyChains(chains map[Operation][]Middleware) map[Operation][]Middleware {
	out := make(map[Operation][]Middleware, len(chains))
	for op, chain := range chains {
		out[op] = append([]Middleware(nil), chain...)
	}
	return out
}

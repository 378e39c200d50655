package serial

import (
	"reflect"

	"github.com/mohae/deepcopy"
)

// CloneValue returns a deep copy of v. Maps, slices and exported struct fields
// are copied with github.com/mohae/deepcopy. Unexported struct fields are kept
// by value, and pointers to structs with unexported fields are shared, since
// such values (documents, models, clients) can only be copied by their owner.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Struct:
		return cloneStruct(rv).Interface()
	case rv.Kind() == reflect.Pointer && rv.Type().Elem().Kind() == reflect.Struct && hasUnexported(rv.Type().Elem()):
		return v
	}
	return deepcopy.Copy(v)
}

func cloneStruct(rv reflect.Value) reflect.Value {
	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)
	for i := 0; i < rv.NumField(); i++ {
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		field := rv.Field(i)
		copied := CloneValue(field.Interface())
		if copied == nil {
			continue
		}
		out.Field(i).Set(reflect.ValueOf(copied))
	}
	return out
}

func hasUnexported(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

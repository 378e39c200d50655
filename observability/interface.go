package observability

import "time"

// Observer receives one event per completed operation from the slimgoose packages
// (serial runs, decorated method calls, database operations, test servers).
//
// Observers are optional. Every package works without one.
type Observer interface {
	// ObserveOperation is called when an operation completes, successfully or not.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a completed operation.
type OperationContext struct {
	// Component identifies the emitting package.
	// Examples: "serial", "hooks", "mongodb", "testdb"
	Component string

	// Operation describes what was done.
	// Examples:
	//   serial:  "run"
	//   hooks:   "invoke"
	//   mongodb: "insert", "find", "find_one", "update_one", "delete_one", "count", "create_indexes"
	Operation string

	// Resource identifies the primary resource.
	// Examples:
	//   hooks:   method name ("getMyUsernameById")
	//   mongodb: collection name ("users")
	Resource string

	// SubResource adds secondary context (optional).
	// Examples:
	//   hooks:   hook kind ("instance", "static")
	//   mongodb: database name
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the error returned by the operation, if any.
	Error error

	// Size is an operation specific count: tasks in a chain, documents returned,
	// documents modified.
	Size int64

	// Metadata carries anything that does not fit the fields above.
	Metadata map[string]interface{}
}

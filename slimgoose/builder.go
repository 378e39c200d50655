package slimgoose

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/aalemi-dev/slimgoose/hooks"
	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/selector"
	"go.mongodb.org/mongo-driver/bson"
)

// MethodProvider supplies instance methods to UseClass.
type MethodProvider interface {
	Methods() map[string]hooks.Method
}

// StaticProvider supplies static methods to UseClass.
type StaticProvider interface {
	StaticMethods() map[string]hooks.Method
}

// StaticFieldProvider supplies static fields to UseClass.
type StaticFieldProvider interface {
	StaticFields() map[string]any
}

// RunContext is handed to the callback of SchemaBuilder.Run.
type RunContext struct {
	Schema    *schema.Schema
	Driver    selector.Driver
	Slimgoose *Slimgoose
}

// SchemaBuilder configures a schema fluently and compiles it into models.
//
// Every method registered through Methods, StaticMethods or UseClass is wrapped
// so that calling it first runs the pre hooks registered for its name with
// PreMethods or PreStaticMethods; the schema never holds the raw function.
// Methods a plugin or a Run callback installs on the schema directly are
// wrapped the same way once the plugin or callback returns.
//
// Calls return the builder. The first failing call is remembered: later calls
// still apply, and the error is reported by Err, ToModel and ToModelWithConnection.
// A builder is not safe for concurrent configuration.
type SchemaBuilder struct {
	sg     *Slimgoose
	schema *schema.Schema

	instanceHooks *hooks.Registry
	staticHooks   *hooks.Registry

	// raw implementations, kept so a clone can decorate them with its own registries
	methods map[string]hooks.Method
	statics map[string]hooks.Method

	err error
}

func newSchemaBuilder(sg *Slimgoose, def schema.Definition, opts ...schema.Option) *SchemaBuilder {
	all := append([]schema.Option{schema.WithTimestamps(true)}, opts...)
	return &SchemaBuilder{
		sg:            sg,
		schema:        schema.New(def, all...),
		instanceHooks: sg.newRegistry(hooks.Instance),
		staticHooks:   sg.newRegistry(hooks.Static),
		methods:       make(map[string]hooks.Method),
		statics:       make(map[string]hooks.Method),
	}
}

func (s *Slimgoose) newRegistry(kind hooks.Kind) *hooks.Registry {
	r := hooks.NewRegistry(kind).
		WithSafe(s.hooks.Safe).
		WithReturnedArguments(s.hooks.ReturnedArguments)
	if s.logger != nil {
		r.WithLogger(s.logger)
	}
	if s.observer != nil {
		r.WithObserver(s.observer)
	}
	if s.tracer != nil {
		r.WithTracer(s.tracer)
	}
	return r
}

// Methods adds instance methods, each wrapped by its pre-hook chain.
func (b *SchemaBuilder) Methods(methods map[string]hooks.Method) *SchemaBuilder {
	for _, name := range slices.Sorted(maps.Keys(methods)) {
		b.addMethod(b.instanceHooks, b.methods, b.schema.Method, name, methods[name])
	}
	return b
}

// StaticMethods adds static methods, each wrapped by its pre-hook chain.
func (b *SchemaBuilder) StaticMethods(methods map[string]hooks.Method) *SchemaBuilder {
	for _, name := range slices.Sorted(maps.Keys(methods)) {
		b.addMethod(b.staticHooks, b.statics, b.schema.Static, name, methods[name])
	}
	return b
}

func (b *SchemaBuilder) addMethod(reg *hooks.Registry, raw map[string]hooks.Method, install func(string, schema.Func) error, name string, fn hooks.Method) {
	decorated, err := reg.Decorate(name, fn)
	if err != nil {
		b.reject(fmt.Sprintf("%s method rejected", reg.Kind()), err)
		return
	}
	if err := install(name, schema.Func(decorated)); err != nil {
		b.reject(fmt.Sprintf("%s method rejected", reg.Kind()), err)
		return
	}
	raw[name] = fn
}

// StaticFields sets values exposed on compiled models.
func (b *SchemaBuilder) StaticFields(fields map[string]any) *SchemaBuilder {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		b.record(b.schema.StaticField(name, fields[name]))
	}
	return b
}

// PreMethods registers pre hooks for instance methods, appended to any chain
// already registered under the same name.
func (b *SchemaBuilder) PreMethods(hooksByName map[string]hooks.Hook) *SchemaBuilder {
	b.registerHooks(b.instanceHooks, hooksByName)
	return b
}

// PreStaticMethods registers pre hooks for static methods.
func (b *SchemaBuilder) PreStaticMethods(hooksByName map[string]hooks.Hook) *SchemaBuilder {
	b.registerHooks(b.staticHooks, hooksByName)
	return b
}

func (b *SchemaBuilder) registerHooks(reg *hooks.Registry, hooksByName map[string]hooks.Hook) {
	for _, name := range slices.Sorted(maps.Keys(hooksByName)) {
		if err := reg.Register(name, hooksByName[name]); err != nil {
			b.reject(fmt.Sprintf("%s pre hook rejected", reg.Kind()), err)
		}
	}
}

// UseClass loads whatever class provides: instance methods from a
// MethodProvider, static methods from a StaticProvider and static fields from
// a StaticFieldProvider.
func (b *SchemaBuilder) UseClass(class any) *SchemaBuilder {
	loaded := false
	if p, ok := class.(MethodProvider); ok {
		b.Methods(p.Methods())
		loaded = true
	}
	if p, ok := class.(StaticProvider); ok {
		b.StaticMethods(p.StaticMethods())
		loaded = true
	}
	if p, ok := class.(StaticFieldProvider); ok {
		b.StaticFields(p.StaticFields())
		loaded = true
	}
	if !loaded {
		b.record(fmt.Errorf("%w: %T", ErrInvalidClass, class))
	}
	return b
}

// SetOption sets a schema option.
func (b *SchemaBuilder) SetOption(key string, value any) *SchemaBuilder {
	b.record(b.schema.Set(key, value))
	return b
}

// Index declares an index. Only the first IndexOptions value is used.
func (b *SchemaBuilder) Index(keys bson.D, opts ...schema.IndexOptions) *SchemaBuilder {
	var o schema.IndexOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	b.record(b.schema.Index(keys, o))
	return b
}

// Plugin applies a plugin to the schema. Methods the plugin adds or replaces
// are wrapped by their pre-hook chains.
func (b *SchemaBuilder) Plugin(p schema.Plugin, opts map[string]any) *SchemaBuilder {
	b.adoptMethods(func() {
		b.record(b.schema.Plugin(p, opts))
	})
	return b
}

// Pre attaches middleware that runs before op.
func (b *SchemaBuilder) Pre(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	b.record(b.schema.Pre(op, mw))
	return b
}

// Post attaches middleware that runs after op.
func (b *SchemaBuilder) Post(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	b.record(b.schema.Post(op, mw))
	return b
}

// PreDoc is Pre, named for document operations.
func (b *SchemaBuilder) PreDoc(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	return b.Pre(op, mw)
}

// PostDoc is Post, named for document operations.
func (b *SchemaBuilder) PostDoc(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	return b.Post(op, mw)
}

// PreQuery is Pre, named for query operations.
func (b *SchemaBuilder) PreQuery(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	return b.Pre(op, mw)
}

// PostQuery is Post, named for query operations.
func (b *SchemaBuilder) PostQuery(op schema.Operation, mw schema.Middleware) *SchemaBuilder {
	return b.Post(op, mw)
}

// Run calls callback with the schema and the selected driver, for configuration
// the builder does not cover. Methods the callback installs on the schema are
// wrapped by their pre-hook chains.
func (b *SchemaBuilder) Run(callback func(RunContext)) *SchemaBuilder {
	if callback == nil {
		return b
	}
	b.adoptMethods(func() {
		callback(RunContext{Schema: b.schema, Driver: b.sg.Driver(), Slimgoose: b.sg})
	})
	return b
}

// adoptMethods runs apply and decorates every method it added to or replaced on
// the schema.
func (b *SchemaBuilder) adoptMethods(apply func()) {
	methods, statics := funcPointers(b.schema.Methods()), funcPointers(b.schema.Statics())
	apply()
	b.adopt(b.instanceHooks, b.methods, b.schema.Method, methods, b.schema.Methods())
	b.adopt(b.staticHooks, b.statics, b.schema.Static, statics, b.schema.Statics())
}

func (b *SchemaBuilder) adopt(reg *hooks.Registry, raw map[string]hooks.Method, install func(string, schema.Func) error, before map[string]uintptr, after map[string]schema.Func) {
	for _, name := range slices.Sorted(maps.Keys(after)) {
		fn := after[name]
		if p, ok := before[name]; ok && p == reflect.ValueOf(fn).Pointer() {
			continue
		}
		b.addMethod(reg, raw, install, name, hooks.Method(fn))
	}
}

func funcPointers(fns map[string]schema.Func) map[string]uintptr {
	out := make(map[string]uintptr, len(fns))
	for name, fn := range fns {
		out[name] = reflect.ValueOf(fn).Pointer()
	}
	return out
}

// Clone returns an independent builder: its schema and both hook registries
// are copies, and its methods are wrapped by the copied registries.
func (b *SchemaBuilder) Clone() *SchemaBuilder {
	c := &SchemaBuilder{
		sg:            b.sg,
		schema:        b.schema.Clone(),
		instanceHooks: b.instanceHooks.Clone(),
		staticHooks:   b.staticHooks.Clone(),
		methods:       make(map[string]hooks.Method, len(b.methods)),
		statics:       make(map[string]hooks.Method, len(b.statics)),
		err:           b.err,
	}
	for _, name := range slices.Sorted(maps.Keys(b.methods)) {
		c.addMethod(c.instanceHooks, c.methods, c.schema.Method, name, b.methods[name])
	}
	for _, name := range slices.Sorted(maps.Keys(b.statics)) {
		c.addMethod(c.staticHooks, c.statics, c.schema.Static, name, b.statics[name])
	}
	return c
}

// Err returns the first error recorded by a configuration call.
func (b *SchemaBuilder) Err() error {
	return b.err
}

// Schema returns the schema being built.
func (b *SchemaBuilder) Schema() *schema.Schema {
	return b.schema
}

// InstanceHooks returns the pre-hook registry of instance methods.
func (b *SchemaBuilder) InstanceHooks() *hooks.Registry {
	return b.instanceHooks
}

// StaticHooks returns the pre-hook registry of static methods.
func (b *SchemaBuilder) StaticHooks() *hooks.Registry {
	return b.staticHooks
}

// ToModel compiles a copy of the schema under name on the default connection.
// Before Connect the model is unbound: its methods work and persistence
// returns mongodb.ErrNotConnected.
func (b *SchemaBuilder) ToModel(ctx context.Context, name string) (*mongodb.Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	conn := b.sg.Connection()
	if conn == nil {
		return mongodb.NewModel(name, b.schema.Clone(), nil)
	}
	return conn.Model(ctx, name, b.schema.Clone())
}

// ToModelWithConnection compiles a copy of the schema under name on conn.
func (b *SchemaBuilder) ToModelWithConnection(ctx context.Context, name string, conn *mongodb.Mongo) (*mongodb.Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	if conn == nil {
		return nil, mongodb.ErrNotConnected
	}
	return conn.Model(ctx, name, b.schema.Clone())
}

// record remembers err if it is the first one.
func (b *SchemaBuilder) record(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// reject handles an invalid method or hook: skipped with a warning in safe
// mode, recorded otherwise.
func (b *SchemaBuilder) reject(msg string, err error) {
	if b.sg.hooks.Safe {
		b.sg.logWarn(context.Background(), msg, err)
		return
	}
	b.record(err)
}

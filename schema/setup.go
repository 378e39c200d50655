package schema

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/mohae/deepcopy"
	"go.mongodb.org/mongo-driver/bson"
)

// Schema describes the documents of one model: their paths, options, indexes,
// methods and middleware. It is safe for concurrent use.
type Schema struct {
	mu sync.RWMutex

	definition Definition
	options    Options
	extra      map[string]any

	indexes []IndexSpec
	plugins []PluginEntry

	methods      map[string]Func
	statics      map[string]Func
	staticFields map[string]any

	pre  map[Operation][]Middleware
	post map[Operation][]Middleware
}

// DefaultOptions returns the options a schema starts with.
func DefaultOptions() Options {
	return Options{
		Strict:     true,
		AutoIndex:  true,
		VersionKey: DefaultVersionKey,
	}
}

// New creates a schema from a definition. The definition is copied.
func New(def Definition, opts ...Option) *Schema {
	options := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	definition := make(Definition, len(def))
	for name, field := range def {
		if field.Type == "" {
			field.Type = Mixed
		}
		definition[name] = field
	}

	return &Schema{
		definition:   definition,
		options:      options,
		extra:        make(map[string]any),
		methods:      make(map[string]Func),
		statics:      make(map[string]Func),
		staticFields: make(map[string]any),
		pre:          make(map[Operation][]Middleware),
		post:         make(map[Operation][]Middleware),
	}
}

// Set configures an option. Known keys are type checked; any other key is stored as is.
func (s *Schema) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case OptionTimestamps:
		v, ok := value.(bool)
		if !ok {
			return errOptionType(key, "bool", value)
		}
		s.options.Timestamps = v
	case OptionStrict:
		v, ok := value.(bool)
		if !ok {
			return errOptionType(key, "bool", value)
		}
		s.options.Strict = v
	case OptionAutoIndex:
		v, ok := value.(bool)
		if !ok {
			return errOptionType(key, "bool", value)
		}
		s.options.AutoIndex = v
	case OptionCollection:
		v, ok := value.(string)
		if !ok {
			return errOptionType(key, "string", value)
		}
		s.options.Collection = v
	case OptionVersionKey:
		switch v := value.(type) {
		case string:
			s.options.VersionKey = v
		case bool:
			// false disables versioning, true restores the default key
			if v {
				s.options.VersionKey = DefaultVersionKey
			} else {
				s.options.VersionKey = ""
			}
		default:
			return errOptionType(key, "string or bool", value)
		}
	case "":
		return fmt.Errorf("%w: empty key", ErrInvalidOption)
	default:
		s.extra[key] = value
	}
	return nil
}

// Get returns the value of an option and whether it is set.
func (s *Schema) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case OptionTimestamps:
		return s.options.Timestamps, true
	case OptionStrict:
		return s.options.Strict, true
	case OptionAutoIndex:
		return s.options.AutoIndex, true
	case OptionCollection:
		return s.options.Collection, s.options.Collection != ""
	case OptionVersionKey:
		return s.options.VersionKey, true
	}
	v, ok := s.extra[key]
	return v, ok
}

// Options returns a copy of the typed options.
func (s *Schema) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// Field returns the declaration of a path. Implicit paths are reported too.
func (s *Schema) Field(name string) (Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.definition[name]; ok {
		return f, true
	}
	switch name {
	case IDPath:
		return Field{Type: ObjectID}, true
	case CreatedAtPath, UpdatedAtPath:
		if s.options.Timestamps {
			return Field{Type: Date}, true
		}
	}
	if name != "" && name == s.options.VersionKey {
		return Field{Type: Number}, true
	}
	return Field{}, false
}

// Paths returns every path of the schema, implicit ones included, sorted.
func (s *Schema) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.definition)+4)
	for name := range s.definition {
		paths = append(paths, name)
	}
	if _, ok := s.definition[IDPath]; !ok {
		paths = append(paths, IDPath)
	}
	if s.options.Timestamps {
		paths = append(paths, CreatedAtPath, UpdatedAtPath)
	}
	if s.options.VersionKey != "" {
		paths = append(paths, s.options.VersionKey)
	}
	sort.Strings(paths)
	return paths
}

// Index declares an index over one or more paths. Key directions must be 1 or -1,
// or one of "text", "2dsphere" and "hashed".
func (s *Schema) Index(keys bson.D, opts IndexOptions) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys", ErrInvalidIndex)
	}
	for _, key := range keys {
		if key.Key == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidIndex)
		}
		if !validDirection(key.Value) {
			return fmt.Errorf("%w: unsupported direction %v for %q", ErrInvalidIndex, key.Value, key.Key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes = append(s.indexes, IndexSpec{Keys: append(bson.D(nil), keys...), Options: opts})
	return nil
}

// Indexes returns the declared indexes followed by the ones implied by field
// Index and Unique flags, in path order.
func (s *Schema) Indexes() []IndexSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	specs := make([]IndexSpec, 0, len(s.indexes))
	for _, spec := range s.indexes {
		specs = append(specs, IndexSpec{Keys: append(bson.D(nil), spec.Keys...), Options: spec.Options})
	}

	names := make([]string, 0, len(s.definition))
	for name := range s.definition {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field := s.definition[name]
		if !field.Index && !field.Unique {
			continue
		}
		specs = append(specs, IndexSpec{
			Keys:    bson.D{{Key: name, Value: 1}},
			Options: IndexOptions{Unique: field.Unique},
		})
	}
	return specs
}

// Plugin applies p to the schema right away and records it.
func (s *Schema) Plugin(p Plugin, opts map[string]any) error {
	if p == nil {
		return ErrNilPlugin
	}
	if err := p(s, opts); err != nil {
		return fmt.Errorf("plugin failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plugins = append(s.plugins, PluginEntry{Plugin: p, Options: maps.Clone(opts)})
	return nil
}

// Plugins returns the attached plugins in order.
func (s *Schema) Plugins() []PluginEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PluginEntry(nil), s.plugins...)
}

// Method registers an instance method. A later registration replaces an earlier one.
func (s *Schema) Method(name string, fn Func) error {
	if err := checkMethod(name, fn); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[name] = fn
	return nil
}

// Static registers a static method. A later registration replaces an earlier one.
func (s *Schema) Static(name string, fn Func) error {
	if err := checkMethod(name, fn); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statics[name] = fn
	return nil
}

// StaticField sets a value exposed on the compiled model.
func (s *Schema) StaticField(name string, value any) error {
	if name == "" {
		return fmt.Errorf("%w: empty static field name", ErrInvalidMethod)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staticFields[name] = value
	return nil
}

// Methods returns a copy of the instance methods.
func (s *Schema) Methods() map[string]Func {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.methods)
}

// Statics returns a copy of the static methods.
func (s *Schema) Statics() map[string]Func {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.statics)
}

// StaticFields returns a copy of the static fields.
func (s *Schema) StaticFields() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.staticFields)
}

// Pre attaches middleware that runs before op.
func (s *Schema) Pre(op Operation, mw Middleware) error {
	return s.addMiddleware(s.pre, op, mw)
}

// Post attaches middleware that runs after op succeeded.
func (s *Schema) Post(op Operation, mw Middleware) error {
	return s.addMiddleware(s.post, op, mw)
}

// PreChain returns the pre middleware of op in registration order.
func (s *Schema) PreChain(op Operation) []Middleware {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Middleware(nil), s.pre[op]...)
}

// PostChain returns the post middleware of op in registration order.
func (s *Schema) PostChain(op Operation) []Middleware {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Middleware(nil), s.post[op]...)
}

func (s *Schema) addMiddleware(chains map[Operation][]Middleware, op Operation, mw Middleware) error {
	if !KnownOperation(op) {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if mw == nil {
		return fmt.Errorf("%w: nil middleware for %q", ErrInvalidMethod, op)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chains[op] = append(chains[op], mw)
	return nil
}

// Clone returns an independent copy. Default values, static fields and extra
// options are deep copied; functions are shared.
func (s *Schema) Clone() *Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	definition := make(Definition, len(s.definition))
	for name, field := range s.definition {
		field.Default = deepcopy.Copy(field.Default)
		definition[name] = field
	}

	indexes := make([]IndexSpec, len(s.indexes))
	for i, spec := range s.indexes {
		indexes[i] = IndexSpec{Keys: append(bson.D(nil), spec.Keys...), Options: spec.Options}
		if spec.Options.ExpireAfterSeconds != nil {
			ttl := *spec.Options.ExpireAfterSeconds
			indexes[i].Options.ExpireAfterSeconds = &ttl
		}
	}

	plugins := make([]PluginEntry, len(s.plugins))
	for i, entry := range s.plugins {
		plugins[i] = PluginEntry{Plugin: entry.Plugin, Options: copyMap(entry.Options)}
	}

	return &Schema{
		definition:   definition,
		options:      s.options,
		extra:        copyMap(s.extra),
		indexes:      indexes,
		plugins:      plugins,
		methods:      maps.Clone(s.methods),
		statics:      maps.Clone(s.statics),
		staticFields: copyMap(s.staticFields),
		pre:          copyChains(s.pre),
		post:         copyChains(s.post),
	}
}

package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// FieldType names the BSON type a path holds.
type FieldType string

const (
	String   FieldType = "string"
	Number   FieldType = "number"
	Boolean  FieldType = "boolean"
	Date     FieldType = "date"
	ObjectID FieldType = "objectId"
	Array    FieldType = "array"
	Object   FieldType = "object"
	Mixed    FieldType = "mixed"
)

// Field declares a single path of a document.
type Field struct {
	// Type is the BSON type of the path. Empty means Mixed.
	Type FieldType

	// Required rejects documents that are saved without this path.
	Required bool

	// Index declares an ascending single-field index on the path.
	Index bool

	// Unique declares a unique ascending single-field index on the path.
	Unique bool

	// Default is used when a new document does not set the path.
	Default any
}

// Definition maps path names to their declarations.
type Definition map[string]Field

// Option keys understood by Set. Other keys are stored without checks.
const (
	OptionTimestamps = "timestamps"
	OptionCollection = "collection"
	OptionStrict     = "strict"
	OptionAutoIndex  = "autoIndex"
	OptionVersionKey = "versionKey"
)

// Implicit paths.
const (
	IDPath        = "_id"
	CreatedAtPath = "createdAt"
	UpdatedAtPath = "updatedAt"
)

// DefaultVersionKey is the path that stores the document revision.
const DefaultVersionKey = "__v"

// Options holds the typed schema options.
type Options struct {
	// Timestamps maintains createdAt and updatedAt on save and update.
	Timestamps bool `yaml:"timestamps" envconfig:"TIMESTAMPS"`

	// Collection overrides the collection name derived from the model name.
	Collection string `yaml:"collection" envconfig:"COLLECTION"`

	// Strict drops paths that are not part of the definition when saving.
	Strict bool `yaml:"strict" envconfig:"STRICT" default:"true"`

	// AutoIndex creates the declared indexes when a model is compiled on a connection.
	AutoIndex bool `yaml:"auto_index" envconfig:"AUTO_INDEX" default:"true"`

	// VersionKey is the revision path. Empty disables versioning.
	VersionKey string `yaml:"version_key" envconfig:"VERSION_KEY" default:"__v"`
}

// Option configures a schema at construction time.
type Option func(*Options)

// WithTimestamps turns createdAt/updatedAt maintenance on or off.
func WithTimestamps(enabled bool) Option {
	return func(o *Options) { o.Timestamps = enabled }
}

// WithCollection sets an explicit collection name.
func WithCollection(name string) Option {
	return func(o *Options) { o.Collection = name }
}

// WithStrict controls whether undeclared paths are dropped on save.
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// WithAutoIndex controls index creation at model compile time.
func WithAutoIndex(enabled bool) Option {
	return func(o *Options) { o.AutoIndex = enabled }
}

// WithVersionKey sets the revision path. An empty key disables versioning.
func WithVersionKey(key string) Option {
	return func(o *Options) { o.VersionKey = key }
}

// IndexOptions mirrors the subset of driver index options a schema can declare.
type IndexOptions struct {
	Name               string
	Unique             bool
	Sparse             bool
	ExpireAfterSeconds *int32
}

// IndexSpec is one declared index.
type IndexSpec struct {
	Keys    bson.D
	Options IndexOptions
}

// Func is the shape of instance and static methods.
type Func func(ctx context.Context, receiver any, args ...any) (any, error)

// Plugin extends a schema. It runs as soon as it is attached.
type Plugin func(s *Schema, opts map[string]any) error

// PluginEntry records an attached plugin and the options it was given.
type PluginEntry struct {
	Plugin  Plugin
	Options map[string]any
}

// Operation names a persistence operation that middleware can be attached to.
type Operation string

const (
	OpSave           Operation = "save"
	OpFind           Operation = "find"
	OpFindOne        Operation = "findOne"
	OpUpdateOne      Operation = "updateOne"
	OpDeleteOne      Operation = "deleteOne"
	OpCountDocuments Operation = "countDocuments"
)

// Operations lists every operation middleware can be attached to.
var Operations = []Operation{OpSave, OpFind, OpFindOne, OpUpdateOne, OpDeleteOne, OpCountDocuments}

// HookContext is shared by every middleware of one operation. Pre middleware may
// change Document, Filter and Update; post middleware see Result.
type HookContext struct {
	Operation  Operation
	Collection string

	// Document is set for save and for deleteOne called on a document.
	Document bson.M

	// Filter is set for query operations.
	Filter bson.M

	// Update is set for updateOne.
	Update bson.M

	// Result is set before post middleware run.
	Result any
}

// Middleware runs before or after an operation. A pre middleware error aborts the operation.
type Middleware func(ctx context.Context, hc *HookContext) error

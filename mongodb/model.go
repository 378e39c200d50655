package mongodb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/serial"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Model is a schema compiled under a name. Static methods are called on it and
// documents are created from it. Persistence needs a connection.
type Model struct {
	name       string
	collection string
	schema     *schema.Schema
	conn       *Mongo
	runner     *serial.Runner
}

// NewModel compiles s under name. conn may be nil, in which case only method
// calls work and every persistence call returns ErrNotConnected.
func NewModel(name string, s *schema.Schema, conn *Mongo) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty model name", ErrMissingSchema)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingSchema, name)
	}

	runner := &serial.Runner{}
	if conn != nil && conn.observer != nil {
		runner = runner.WithObserver(conn.observer)
	}

	return &Model{
		name:       name,
		collection: collectionName(name, s.Options().Collection),
		schema:     s,
		conn:       conn,
		runner:     runner,
	}, nil
}

// Model compiles s under name on this connection and remembers it. Asking again
// for the same name with the same schema returns the existing model; a
// different schema fails with ErrModelOverwrite. When the schema has autoIndex
// on, its indexes are created.
func (m *Mongo) Model(ctx context.Context, name string, s *schema.Schema) (*Model, error) {
	m.modelsMu.Lock()
	if existing, ok := m.models[name]; ok {
		m.modelsMu.Unlock()
		if existing.schema != s {
			return nil, fmt.Errorf("%w: %q", ErrModelOverwrite, name)
		}
		return existing, nil
	}

	model, err := NewModel(name, s, m)
	if err != nil {
		m.modelsMu.Unlock()
		return nil, err
	}
	m.models[name] = model
	m.modelsMu.Unlock()

	if s.Options().AutoIndex {
		if err := model.EnsureIndexes(ctx); err != nil {
			m.logError(ctx, "Failed to create indexes", err, map[string]interface{}{"model": name})
			return model, err
		}
	}
	return model, nil
}

// LookupModel returns the model compiled under name, if any.
func (m *Mongo) LookupModel(name string) (*Model, bool) {
	m.modelsMu.RLock()
	defer m.modelsMu.RUnlock()
	model, ok := m.models[name]
	return model, ok
}

// ModelNames returns the names of the compiled models, sorted.
func (m *Mongo) ModelNames() []string {
	m.modelsMu.RLock()
	defer m.modelsMu.RUnlock()
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteModel forgets a compiled model so the name can be compiled again.
func (m *Mongo) DeleteModel(name string) {
	m.modelsMu.Lock()
	defer m.modelsMu.Unlock()
	delete(m.models, name)
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// CollectionName returns the collection documents are stored in.
func (m *Model) CollectionName() string { return m.collection }

// Schema returns the compiled schema.
func (m *Model) Schema() *schema.Schema { return m.schema }

// Connection returns the connection the model is bound to, or nil.
func (m *Model) Connection() *Mongo { return m.conn }

// Call invokes the static method name with the model as receiver.
func (m *Model) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := m.schema.Statics()[name]
	if !ok {
		return nil, fmt.Errorf("%w: static %q on model %q", ErrUnknownMethod, name, m.name)
	}
	return fn(ctx, m, args...)
}

// StaticField returns a static field declared on the schema.
func (m *Model) StaticField(name string) (any, bool) {
	v, ok := m.schema.StaticFields()[name]
	return v, ok
}

// New builds an unsaved document. Missing paths get their declared defaults and
// a fresh _id is assigned when none is given.
func (m *Model) New(fields bson.M) *Document {
	doc := make(bson.M, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	for _, path := range m.schema.Paths() {
		if _, set := doc[path]; set {
			continue
		}
		field, _ := m.schema.Field(path)
		if field.Default != nil {
			doc[path] = copyValue(field.Default)
		}
	}
	if _, ok := doc[schema.IDPath]; !ok {
		doc[schema.IDPath] = primitive.NewObjectID()
	}
	return &Document{model: m, fields: doc, isNew: true}
}

// Create builds a document from fields and saves it.
func (m *Model) Create(ctx context.Context, fields bson.M) (*Document, error) {
	doc := m.New(fields)
	if err := doc.Save(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// FindByID loads the document with the given id. id may be a primitive.ObjectID
// or its hex string.
func (m *Model) FindByID(ctx context.Context, id any) (*Document, error) {
	oid, err := toObjectID(id)
	if err != nil {
		return nil, err
	}
	return m.FindOne(ctx, bson.M{schema.IDPath: oid})
}

// FindOne loads the first document matching filter.
func (m *Model) FindOne(ctx context.Context, filter bson.M) (*Document, error) {
	hc := &schema.HookContext{Operation: schema.OpFindOne, Collection: m.collection, Filter: nonNil(filter)}
	var doc *Document

	err := m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		var raw bson.M
		if err := coll.FindOne(ctx, hc.Filter).Decode(&raw); err != nil {
			return 0, err
		}
		doc = &Document{model: m, fields: raw}
		hc.Result = doc
		return 1, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Find loads every document matching filter.
func (m *Model) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]*Document, error) {
	hc := &schema.HookContext{Operation: schema.OpFind, Collection: m.collection, Filter: nonNil(filter)}
	var docs []*Document

	err := m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		cursor, err := coll.Find(ctx, hc.Filter, findOptions(opts))
		if err != nil {
			return 0, err
		}
		var rows []bson.M
		if err := cursor.All(ctx, &rows); err != nil {
			return 0, err
		}
		docs = make([]*Document, len(rows))
		for i, row := range rows {
			docs[i] = &Document{model: m, fields: row}
		}
		hc.Result = docs
		return int64(len(docs)), nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateOne applies update to the first document matching filter. An update
// without operators is treated as a $set. With timestamps on, updatedAt is set.
func (m *Model) UpdateOne(ctx context.Context, filter, update bson.M) (UpdateResult, error) {
	hc := &schema.HookContext{
		Operation:  schema.OpUpdateOne,
		Collection: m.collection,
		Filter:     nonNil(filter),
		Update:     normalizeUpdate(update),
	}
	var result UpdateResult

	err := m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		if m.schema.Options().Timestamps {
			touch(hc.Update, time.Now().UTC())
		}
		res, err := coll.UpdateOne(ctx, hc.Filter, hc.Update)
		if err != nil {
			return 0, err
		}
		result = UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
		hc.Result = result
		return res.ModifiedCount, nil
	})
	return result, err
}

// DeleteOne removes the first document matching filter and returns how many were removed.
func (m *Model) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	hc := &schema.HookContext{Operation: schema.OpDeleteOne, Collection: m.collection, Filter: nonNil(filter)}
	var deleted int64

	err := m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		res, err := coll.DeleteOne(ctx, hc.Filter)
		if err != nil {
			return 0, err
		}
		deleted = res.DeletedCount
		hc.Result = deleted
		return deleted, nil
	})
	return deleted, err
}

// CountDocuments counts the documents matching filter.
func (m *Model) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	hc := &schema.HookContext{Operation: schema.OpCountDocuments, Collection: m.collection, Filter: nonNil(filter)}
	var count int64

	err := m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		n, err := coll.CountDocuments(ctx, hc.Filter)
		if err != nil {
			return 0, err
		}
		count = n
		hc.Result = n
		return n, nil
	})
	return count, err
}

// EnsureIndexes creates the indexes declared on the schema.
func (m *Model) EnsureIndexes(ctx context.Context) error {
	specs := m.schema.Indexes()
	if len(specs) == 0 {
		return nil
	}
	coll, err := m.coll()
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = coll.Indexes().CreateMany(ctx, indexModels(specs))
	err = TranslateError(err)
	m.conn.observeOperation("create_indexes", m.collection, m.name, time.Since(start), err, int64(len(specs)), nil)
	return err
}

// execute runs the pre middleware, op and the post middleware of one operation.
// Driver errors are translated; middleware errors are returned unchanged.
func (m *Model) execute(ctx context.Context, hc *schema.HookContext, op func(context.Context, *mongo.Collection) (int64, error)) error {
	coll, err := m.coll()
	if err != nil {
		return err
	}
	if err := m.pre(ctx, hc); err != nil {
		return err
	}

	start := time.Now()
	size, err := op(ctx, coll)
	err = TranslateError(err)
	m.conn.observeOperation(string(hc.Operation), m.collection, m.name, time.Since(start), err, size, nil)
	if err != nil {
		return err
	}
	return m.post(ctx, hc)
}

func (m *Model) coll() (*mongo.Collection, error) {
	if m.conn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotConnected, m.name)
	}
	db := m.conn.Database()
	if db == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotConnected, m.name)
	}
	return db.Collection(m.collection), nil
}

func collectionName(model, explicit string) string {
	if explicit != "" {
		return explicit
	}
	name := strings.ToLower(model)
	if strings.HasSuffix(name, "s") {
		return name
	}
	return name + "s"
}

func findOptions(opts FindOptions) *options.FindOptions {
	fo := options.Find()
	if len(opts.Sort) > 0 {
		fo.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if len(opts.Projection) > 0 {
		fo.SetProjection(opts.Projection)
	}
	return fo
}

func indexModels(specs []schema.IndexSpec) []mongo.IndexModel {
	models := make([]mongo.IndexModel, len(specs))
	for i, spec := range specs {
		io := options.Index()
		if spec.Options.Name != "" {
			io.SetName(spec.Options.Name)
		}
		if spec.Options.Unique {
			io.SetUnique(true)
		}
		if spec.Options.Sparse {
			io.SetSparse(true)
		}
		if spec.Options.ExpireAfterSeconds != nil {
			io.SetExpireAfterSeconds(*spec.Options.ExpireAfterSeconds)
		}
		models[i] = mongo.IndexModel{Keys: spec.Keys, Options: io}
	}
	return models
}

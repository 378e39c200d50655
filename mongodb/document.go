package mongodb

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/aalemi-dev/slimgoose/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is one record of a model. It is not safe for concurrent use.
type Document struct {
	model  *Model
	fields bson.M
	isNew  bool
}

// Model returns the model the document belongs to.
func (d *Document) Model() *Model { return d.model }

// ID returns the document id. It is the zero ObjectID when _id is not an ObjectID.
func (d *Document) ID() primitive.ObjectID {
	id, _ := d.fields[schema.IDPath].(primitive.ObjectID)
	return id
}

// Get returns the value stored at path.
func (d *Document) Get(path string) any {
	return d.fields[path]
}

// Set stores value at path. The change is persisted by the next Save.
func (d *Document) Set(path string, value any) {
	d.fields[path] = value
}

// Fields returns a shallow copy of every path of the document.
func (d *Document) Fields() bson.M {
	return maps.Clone(d.fields)
}

// IsNew reports whether the document has not been saved yet.
func (d *Document) IsNew() bool { return d.isNew }

// Call invokes the instance method name with the document as receiver.
func (d *Document) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := d.model.schema.Methods()[name]
	if !ok {
		return nil, fmt.Errorf("%w: method %q on model %q", ErrUnknownMethod, name, d.model.name)
	}
	return fn(ctx, d, args...)
}

// Save inserts a new document or replaces a stored one. Pre save middleware see
// the live fields and may change them. With strict on, paths the schema does not
// declare are not persisted. Timestamps and the version key are written to the
// document only once the write succeeded.
func (d *Document) Save(ctx context.Context) error {
	m := d.model
	hc := &schema.HookContext{Operation: schema.OpSave, Collection: m.collection, Document: d.fields}

	return m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		opts := m.schema.Options()
		if err := d.validate(); err != nil {
			return 0, err
		}

		stamped := stampFields(d.fields, opts, d.isNew, time.Now().UTC())
		record := d.persisted(stamped, opts.Strict)
		if d.isNew {
			if _, err := coll.InsertOne(ctx, record); err != nil {
				return 0, err
			}
			maps.Copy(d.fields, stamped)
			d.isNew = false
			hc.Result = d
			return 1, nil
		}

		res, err := coll.ReplaceOne(ctx, bson.M{schema.IDPath: d.fields[schema.IDPath]}, record, options.Replace().SetUpsert(true))
		if err != nil {
			return 0, err
		}
		maps.Copy(d.fields, stamped)
		hc.Result = d
		return res.ModifiedCount + res.UpsertedCount, nil
	})
}

// Delete removes the document. deleteOne middleware see the document, not a filter.
func (d *Document) Delete(ctx context.Context) error {
	m := d.model
	hc := &schema.HookContext{
		Operation:  schema.OpDeleteOne,
		Collection: m.collection,
		Document:   d.fields,
		Filter:     bson.M{schema.IDPath: d.fields[schema.IDPath]},
	}

	return m.execute(ctx, hc, func(ctx context.Context, coll *mongo.Collection) (int64, error) {
		res, err := coll.DeleteOne(ctx, hc.Filter)
		if err != nil {
			return 0, err
		}
		hc.Result = res.DeletedCount
		return res.DeletedCount, nil
	})
}

func (d *Document) validate() error {
	var missing []string
	for _, path := range d.model.schema.Paths() {
		field, _ := d.model.schema.Field(path)
		if !field.Required {
			continue
		}
		if v, ok := d.fields[path]; !ok || v == nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing required paths %v", ErrValidation, missing)
	}
	return nil
}

// persisted returns the record to write. In strict mode only declared paths are kept.
func (d *Document) persisted(fields bson.M, strict bool) bson.M {
	if !strict {
		return maps.Clone(fields)
	}
	record := make(bson.M, len(fields))
	for path, value := range fields {
		if _, declared := d.model.schema.Field(path); declared {
			record[path] = value
		}
	}
	return record
}

// stampFields returns a copy of fields carrying the timestamps and version key
// of the next write.
func stampFields(fields bson.M, opts schema.Options, isNew bool, now time.Time) bson.M {
	stamped := maps.Clone(fields)
	if stamped == nil {
		stamped = bson.M{}
	}
	if opts.Timestamps {
		if isNew {
			stamped[schema.CreatedAtPath] = now
		}
		stamped[schema.UpdatedAtPath] = now
	}
	if opts.VersionKey != "" {
		if isNew {
			stamped[opts.VersionKey] = 0
		} else {
			stamped[opts.VersionKey] = nextVersion(stamped[opts.VersionKey])
		}
	}
	return stamped
}

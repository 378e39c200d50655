// Package schema declares the shape and behaviour of the documents of a model.
//
// A Schema holds a path Definition, typed Options, index declarations, plugins,
// instance and static methods, static fields, and pre/post middleware for the
// persistence operations of package mongodb. Schemas are plain values: they do
// not talk to a database. mongodb.Model compiles one into a usable model.
//
// Basic usage
//
//	s := schema.New(schema.Definition{
//	    "username": {Type: schema.String, Required: true, Unique: true},
//	    "age":      {Type: schema.Number},
//	}, schema.WithTimestamps(true))
//
//	_ = s.Index(bson.D{{Key: "age", Value: -1}}, schema.IndexOptions{Name: "age_desc"})
//	_ = s.Pre(schema.OpSave, func(ctx context.Context, hc *schema.HookContext) error {
//	    hc.Document["username"] = strings.ToLower(hc.Document["username"].(string))
//	    return nil
//	})
//
// Clone returns a copy that shares no mutable state with the original, which is
// how the schema builder in package slimgoose keeps compiled models stable.
package schema

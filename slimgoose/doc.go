// Package slimgoose is a convenience layer over the mongodb model layer.
//
// A *Slimgoose owns the default connection and the driver selection. Schema
// starts a *SchemaBuilder, a fluent surface for declaring methods, static
// methods, static fields, pre hooks, options, indexes, plugins and persistence
// middleware, which compiles into a *mongodb.Model.
//
// # Pre hooks
//
// PreMethods and PreStaticMethods register hooks that run, one at a time and in
// registration order, before the method of the same name. A hook sees the
// results of the hooks before it and the current arguments, and may replace the
// arguments for the hooks after it and for the method with
// hc.Data.SetNewArguments. In strict mode (the default) the first failing hook
// aborts the call with its error; with HooksConfig.Safe a failing hook
// contributes nil and the chain continues.
//
//	sg := slimgoose.New(selector.New())
//	users, err := sg.Schema(schema.Definition{
//	    "email": {Type: schema.String, Required: true, Unique: true},
//	}).
//	    StaticMethods(map[string]hooks.Method{
//	        "findByEmail": func(ctx context.Context, self any, args ...any) (any, error) {
//	            return self.(*mongodb.Model).FindOne(ctx, bson.M{"email": args[0]})
//	        },
//	    }).
//	    PreStaticMethods(map[string]hooks.Hook{
//	        "findByEmail": func(ctx context.Context, hc hooks.Context) (any, error) {
//	            hc.Data.SetNewArguments(strings.ToLower(hc.Data.Args[0].(string)))
//	            return nil, nil
//	        },
//	    }).
//	    ToModel(ctx, "User")
//
//	doc, err := users.Call(ctx, "findByEmail", "Ada@Example.com")
//
// # Driver selection
//
// The driver used to open connections can be replaced with UseDriver until the
// first schema is built or the first connection opened; after that the
// selection is frozen and UseDriver returns selector.ErrFrozen.
//
// # Configuration
//
// LoadConfigFromEnv reads a Config from SLIMGOOSE_* variables (for example
// SLIMGOOSE_MONGO_URI, SLIMGOOSE_LOGGER_LEVEL, SLIMGOOSE_HOOKS_SAFE).
// LoadConfigFromFile reads YAML and lets the same variables override it.
// FXModule opens the default connection on start when Config.Mongo.URI is set
// and takes the logger, observer and tracer of the logger, metrics and tracer
// modules when they are included.
//
// # Testing
//
// ConnectDefaultForTest opens the default connection on a server created by a
// testdb.Provisioner, and ResetDefaultForTest drops its database.
package slimgoose

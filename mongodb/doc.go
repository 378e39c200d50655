// Package mongodb provides the MongoDB connection and model layer of slimgoose,
// built on the official go.mongodb.org/mongo-driver.
//
// The concrete connection type (`*Mongo`) wraps a `*mongo.Client` and adds:
//   - Connection establishment with pool and timeout configuration
//   - Periodic health checks with disconnect/reconnect listeners (`MonitorConnection`)
//   - A registry of compiled models
//   - Error normalization (`TranslateError`)
//
// A `*Model` is a `schema.Schema` compiled under a name. It exposes the schema's
// static methods and static fields, creates `*Document` values, and runs the
// persistence operations save, find, findOne, updateOne, deleteOne and
// countDocuments. Pre and post middleware declared on the schema run around
// each operation, one at a time and in registration order; the first failing
// pre middleware aborts the operation and its error is returned unchanged.
//
// # Concurrency model
//
// The active client pointer is stored in an `atomic.Pointer` and cleared by
// `GracefulShutdown`. Models are safe for concurrent use; documents are not.
//
// Basic usage
//
//	conn, err := mongodb.NewMongo(ctx, mongodb.Config{
//	    URI:      "mongodb://localhost:27017",
//	    Database: "app",
//	})
//	if err != nil {
//	    // handle
//	}
//	defer conn.GracefulShutdown(ctx)
//
//	users, err := conn.Model(ctx, "User", userSchema)
//	doc, err := users.Create(ctx, bson.M{"email": "ada@example.com"})
//	found, err := users.FindByID(ctx, doc.ID())
//
// # Observability (Observer hook)
//
// If an `observability.Observer` is attached with `WithObserver` (or injected by
// fx), it is notified after each operation completes with component "mongodb",
// the operation name, the collection as resource and the model name as
// sub-resource.
//
// # Fx integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    mongodb.FXModule,
//	    fx.Provide(
//	        func() mongodb.Config { return loadMongoConfig() },
//	        func(l logger.Logger) mongodb.Logger { return l }, // Optional: logs connection state
//	    ),
//	)
package mongodb

package mongodb

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/mohae/deepcopy"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Client returns the underlying driver client, or nil after GracefulShutdown.
func (m *Mongo) Client() *mongo.Client {
	return m.client.Load()
}

// Connected reports whether the last health check succeeded and the client is open.
func (m *Mongo) Connected() bool {
	return m.connected.Load() && m.client.Load() != nil
}

// Config returns the configuration the connection was opened with.
func (m *Mongo) Config() Config {
	return m.cfg
}

// Database returns the database models are stored in, or nil after GracefulShutdown.
func (m *Mongo) Database() *mongo.Database {
	client := m.Client()
	if client == nil {
		return nil
	}
	return client.Database(m.cfg.database())
}

// Ping checks that the server answers.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.healthCheck(ctx)
}

// DropDatabase removes the database and every collection in it.
func (m *Mongo) DropDatabase(ctx context.Context) error {
	start := time.Now()
	db := m.Database()
	if db == nil {
		return ErrNotConnected
	}

	err := TranslateError(db.Drop(ctx))
	if err != nil {
		m.logError(ctx, "Failed to drop database", err, map[string]interface{}{"database": db.Name()})
	}
	m.observeOperation("drop_database", db.Name(), "", time.Since(start), err, 0, nil)
	return err
}

func toObjectID(id any) (primitive.ObjectID, error) {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, v)
		}
		return oid, nil
	default:
		return primitive.NilObjectID, fmt.Errorf("%w: unsupported type %T", ErrInvalidID, id)
	}
}

func nonNil(m bson.M) bson.M {
	if m == nil {
		return bson.M{}
	}
	return m
}

// normalizeUpdate copies update and wraps it in $set when it has no operators.
func normalizeUpdate(update bson.M) bson.M {
	if len(update) == 0 {
		return bson.M{"$set": bson.M{}}
	}
	for key := range update {
		if strings.HasPrefix(key, "$") {
			return maps.Clone(update)
		}
	}
	return bson.M{"$set": maps.Clone(update)}
}

// touch sets updatedAt in the $set stage of update without mutating the stage it was given.
func touch(update bson.M, now time.Time) {
	switch set := update["$set"].(type) {
	case bson.M:
		stage := maps.Clone(set)
		stage[schema.UpdatedAtPath] = now
		update["$set"] = stage
	case map[string]any:
		stage := maps.Clone(set)
		stage[schema.UpdatedAtPath] = now
		update["$set"] = stage
	case bson.D:
		stage := append(bson.D(nil), set...)
		update["$set"] = append(stage, bson.E{Key: schema.UpdatedAtPath, Value: now})
	default:
		update["$set"] = bson.M{schema.UpdatedAtPath: now}
	}
}

func nextVersion(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n) + 1
	case int32:
		return int64(n) + 1
	case int64:
		return n + 1
	case float64:
		return int64(n) + 1
	}
	return 1
}

func copyValue(v any) any {
	return deepcopy.Copy(v)
}

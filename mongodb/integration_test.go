package mongodb_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	provisioner = testdb.NewContainerProvisioner(testdb.Config{})
	serverOnce  sync.Once
	serverURI   string
	serverErr   error
)

func TestMain(m *testing.M) {
	code := m.Run()
	_ = provisioner.Terminate(context.Background())
	os.Exit(code)
}

// newTestConn returns a connection to the shared server on a database named
// after the test, dropped on cleanup.
func newTestConn(t *testing.T) *mongodb.Mongo {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	serverOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		serverURI, serverErr = testdb.FromEnv(provisioner).CreateServer(ctx)
	})
	if serverErr != nil {
		t.Skipf("mongo server unavailable: %v", serverErr)
	}

	ctx := context.Background()
	dbName := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := mongodb.NewMongo(ctx, mongodb.Config{URI: serverURI, Database: dbName, AppName: "slimgoose-test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testdb.ResetDatabase(context.Background(), conn)
		_ = conn.GracefulShutdown(context.Background())
	})
	return conn
}

func accountSchema() *schema.Schema {
	return schema.New(schema.Definition{
		"email": {Type: schema.String, Required: true, Unique: true},
		"name":  {Type: schema.String},
		"age":   {Type: schema.Number},
	}, schema.WithTimestamps(true))
}

func TestIntegration_CRUD(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	model, err := conn.Model(ctx, "Account", accountSchema())
	require.NoError(t, err)
	assert.Equal(t, "accounts", model.CollectionName())
	assert.True(t, conn.Connected())

	doc, err := model.Create(ctx, bson.M{"email": "ada@example.com", "name": "Ada", "age": 36, "junk": true})
	require.NoError(t, err)
	assert.False(t, doc.IsNew())
	assert.NotNil(t, doc.Get("createdAt"))

	found, err := model.FindByID(ctx, doc.ID().Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Get("name"))
	assert.Nil(t, found.Get("junk"))

	found.Set("name", "Ada L.")
	require.NoError(t, found.Save(ctx))
	reloaded, err := model.FindOne(ctx, bson.M{"email": "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", reloaded.Get("name"))
	assert.EqualValues(t, 1, reloaded.Get("__v"))

	res, err := model.UpdateOne(ctx, bson.M{"_id": doc.ID()}, bson.M{"age": 37})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	_, err = model.Create(ctx, bson.M{"email": "bob@example.com", "age": 20})
	require.NoError(t, err)

	docs, err := model.Find(ctx, bson.M{}, mongodb.FindOptions{Sort: bson.D{{Key: "age", Value: -1}}})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.EqualValues(t, 37, docs[0].Get("age"))

	count, err := model.CountDocuments(ctx, bson.M{"age": bson.M{"$gte": 30}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, reloaded.Delete(ctx))
	deleted, err := model.DeleteOne(ctx, bson.M{"email": "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = model.FindByID(ctx, doc.ID())
	assert.ErrorIs(t, err, mongodb.ErrRecordNotFound)
}

func TestIntegration_UniqueIndexAndValidation(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	model, err := conn.Model(ctx, "Account", accountSchema())
	require.NoError(t, err)

	_, err = model.Create(ctx, bson.M{"email": "dup@example.com"})
	require.NoError(t, err)
	_, err = model.Create(ctx, bson.M{"email": "dup@example.com"})
	assert.ErrorIs(t, err, mongodb.ErrDuplicateKey)

	dup := model.New(bson.M{"email": "dup@example.com"})
	assert.ErrorIs(t, dup.Save(ctx), mongodb.ErrDuplicateKey)
	assert.True(t, dup.IsNew())
	assert.Nil(t, dup.Get("createdAt"))
	assert.Nil(t, dup.Get("updatedAt"))
	assert.Nil(t, dup.Get("__v"))

	_, err = model.Create(ctx, bson.M{"name": "no email"})
	assert.ErrorIs(t, err, mongodb.ErrValidation)
}

func TestIntegration_Middleware(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	var order []string
	s := accountSchema()
	require.NoError(t, s.Pre(schema.OpSave, func(_ context.Context, hc *schema.HookContext) error {
		order = append(order, "pre-save-1")
		hc.Document["email"] = strings.ToLower(hc.Document["email"].(string))
		return nil
	}))
	require.NoError(t, s.Pre(schema.OpSave, func(context.Context, *schema.HookContext) error {
		order = append(order, "pre-save-2")
		return nil
	}))
	require.NoError(t, s.Post(schema.OpSave, func(_ context.Context, hc *schema.HookContext) error {
		order = append(order, "post-save")
		assert.NotNil(t, hc.Result)
		return nil
	}))
	blocked := errors.New("deletes are disabled")
	require.NoError(t, s.Pre(schema.OpDeleteOne, func(context.Context, *schema.HookContext) error { return blocked }))

	model, err := conn.Model(ctx, "Account", s)
	require.NoError(t, err)

	doc, err := model.Create(ctx, bson.M{"email": "MiXeD@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pre-save-1", "pre-save-2", "post-save"}, order)
	assert.Equal(t, "mixed@example.com", doc.Get("email"))

	assert.Same(t, blocked, doc.Delete(ctx))
	count, err := model.CountDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIntegration_Observer(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()

	var mu sync.Mutex
	var ops []string
	conn.WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		mu.Lock()
		defer mu.Unlock()
		if op.Component == "mongodb" {
			ops = append(ops, op.Operation)
		}
	}))

	model, err := conn.Model(ctx, "Account", accountSchema())
	require.NoError(t, err)
	_, err = model.Create(ctx, bson.M{"email": "obs@example.com"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"create_indexes", "save"}, ops)
}

func TestIntegration_Ping(t *testing.T) {
	conn := newTestConn(t)
	require.NoError(t, conn.Ping(context.Background()))
	assert.NotNil(t, conn.Client())
}

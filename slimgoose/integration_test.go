package slimgoose

import (
	"context"
	"strings"
	"testing"

	"github.com/aalemi-dev/slimgoose/hooks"
	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIntegration_ModelLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	prov := testdb.NewContainerProvisioner(testdb.Config{})
	t.Cleanup(func() { _ = prov.Terminate(context.Background()) })

	sg := New(nil)
	require.NoError(t, sg.ConnectDefaultForTest(ctx, testdb.FromEnv(prov), "slimgoose_facade"))
	t.Cleanup(func() { _ = sg.Close(context.Background()) })
	assert.True(t, sg.Connected())

	b := sg.Schema(userDefinition()).
		Index(bson.D{{Key: "email", Value: 1}}, schema.IndexOptions{Unique: true}).
		StaticMethods(map[string]hooks.Method{
			"byEmail": func(ctx context.Context, receiver any, args ...any) (any, error) {
				return receiver.(*mongodb.Model).FindOne(ctx, bson.M{"email": args[0]})
			},
		}).
		PreStaticMethods(map[string]hooks.Hook{
			"byEmail": func(_ context.Context, hc hooks.Context) (any, error) {
				hc.Data.SetNewArguments(strings.ToLower(hc.Data.Args[0].(string)))
				return nil, nil
			},
		})

	user, err := b.ToModel(ctx, "User")
	require.NoError(t, err)
	assert.Same(t, sg.Connection(), user.Connection())

	created, err := user.Create(ctx, bson.M{"username": "ada", "email": "ada@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, created.Get("createdAt"))

	found, err := user.Call(ctx, "byEmail", "ADA@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID(), found.(*mongodb.Document).ID())

	_, err = user.Create(ctx, bson.M{"username": "eve", "email": "ada@example.com"})
	assert.ErrorIs(t, err, mongodb.ErrDuplicateKey)

	require.NoError(t, sg.ResetDefaultForTest(ctx))
	n, err := user.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

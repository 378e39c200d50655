package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func userDefinition() Definition {
	return Definition{
		"username":    {Type: String, Index: true, Required: true},
		"email":       {Type: String, Required: true, Unique: true},
		"name":        {Type: String},
		"age":         {Type: Number},
		"dateOfBirth": {Type: Date},
		"tags":        {Type: Array, Default: []any{"new"}},
		"extra":       {},
	}
}

func TestNew_DefaultsAndPaths(t *testing.T) {
	t.Parallel()
	s := New(userDefinition())

	assert.Equal(t, DefaultOptions(), s.Options())
	assert.Equal(t, []string{"__v", "_id", "age", "dateOfBirth", "email", "extra", "name", "tags", "username"}, s.Paths())

	f, ok := s.Field("extra")
	require.True(t, ok)
	assert.Equal(t, Mixed, f.Type)

	id, ok := s.Field(IDPath)
	require.True(t, ok)
	assert.Equal(t, ObjectID, id.Type)

	_, ok = s.Field(CreatedAtPath)
	assert.False(t, ok)
}

func TestNew_Timestamps(t *testing.T) {
	t.Parallel()
	s := New(Definition{"username": {Type: String}}, WithTimestamps(true), WithVersionKey(""))

	assert.Equal(t, []string{"_id", "createdAt", "updatedAt", "username"}, s.Paths())
	f, ok := s.Field(UpdatedAtPath)
	require.True(t, ok)
	assert.Equal(t, Date, f.Type)
}

func TestNew_CopiesDefinition(t *testing.T) {
	t.Parallel()
	def := Definition{"a": {Type: String}}
	s := New(def)
	def["b"] = Field{Type: Number}

	_, ok := s.Field("b")
	assert.False(t, ok)
}

func TestSet_KnownKeys(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key     string
		value   any
		wantErr bool
		check   func(t *testing.T, o Options)
	}{
		{key: OptionTimestamps, value: true, check: func(t *testing.T, o Options) { assert.True(t, o.Timestamps) }},
		{key: OptionTimestamps, value: "yes", wantErr: true},
		{key: OptionStrict, value: false, check: func(t *testing.T, o Options) { assert.False(t, o.Strict) }},
		{key: OptionAutoIndex, value: 1, wantErr: true},
		{key: OptionCollection, value: "people", check: func(t *testing.T, o Options) { assert.Equal(t, "people", o.Collection) }},
		{key: OptionCollection, value: 3, wantErr: true},
		{key: OptionVersionKey, value: "rev", check: func(t *testing.T, o Options) { assert.Equal(t, "rev", o.VersionKey) }},
		{key: OptionVersionKey, value: false, check: func(t *testing.T, o Options) { assert.Empty(t, o.VersionKey) }},
		{key: OptionVersionKey, value: 1.5, wantErr: true},
		{key: "", value: 1, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			s := New(nil)
			err := s.Set(tc.key, tc.value)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOption)
				assert.Equal(t, DefaultOptions(), s.Options())
				return
			}
			require.NoError(t, err)
			tc.check(t, s.Options())
		})
	}
}

func TestSetGet_CustomKey(t *testing.T) {
	t.Parallel()
	s := New(nil)

	_, ok := s.Get("read")
	assert.False(t, ok)

	require.NoError(t, s.Set("read", "secondaryPreferred"))
	v, ok := s.Get("read")
	require.True(t, ok)
	assert.Equal(t, "secondaryPreferred", v)

	v, ok = s.Get(OptionTimestamps)
	require.True(t, ok)
	assert.Equal(t, false, v)

	_, ok = s.Get(OptionCollection)
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	t.Parallel()
	s := New(userDefinition())

	assert.ErrorIs(t, s.Index(nil, IndexOptions{}), ErrInvalidIndex)
	assert.ErrorIs(t, s.Index(bson.D{{Key: "age", Value: 2}}, IndexOptions{}), ErrInvalidIndex)
	assert.ErrorIs(t, s.Index(bson.D{{Key: "", Value: 1}}, IndexOptions{}), ErrInvalidIndex)
	require.NoError(t, s.Index(bson.D{{Key: "age", Value: -1}, {Key: "name", Value: "text"}}, IndexOptions{Name: "age_name"}))

	specs := s.Indexes()
	require.Len(t, specs, 3)
	assert.Equal(t, "age_name", specs[0].Options.Name)
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, specs[1].Keys)
	assert.True(t, specs[1].Options.Unique)
	assert.Equal(t, bson.D{{Key: "username", Value: 1}}, specs[2].Keys)
	assert.False(t, specs[2].Options.Unique)
}

func TestPlugin(t *testing.T) {
	t.Parallel()
	s := New(nil)

	assert.ErrorIs(t, s.Plugin(nil, nil), ErrNilPlugin)

	softDelete := func(s *Schema, opts map[string]any) error {
		field, _ := opts["field"].(string)
		return s.StaticField("softDeleteField", field)
	}
	require.NoError(t, s.Plugin(softDelete, map[string]any{"field": "deletedAt"}))
	assert.Equal(t, "deletedAt", s.StaticFields()["softDeleteField"])
	require.Len(t, s.Plugins(), 1)
	assert.Equal(t, map[string]any{"field": "deletedAt"}, s.Plugins()[0].Options)

	failure := errors.New("boom")
	err := s.Plugin(func(*Schema, map[string]any) error { return failure }, nil)
	assert.ErrorIs(t, err, failure)
	assert.Len(t, s.Plugins(), 1)
}

func TestMethodsAndStatics(t *testing.T) {
	t.Parallel()
	s := New(nil)
	fn := func(context.Context, any, ...any) (any, error) { return "ok", nil }

	assert.ErrorIs(t, s.Method("", fn), ErrInvalidMethod)
	assert.ErrorIs(t, s.Method("greet", nil), ErrInvalidMethod)
	assert.ErrorIs(t, s.StaticField("", 1), ErrInvalidMethod)

	require.NoError(t, s.Method("greet", fn))
	require.NoError(t, s.Static("findByName", fn))
	require.NoError(t, s.StaticField("limit", 10))

	assert.Contains(t, s.Methods(), "greet")
	assert.Contains(t, s.Statics(), "findByName")
	assert.NotContains(t, s.Methods(), "findByName")
	assert.Equal(t, map[string]any{"limit": 10}, s.StaticFields())

	// returned maps are copies
	delete(s.Methods(), "greet")
	assert.Contains(t, s.Methods(), "greet")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	s := New(nil)
	mw := func(context.Context, *HookContext) error { return nil }

	assert.ErrorIs(t, s.Pre("validate", mw), ErrUnknownOperation)
	assert.ErrorIs(t, s.Post(OpSave, nil), ErrInvalidMethod)

	for _, op := range Operations {
		require.NoError(t, s.Pre(op, mw))
	}
	require.NoError(t, s.Pre(OpSave, mw))
	require.NoError(t, s.Post(OpFind, mw))

	assert.Len(t, s.PreChain(OpSave), 2)
	assert.Len(t, s.PreChain(OpFind), 1)
	assert.Len(t, s.PostChain(OpFind), 1)
	assert.Empty(t, s.PostChain(OpSave))
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()
	fn := func(context.Context, any, ...any) (any, error) { return nil, nil }
	mw := func(context.Context, *HookContext) error { return nil }
	ttl := int32(60)

	original := New(userDefinition(), WithTimestamps(true))
	require.NoError(t, original.Set("read", map[string]any{"mode": "primary"}))
	require.NoError(t, original.Index(bson.D{{Key: "age", Value: 1}}, IndexOptions{ExpireAfterSeconds: &ttl}))
	require.NoError(t, original.Method("greet", fn))
	require.NoError(t, original.StaticField("config", map[string]any{"limit": 5}))
	require.NoError(t, original.Pre(OpSave, mw))

	clone := original.Clone()

	require.NoError(t, clone.Method("other", fn))
	require.NoError(t, clone.Pre(OpSave, mw))
	require.NoError(t, clone.Set(OptionTimestamps, false))
	require.NoError(t, clone.Index(bson.D{{Key: "name", Value: 1}}, IndexOptions{}))
	clone.StaticFields()["config"].(map[string]any)["limit"] = 99
	*clone.Indexes()[0].Options.ExpireAfterSeconds = 1
	tags, _ := clone.Field("tags")
	tags.Default.([]any)[0] = "changed"

	assert.NotContains(t, original.Methods(), "other")
	assert.Len(t, original.PreChain(OpSave), 1)
	assert.Len(t, clone.PreChain(OpSave), 2)
	assert.True(t, original.Options().Timestamps)
	assert.Len(t, original.Indexes(), 3)
	assert.Equal(t, int32(60), *original.Indexes()[0].Options.ExpireAfterSeconds)

	assert.Equal(t, map[string]any{"limit": 5}, original.StaticFields()["config"])
	v, _ := original.Get("read")
	assert.Equal(t, map[string]any{"mode": "primary"}, v)
	origTags, _ := original.Field("tags")
	assert.Equal(t, []any{"new"}, origTags.Default)
}

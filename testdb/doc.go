// Package testdb provisions throwaway MongoDB servers for tests.
//
// ContainerProvisioner starts a container per CreateServer call with
// testcontainers-go; FromEnv reuses an already running server when
// SLIMGOOSE_TEST_MONGO_URI is set. ResetDatabase drops the database of a
// connection between tests.
//
//	prov := testdb.NewContainerProvisioner(testdb.Config{})
//	defer prov.Terminate(ctx)
//
//	uri, err := testdb.FromEnv(prov).CreateServer(ctx)
//	conn, err := mongodb.NewMongo(ctx, mongodb.Config{URI: uri, Database: "app_test"})
//	defer testdb.ResetDatabase(ctx, conn)
package testdb

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// unreachableMongoURI points at a port nothing listens on.
const unreachableMongoURI = "mongodb://127.0.0.1:1/?connect=direct"

func TestConnectMongoDB_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	db, err := ConnectMongoDB(ctx, unreachableMongoURI, "testdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MongoDB")
	assert.Nil(t, db)
}

func TestPingOrDisconnect_ReleasesClient(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(unreachableMongoURI))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.Error(t, pingOrDisconnect(ctx, client))

	// already disconnected by the failed ping
	assert.ErrorIs(t, client.Disconnect(context.Background()), mongo.ErrClientDisconnected)
}

func setupTestMongo(t *testing.T) *MongoStore {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	store := NewMongoStore(db)
	require.NoError(t, store.CreateIndexes(ctx))

	t.Cleanup(func() {
		store.Close()
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return store
}

func TestMongoStore(t *testing.T) {
	store := setupTestMongo(t)
	exerciseBlobStore(t, store)
}

func TestMongoStore_ContextCancellation(t *testing.T) {
	store := setupTestMongo(t)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond) // Ensure context is cancelled

	_, err := store.Get(ctx, "cart:s1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	meshtest "github.com/groupmesh/groupmesh/testing"
)

// TestEnsureBucketWithRetry_RankRace verifies that every rank of a world
// racing to create the shared rendezvous bucket ends up with a usable
// KV instance, whichever rank wins the creation.
func TestEnsureBucketWithRetry_RankRace(t *testing.T) {
	_, nc := meshtest.StartEmbeddedNATS(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	const worldSize = 8

	var wg sync.WaitGroup
	kvs := make([]jetstream.KeyValue, worldSize)
	errs := make([]error, worldSize)

	for rank := 0; rank < worldSize; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			kvs[rank], errs[rank] = EnsureBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
				Bucket:  "rendezvous-race",
				History: 1,
			}, 3)
		}(rank)
	}

	wg.Wait()

	for rank := 0; rank < worldSize; rank++ {
		require.NoError(t, errs[rank], "rank %d should create or open the bucket", rank)
		require.NotNil(t, kvs[rank], "rank %d should hold a usable KV instance", rank)
	}

	// All instances reference the same bucket: a key written by one
	// rank is visible to every other.
	_, err = kvs[0].Put(ctx, "probe", []byte("value"))
	require.NoError(t, err)

	for rank := 1; rank < worldSize; rank++ {
		entry, err := kvs[rank].Get(ctx, "probe")
		require.NoError(t, err)
		require.Equal(t, []byte("value"), entry.Value())
	}
}

func TestEnsureBucketWithRetry_ExistingBucket(t *testing.T) {
	_, nc := meshtest.StartEmbeddedNATS(t)

	ctx := context.Background()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cfg := jetstream.KeyValueConfig{Bucket: "rendezvous-existing", History: 1}

	first, err := EnsureBucketWithRetry(ctx, js, cfg, 3)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Second ensure opens the existing bucket instead of failing.
	second, err := EnsureBucketWithRetry(ctx, js, cfg, 3)
	require.NoError(t, err)
	require.NotNil(t, second)
}

func TestEnsureBucketWithRetry_CancelledContext(t *testing.T) {
	_, nc := meshtest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = EnsureBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:  "rendezvous-cancelled",
		History: 1,
	}, 3)
	require.Error(t, err)
}

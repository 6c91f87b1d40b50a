package sessionstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/taxifare/core/session"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode")
	}
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()
	store, err := Dial(ctx, &redis.Options{Addr: addr}, "test:", time.Minute)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	fare := 24.57
	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "s1", session.Snapshot{LastFare: &fare, UpdatedAt: now, Predictions: 2}))

	snap, ok, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, snap.LastFare)
	assert.Equal(t, 24.57, *snap.LastFare)
	assert.True(t, now.Equal(snap.UpdatedAt))
	assert.Equal(t, 2, snap.Predictions)

	ttl, err := store.client.TTL(ctx, "test:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_SharedAcrossInstances(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()
	store, err := Dial(ctx, &redis.Options{Addr: addr}, "", 0)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	fare := 9.5
	require.NoError(t, store.Save(ctx, "s1", session.Snapshot{LastFare: &fare}))
	other := NewRedisStore(store.client, DefaultKeyPrefix, 0)
	snap, ok, err := other.Load(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.5, *snap.LastFare)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond}, "", 0)
	assert.Error(t, err)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "", 0)
	defer func() { _ = s.Close() }()
	assert.Equal(t, DefaultKeyPrefix+"abc", s.key("abc"))
}

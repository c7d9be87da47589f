package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-catalog/internal/storage"
)

// Интеграционные тесты: поднимают redis:7-alpine через testcontainers-go.
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/redis -v -count=1

func startRedis(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestStorage_CRUD(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	s, err := New(ctx, url, "")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyToken, "tok"))
	v, err := s.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok", v)

	// Ключ лежит под префиксом.
	raw, err := s.rdb.Get(ctx, DefaultPrefix+storage.KeyToken).Result()
	require.NoError(t, err)
	require.Equal(t, "tok", raw)

	require.NoError(t, s.Remove(ctx, storage.KeyToken))
	require.NoError(t, s.Remove(ctx, storage.KeyToken))
	_, err = s.Get(ctx, storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNew_BadURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "not-a-url", "")
	require.Error(t, err)
}

package postgres

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

// Интеграционные тесты: поднимают postgres:16-alpine через testcontainers-go,
// New сам применяет встроенные миграции.
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -count=1

func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")

	return fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())
}

// connect — контейнер может принять TCP раньше, чем postgres готов к запросам.
func connect(t *testing.T, dsn string) *Storage {
	t.Helper()

	var (
		s   *Storage
		err error
	)
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err = New(ctx, dsn)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStorage_CRUD(t *testing.T) {
	s := connect(t, startPostgres(t))
	ctx := context.Background()

	_, err := s.Get(ctx, storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyUser, `{"name":"Ann"}`))
	require.NoError(t, s.Set(ctx, storage.KeyUser, `{"name":"Bob"}`))

	v, err := s.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	require.Equal(t, `{"name":"Bob"}`, v)

	require.NoError(t, s.Remove(ctx, storage.KeyUser))
	require.NoError(t, s.Remove(ctx, storage.KeyUser))

	_, err = s.Get(ctx, storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Повторный New поверх той же базы не падает на миграциях.
func TestNew_MigrationsIdempotent(t *testing.T) {
	dsn := startPostgres(t)
	_ = connect(t, dsn)

	s2, err := New(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestNew_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "::not-a-dsn::")
	require.Error(t, err)
}

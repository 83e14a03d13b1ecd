//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/bizcache/internal/iocache"
	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestBizcacheWithMySQL tests offline mode with a MySQL backend.
func TestBizcacheWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "bizcache",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/bizcache?parseTime=true", host, port.Port())
	verifyBackend(t, schema.MySQLBackend, connStr)
}

// TestBizcacheWithPostgres tests offline mode with a PostgreSQL backend.
func TestBizcacheWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	verifyBackend(t, schema.PostgreSQLBackend, connStr)
}

// verifyBackend exercises the store directly and then through the CLI.
func verifyBackend(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()

	// Direct key/value round trip
	store, err := iocache.NewEntityStore("entity_store", backend, connStr)
	require.NoError(t, err)
	require.NoError(t, store.Set("offline_probe", []byte(`[{"_id":"1"}]`), 1, time.Now().UnixMilli()))
	require.NoError(t, store.Set("offline_probe", []byte(`[]`), 1, time.Now().UnixMilli()))
	value, version, _, err := store.Get("offline_probe")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value), "set must overwrite the previous document")
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	env := []string{
		"BIZCACHE_MODE=offline",
		"BIZCACHE_STORE_BACKEND=" + string(backend),
		"BIZCACHE_STORE_DB_CONNECT=" + connStr,
	}

	_, err = runCommand(t, env, "store", "clear")
	require.NoError(t, err)

	out, err := runCommand(t, env, "create", "warehouses", "--set", "name=Main", "--output", "json")
	require.NoError(t, err)
	var created []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "WH-0001", created[0]["ID"])

	out, err = runCommand(t, env, "create", "warehouses", "--set", "name=Branch", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "WH-0002")

	out, err = runCommand(t, env, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, out, string(backend))

	_, err = runCommand(t, env, "store", "migrate")
	require.NoError(t, err)
}

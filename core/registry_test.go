package core

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/iocache"
	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Offline(t *testing.T) {
	cfg := &contract.Config{Mode: schema.OfflineMode}
	reg, err := NewRegistry(cfg, newStore(t), nil, nil, schema.Catalog)
	require.NoError(t, err)
	assert.Len(t, reg.Caches(), len(schema.Catalog))

	for i, c := range reg.Caches() {
		assert.Equal(t, schema.Catalog[i].Name, c.Name(), "caches keep catalog order")
		assert.False(t, c.Fetched())
	}

	transfers, err := reg.Cache("stock-transfers")
	require.NoError(t, err)
	require.Len(t, transfers.refs, 2)
	warehouses, _ := reg.Cache("warehouses")
	assert.Same(t, warehouses, transfers.refs[0].Source)
	assert.Equal(t, "fromWarehouseId", transfers.refs[0].Field)
}

func TestNewRegistry_OfflineRequiresStore(t *testing.T) {
	_, err := NewRegistry(&contract.Config{Mode: schema.OfflineMode}, nil, nil, nil, schema.Catalog)
	assert.ErrorContains(t, err, "store")
}

func TestNewRegistry_RemoteRequiresBaseURL(t *testing.T) {
	_, err := NewRegistry(&contract.Config{Mode: schema.RemoteMode}, nil, nil, nil, schema.Catalog)
	assert.ErrorContains(t, err, "base URL")
}

func TestNewRegistry_UnknownMode(t *testing.T) {
	_, err := NewRegistry(&contract.Config{Mode: "carrier-pigeon"}, nil, nil, nil, schema.Catalog)
	assert.Error(t, err)
}

func TestNewRegistry_BadCatalog(t *testing.T) {
	factory := func(schema.EntitySpec) contract.Adapter { return &contract.MockAdapter{} }

	_, err := NewRegistryWith(factory, nil, []schema.EntitySpec{{Name: "a"}, {Name: "a"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistryWith(factory, nil, []schema.EntitySpec{
		{Name: "a", References: []schema.ReferenceSpec{{IDField: "bId", StubField: "b", Source: "b"}}},
	})
	assert.ErrorContains(t, err, "unknown entity")
}

func TestRegistry_UnknownCache(t *testing.T) {
	reg, err := NewRegistry(&contract.Config{Mode: schema.OfflineMode}, newStore(t), nil, nil, schema.Catalog)
	require.NoError(t, err)
	_, err = reg.Cache("spaceships")
	assert.ErrorContains(t, err, "unknown entity")
}

func TestNewRegistry_RemoteStartup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/warehouses":
			_, _ = io.WriteString(w, `[{"_id":"w1","name":"Main","ID":"WH-0001"}]`)
		case "/api/payroll":
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			_, _ = io.WriteString(w, `{"data":[]}`)
		}
	}))
	defer srv.Close()

	cfg := &contract.Config{Mode: schema.RemoteMode, BaseURL: srv.URL, Timeout: 5 * time.Second}
	reporter := &contract.MockErrorReporter{}
	reporter.On("Report", "fetch payroll failed: unexpected status 403: forbidden").Once()

	reg, err := NewRegistry(cfg, nil, contract.StaticTokenSource("tkn"), reporter, schema.Catalog)
	require.NoError(t, err)

	agg := reg.Aggregator(8)
	require.NoError(t, agg.Run(context.Background()))
	assert.True(t, agg.Ready())

	failed := 0
	for _, s := range agg.Statuses() {
		if s.State == schema.FailedState {
			failed++
			assert.Equal(t, "payroll", s.Name)
		}
	}
	assert.Equal(t, 1, failed)

	warehouses, err := reg.Cache("warehouses")
	require.NoError(t, err)
	assert.Equal(t, 1, warehouses.Len())
	reporter.AssertExpectations(t)
}

func TestNewRegistry_NoneBackend(t *testing.T) {
	store, err := iocache.NewEntityStore("entity_store", schema.NoneBackend, "")
	require.NoError(t, err)

	reg, err := NewRegistry(&contract.Config{Mode: schema.OfflineMode}, store, nil, nil, schema.Catalog)
	require.NoError(t, err)
	require.NoError(t, reg.Aggregator(0).Run(context.Background()))
	for _, c := range reg.Caches() {
		assert.True(t, c.Fetched())
		assert.Equal(t, 0, c.Len())
	}
}

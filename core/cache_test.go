package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockCache(t *testing.T, name string) (*EntityCache, *contract.MockAdapter, *contract.MockErrorReporter) {
	t.Helper()
	spec, ok := schema.LookupEntity(name)
	require.True(t, ok)
	adapter := &contract.MockAdapter{}
	reporter := &contract.MockErrorReporter{}
	cache := NewEntityCache(CacheOptions{Entity: spec, Adapter: adapter, Reporter: reporter})
	return cache, adapter, reporter
}

// loaded returns a cache already holding records.
func loaded(t *testing.T, name string, records ...schema.Record) (*EntityCache, *contract.MockAdapter, *contract.MockErrorReporter) {
	t.Helper()
	cache, adapter, reporter := newMockCache(t, name)
	adapter.On("Load", mock.Anything).Return(records, nil).Once()
	require.NoError(t, cache.FetchAll(context.Background()))
	return cache, adapter, reporter
}

func TestFetchAll_Once(t *testing.T) {
	cache, adapter, _ := newMockCache(t, "warehouses")
	adapter.On("Load", mock.Anything).Return([]schema.Record{{"_id": "1"}}, nil).Once()

	ctx := context.Background()
	assert.False(t, cache.Fetched())
	require.NoError(t, cache.FetchAll(ctx))
	require.NoError(t, cache.FetchAll(ctx))

	assert.True(t, cache.Fetched())
	assert.Equal(t, 1, cache.Len())
	adapter.AssertNumberOfCalls(t, "Load", 1)
}

func TestFetchAll_Concurrent(t *testing.T) {
	cache, adapter, _ := newMockCache(t, "warehouses")
	adapter.On("Load", mock.Anything).Return([]schema.Record{}, nil).Once()

	done := make(chan error, 8)
	for range 8 {
		go func() { done <- cache.FetchAll(context.Background()) }()
	}
	for range 8 {
		assert.NoError(t, <-done)
	}
	adapter.AssertNumberOfCalls(t, "Load", 1)
}

func TestFetchAll_FailureIsReportedAndRetryable(t *testing.T) {
	cache, adapter, reporter := newMockCache(t, "warehouses")
	adapter.On("Load", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	adapter.On("Load", mock.Anything).Return([]schema.Record{{"_id": "1"}}, nil).Once()
	reporter.On("Report", "fetch warehouses failed: connection refused").Once()

	err := cache.FetchAll(context.Background())
	var be *contract.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "fetch", be.Op)
	assert.False(t, cache.Fetched())
	assert.Empty(t, cache.Snapshot())

	require.NoError(t, cache.FetchAll(context.Background()))
	assert.True(t, cache.Fetched())
	assert.Equal(t, 1, cache.Len())
	reporter.AssertExpectations(t)
}

func TestFetchAll_NilCollection(t *testing.T) {
	cache, adapter, _ := newMockCache(t, "warehouses")
	adapter.On("Load", mock.Anything).Return(nil, nil).Once()

	require.NoError(t, cache.FetchAll(context.Background()))
	assert.NotNil(t, cache.Snapshot())
	assert.Equal(t, 0, cache.Len())
}

func TestCreate_AppendsAuthoritativeRecord(t *testing.T) {
	cache, adapter, _ := loaded(t, "warehouses", schema.Record{"_id": "1"})
	adapter.On("Create", mock.Anything, mock.Anything, schema.Record{"name": "Main"}).
		Return(schema.Record{"_id": "srv-2", "name": "Main"}, nil).Once()

	rec, err := cache.Create(context.Background(), schema.Record{"name": "Main"})
	require.NoError(t, err)
	assert.Equal(t, "srv-2", rec.Identity())

	snap := cache.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "srv-2", snap[1].Identity())
	assert.True(t, cache.Fetched())
}

func TestCreate_FailureLeavesCollection(t *testing.T) {
	cache, adapter, reporter := loaded(t, "warehouses", schema.Record{"_id": "1"})
	adapter.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("422")).Once()
	reporter.On("Report", mock.AnythingOfType("string")).Once()

	before := cache.Snapshot()
	_, err := cache.Create(context.Background(), schema.Record{"name": "Main"})
	assert.Error(t, err)
	assert.Equal(t, before, cache.Snapshot())
	reporter.AssertExpectations(t)
}

func TestCreate_LoadsUnfetchedCache(t *testing.T) {
	cache, adapter, _ := newMockCache(t, "warehouses")
	existing := []schema.Record{{"_id": "1", "ID": "WH-0001"}}
	adapter.On("Load", mock.Anything).Return(existing, nil).Once()
	adapter.On("Create", mock.Anything, existing, schema.Record{"name": "Main"}).
		Return(schema.Record{"_id": "2", "ID": "WH-0002", "name": "Main"}, nil).Once()

	_, err := cache.Create(context.Background(), schema.Record{"name": "Main"})
	require.NoError(t, err)
	assert.True(t, cache.Fetched())
	assert.Equal(t, 2, cache.Len())
	adapter.AssertExpectations(t)
}

func TestWrites_AbortWhenLoadFails(t *testing.T) {
	cache, adapter, reporter := newMockCache(t, "warehouses")
	adapter.On("Load", mock.Anything).Return(nil, errors.New("connection refused")).Times(3)
	reporter.On("Report", "fetch warehouses failed: connection refused").Times(3)

	ctx := context.Background()
	var be *contract.BackendError

	_, err := cache.Create(ctx, schema.Record{"name": "Main"})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "fetch", be.Op)

	_, err = cache.Update(ctx, "1", schema.Record{"name": "Main"})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "fetch", be.Op)

	err = cache.Delete(ctx, "1")
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "fetch", be.Op)

	assert.False(t, cache.Fetched())
	adapter.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	adapter.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	adapter.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	reporter.AssertExpectations(t)
}

func TestCreate_DoesNotAliasInput(t *testing.T) {
	cache, adapter, _ := loaded(t, "warehouses")
	adapter.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(schema.Record{"_id": "1"}, nil).Once()

	input := schema.Record{"name": "Main"}
	_, err := cache.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"name": "Main"}, input)
}

func TestUpdate_ReplacesRecord(t *testing.T) {
	cache, adapter, _ := loaded(t, "warehouses", schema.Record{"_id": "1", "name": "Main"}, schema.Record{"_id": "2"})
	adapter.On("Update", mock.Anything, mock.Anything, "1", schema.Record{"name": "HQ"}).
		Return(schema.Record{"_id": "1", "name": "HQ", "version": float64(2)}, nil).Once()

	rec, err := cache.Update(context.Background(), "1", schema.Record{"name": "HQ"})
	require.NoError(t, err)
	assert.Equal(t, "HQ", rec["name"])

	got, ok := cache.Get("1")
	require.True(t, ok)
	assert.Equal(t, schema.Record{"_id": "1", "name": "HQ", "version": float64(2)}, got)
	assert.Equal(t, 2, cache.Len())
}

func TestUpdate_Missing(t *testing.T) {
	cache, adapter, reporter := loaded(t, "warehouses", schema.Record{"_id": "1"})

	_, err := cache.Update(context.Background(), "nope", schema.Record{"name": "x"})
	assert.ErrorIs(t, err, contract.ErrNotFound)
	adapter.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	reporter.AssertNotCalled(t, "Report", mock.Anything)
}

func TestUpdate_FailureLeavesCollection(t *testing.T) {
	cache, adapter, reporter := loaded(t, "warehouses", schema.Record{"_id": "1", "name": "Main"})
	adapter.On("Update", mock.Anything, mock.Anything, "1", mock.Anything).Return(nil, errors.New("timeout")).Once()
	reporter.On("Report", "update warehouses failed: timeout").Once()

	_, err := cache.Update(context.Background(), "1", schema.Record{"name": "x"})
	assert.Error(t, err)
	got, _ := cache.Get("1")
	assert.Equal(t, "Main", got["name"])
	reporter.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	cache, adapter, _ := loaded(t, "warehouses", schema.Record{"_id": "1"}, schema.Record{"_id": "2"})
	adapter.On("Delete", mock.Anything, mock.Anything, "1").Return(nil).Once()

	require.NoError(t, cache.Delete(context.Background(), "1"))
	assert.Equal(t, []schema.Record{{"_id": "2"}}, cache.Snapshot())
}

func TestDelete_Missing(t *testing.T) {
	cache, adapter, _ := loaded(t, "warehouses", schema.Record{"_id": "1", "name": "Main"})

	before := cache.Snapshot()
	require.NoError(t, cache.Delete(context.Background(), "nope"))
	assert.Equal(t, before, cache.Snapshot())
	adapter.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_FailureKeepsRecord(t *testing.T) {
	cache, adapter, reporter := loaded(t, "warehouses", schema.Record{"_id": "1"})
	adapter.On("Delete", mock.Anything, mock.Anything, "1").Return(errors.New("403")).Once()
	reporter.On("Report", "delete warehouses failed: 403").Once()

	assert.Error(t, cache.Delete(context.Background(), "1"))
	assert.Equal(t, 1, cache.Len())
	reporter.AssertExpectations(t)
}

func TestSnapshot_IsACopy(t *testing.T) {
	cache, _, _ := loaded(t, "warehouses", schema.Record{"_id": "1", "name": "Main"})

	snap := cache.Snapshot()
	snap[0]["name"] = "Changed"

	got, _ := cache.Get("1")
	assert.Equal(t, "Main", got["name"])
	assert.Equal(t, 1, cache.Len())
}

func TestDefaultReporter(t *testing.T) {
	cache := NewEntityCache(CacheOptions{Entity: schema.EntitySpec{Name: "x"}, Adapter: &contract.MockAdapter{}})
	assert.IsType(t, contract.StderrReporter{}, cache.reporter)
	assert.Equal(t, "x", cache.Name())
}

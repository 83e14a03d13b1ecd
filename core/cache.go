package core

import (
	"context"
	"slices"
	"sync"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
)

// CacheOptions configures a single EntityCache. Everything the cache needs is
// injected here; nothing is read from globals at call time.
type CacheOptions struct {
	Entity   schema.EntitySpec
	Adapter  contract.Adapter
	Reporter contract.ErrorReporter // defaults to contract.StderrReporter
}

// EntityCache holds the in-memory collection of one entity type and
// routes its CRUD operations through the configured adapter.
//
// Operations are serialized on opMu so only one load or write is in flight per
// cache. The collection itself is guarded by mu and replaced wholesale on every
// change, so Snapshot never observes a half-applied write and never waits on I/O.
type EntityCache struct {
	entity   schema.EntitySpec
	adapter  contract.Adapter
	reporter contract.ErrorReporter
	refs     []Reference

	opMu sync.Mutex

	mu      sync.RWMutex
	records []schema.Record
	fetched bool
}

// NewEntityCache returns an empty, unfetched cache.
func NewEntityCache(opts CacheOptions) *EntityCache {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = contract.StderrReporter{}
	}
	return &EntityCache{
		entity:   opts.Entity,
		adapter:  opts.Adapter,
		reporter: reporter,
		records:  []schema.Record{},
	}
}

// Name returns the catalog name of the cached entity.
func (c *EntityCache) Name() string { return c.entity.Name }

// Entity returns the catalog definition backing this cache.
func (c *EntityCache) Entity() schema.EntitySpec { return c.entity }

// Fetched reports whether the initial load has succeeded.
func (c *EntityCache) Fetched() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched
}

// Len returns the number of cached records.
func (c *EntityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Snapshot returns a copy of the collection. Records are cloned so callers
// may modify them freely.
func (c *EntityCache) Snapshot() []schema.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]schema.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Get returns a copy of the record with the given identity.
func (c *EntityCache) Get(id string) (schema.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := indexOf(c.records, id); idx >= 0 {
		return c.records[idx].Clone(), true
	}
	return nil, false
}

// SetReferences replaces the write-time references applied on create and update.
func (c *EntityCache) SetReferences(refs ...Reference) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.refs = refs
}

// FetchAll loads the collection once. Later calls are no-ops after a
// successful load. A failed load is reported, leaves the collection untouched
// and may be retried.
func (c *EntityCache) FetchAll(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.load(ctx)
}

// load runs the initial fetch when it has not succeeded yet. Callers hold opMu.
func (c *EntityCache) load(ctx context.Context) error {
	if c.Fetched() {
		return nil
	}

	records, err := c.adapter.Load(ctx)
	if err != nil {
		return c.fail("fetch", err)
	}
	if records == nil {
		records = []schema.Record{}
	}
	c.publish(records)
	return nil
}

// Create persists data and appends the resulting record.
// An unfetched cache is loaded first; if that load fails nothing is written.
// References named by the entity are resolved before the adapter is called.
func (c *EntityCache) Create(ctx context.Context, data schema.Record) (schema.Record, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.load(ctx); err != nil {
		return nil, err
	}

	payload := c.applyReferences(data.Clone())
	if payload == nil {
		payload = schema.Record{}
	}

	current := c.current()
	record, err := c.adapter.Create(ctx, current, payload)
	if err != nil {
		return nil, c.fail("create", err)
	}

	next := make([]schema.Record, 0, len(current)+1)
	next = append(next, current...)
	c.publish(append(next, record))
	return record.Clone(), nil
}

// Update applies partial to the record with the given identity.
// It returns contract.ErrNotFound without touching the backend when id is not cached.
func (c *EntityCache) Update(ctx context.Context, id string, partial schema.Record) (schema.Record, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.load(ctx); err != nil {
		return nil, err
	}

	current := c.current()
	idx := indexOf(current, id)
	if idx < 0 {
		return nil, contract.ErrNotFound
	}

	payload := c.applyReferences(partial.Clone())
	record, err := c.adapter.Update(ctx, current, id, payload)
	if err != nil {
		return nil, c.fail("update", err)
	}

	next := slices.Clone(current)
	next[idx] = record
	c.publish(next)
	return record.Clone(), nil
}

// Delete removes the record with the given identity.
// Deleting an identity that is not cached is a no-op.
func (c *EntityCache) Delete(ctx context.Context, id string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.load(ctx); err != nil {
		return err
	}

	current := c.current()
	idx := indexOf(current, id)
	if idx < 0 {
		return nil
	}

	if err := c.adapter.Delete(ctx, current, id); err != nil {
		return c.fail("delete", err)
	}

	c.publish(slices.Delete(slices.Clone(current), idx, idx+1))
	return nil
}

// current returns the live collection. Callers must not modify it.
func (c *EntityCache) current() []schema.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records
}

// publish swaps in a new collection and marks the cache fetched.
func (c *EntityCache) publish(records []schema.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.fetched = true
}

// fail wraps err, forwards its message to the reporter and returns it.
func (c *EntityCache) fail(op string, err error) error {
	be := &contract.BackendError{Op: op, Resource: c.entity.Name, Err: err}
	c.reporter.Report(be.Error())
	return be
}

func indexOf(records []schema.Record, id string) int {
	return slices.IndexFunc(records, func(r schema.Record) bool {
		return r.Identity() == id
	})
}

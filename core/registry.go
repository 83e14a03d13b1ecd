package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/offline"
	"github.com/huangsam/bizcache/internal/remote"
	"github.com/huangsam/bizcache/schema"
)

// Registry owns one EntityCache per catalog entry.
type Registry struct {
	caches []*EntityCache
	byName map[string]*EntityCache
}

// AdapterFactory builds the adapter for one entity.
type AdapterFactory func(entity schema.EntitySpec) contract.Adapter

// NewRegistry builds a cache for every entity in catalog using the adapter
// selected by cfg.Mode. Offline mode persists through store; remote mode
// authenticates with tokens.
func NewRegistry(cfg *contract.Config, store contract.KVStore, tokens contract.TokenSource, reporter contract.ErrorReporter, catalog []schema.EntitySpec) (*Registry, error) {
	factory, err := AdapterFactoryFor(cfg, store, tokens)
	if err != nil {
		return nil, err
	}
	return NewRegistryWith(factory, reporter, catalog)
}

// AdapterFactoryFor returns the adapter factory for the configured mode.
func AdapterFactoryFor(cfg *contract.Config, store contract.KVStore, tokens contract.TokenSource) (AdapterFactory, error) {
	switch cfg.Mode {
	case schema.OfflineMode:
		if store == nil {
			return nil, errors.New("offline mode requires a store backend")
		}
		return func(entity schema.EntitySpec) contract.Adapter {
			return offline.NewAdapter(store, entity)
		}, nil

	case schema.RemoteMode:
		if cfg.BaseURL == "" {
			return nil, errors.New("remote mode requires a base URL")
		}
		client := remote.NewClient(cfg.BaseURL, cfg.Timeout, tokens)
		return func(entity schema.EntitySpec) contract.Adapter {
			return remote.NewAdapter(client, entity.ResourcePath)
		}, nil

	default:
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
}

// NewRegistryWith builds caches with a caller-supplied adapter factory and
// wires the catalog references between them.
func NewRegistryWith(factory AdapterFactory, reporter contract.ErrorReporter, catalog []schema.EntitySpec) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*EntityCache, len(catalog))}
	for _, entity := range catalog {
		if _, dup := reg.byName[entity.Name]; dup {
			return nil, fmt.Errorf("duplicate entity %q", entity.Name)
		}
		cache := NewEntityCache(CacheOptions{
			Entity:   entity,
			Adapter:  factory(entity),
			Reporter: reporter,
		})
		reg.caches = append(reg.caches, cache)
		reg.byName[entity.Name] = cache
	}

	// Second pass: every source must exist before references can bind
	for _, cache := range reg.caches {
		refs := make([]Reference, 0, len(cache.entity.References))
		for _, spec := range cache.entity.References {
			source, ok := reg.byName[spec.Source]
			if !ok {
				return nil, fmt.Errorf("entity %q references unknown entity %q", cache.Name(), spec.Source)
			}
			refs = append(refs, Reference{Field: spec.IDField, StubField: spec.StubField, Source: source})
		}
		cache.SetReferences(refs...)
	}
	return reg, nil
}

// Cache returns the cache for name.
func (r *Registry) Cache(name string) (*EntityCache, error) {
	cache, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown entity %q. Run 'bizcache entities' to list them", name)
	}
	return cache, nil
}

// Caches returns every cache in catalog order.
func (r *Registry) Caches() []*EntityCache {
	return r.caches
}

// FetchReferenced loads the sources of cache's references so stubs can resolve
// on the next write. A source that fails to load leaves its stubs unresolved;
// only a cancelled ctx is returned.
func (r *Registry) FetchReferenced(ctx context.Context, cache *EntityCache) error {
	for _, spec := range cache.Entity().References {
		source, err := r.Cache(spec.Source)
		if err != nil {
			return err
		}
		if err := source.FetchAll(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// Aggregator returns a fresh startup aggregator over every cache.
func (r *Registry) Aggregator(workers int) *Aggregator {
	fetchers := make([]Fetcher, 0, len(r.caches))
	for _, c := range r.caches {
		fetchers = append(fetchers, c)
	}
	return NewAggregator(workers, fetchers...)
}

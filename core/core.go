// Package core has the entity caches, reference resolution and the startup aggregator.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/outwriter"
	"github.com/huangsam/bizcache/schema"
)

// writer renders every command result.
var writer = outwriter.NewOutWriter()

// ExecuteEntities prints the entity catalog known to the registry.
func ExecuteEntities(_ context.Context, cfg *contract.Config, reg *Registry) error {
	entities := make([]schema.EntitySpec, 0, len(reg.Caches()))
	for _, c := range reg.Caches() {
		entities = append(entities, c.Entity())
	}
	return writer.WriteEntities(entities, cfg)
}

// ExecuteList loads one entity and prints its collection.
// It serves as the main entry point for the 'list' command.
func ExecuteList(ctx context.Context, cfg *contract.Config, reg *Registry, name string) error {
	start := time.Now()
	cache, err := fetched(ctx, reg, name)
	if err != nil {
		return err
	}
	return writer.WriteRecords(cache.Entity(), cache.Snapshot(), cfg, time.Since(start))
}

// ExecuteGet loads one entity and prints a single record.
func ExecuteGet(ctx context.Context, cfg *contract.Config, reg *Registry, name, id string) error {
	start := time.Now()
	cache, err := fetched(ctx, reg, name)
	if err != nil {
		return err
	}
	record, ok := cache.Get(id)
	if !ok {
		return fmt.Errorf("%s %q: %w", name, id, contract.ErrNotFound)
	}
	return writer.WriteRecords(cache.Entity(), []schema.Record{record}, cfg, time.Since(start))
}

// ExecuteCreate loads one entity, creates a record and prints it.
func ExecuteCreate(ctx context.Context, cfg *contract.Config, reg *Registry, name string, data schema.Record) error {
	start := time.Now()
	cache, err := fetched(ctx, reg, name)
	if err != nil {
		return err
	}
	if err := reg.FetchReferenced(ctx, cache); err != nil {
		return err
	}
	record, err := cache.Create(ctx, data)
	if err != nil {
		return err
	}
	return writer.WriteRecords(cache.Entity(), []schema.Record{record}, cfg, time.Since(start))
}

// ExecuteUpdate loads one entity, applies a partial update and prints the result.
func ExecuteUpdate(ctx context.Context, cfg *contract.Config, reg *Registry, name, id string, partial schema.Record) error {
	start := time.Now()
	cache, err := fetched(ctx, reg, name)
	if err != nil {
		return err
	}
	if err := reg.FetchReferenced(ctx, cache); err != nil {
		return err
	}
	record, err := cache.Update(ctx, id, partial)
	if err != nil {
		return err
	}
	return writer.WriteRecords(cache.Entity(), []schema.Record{record}, cfg, time.Since(start))
}

// ExecuteDelete loads one entity, deletes a record and prints what remains.
func ExecuteDelete(ctx context.Context, cfg *contract.Config, reg *Registry, name, id string) error {
	start := time.Now()
	cache, err := fetched(ctx, reg, name)
	if err != nil {
		return err
	}
	if err := cache.Delete(ctx, id); err != nil {
		return err
	}
	return writer.WriteRecords(cache.Entity(), cache.Snapshot(), cfg, time.Since(start))
}

// ExecuteStartup loads every entity concurrently and prints the per-entity outcome.
// Individual failures are part of the report, not an error.
func ExecuteStartup(ctx context.Context, cfg *contract.Config, reg *Registry) error {
	start := time.Now()
	agg := reg.Aggregator(cfg.Workers)
	if err := agg.Run(ctx); err != nil {
		return err
	}
	return writer.WriteStatuses(agg.Statuses(), cfg, time.Since(start))
}

// fetched returns the named cache after its collection has been loaded.
func fetched(ctx context.Context, reg *Registry, name string) (*EntityCache, error) {
	cache, err := reg.Cache(name)
	if err != nil {
		return nil, err
	}
	if err := cache.FetchAll(ctx); err != nil {
		return nil, err
	}
	return cache, nil
}

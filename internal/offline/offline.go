// Package offline implements the entity adapter backed by the durable key/value store.
// Each entity's collection lives under one key as a JSON array.
package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/bizcache/core/algo"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
)

// currentStoreVersion is bumped whenever the persisted layout changes.
const currentStoreVersion = 1

// Clock returns the current time. Tests swap it for a deterministic one.
type Clock func() time.Time

// Adapter persists one entity's collection in a KVStore.
type Adapter struct {
	store  contract.KVStore
	entity schema.EntitySpec
	now    Clock
}

var _ contract.Adapter = &Adapter{} // Compile-time check

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the clock used for identities and write timestamps.
func WithClock(c Clock) Option {
	return func(a *Adapter) { a.now = c }
}

// NewAdapter returns an adapter reading and writing entity.StorageKey in store.
func NewAdapter(store contract.KVStore, entity schema.EntitySpec, opts ...Option) *Adapter {
	a := &Adapter{store: store, entity: entity, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load decodes the stored collection. A missing entry is an empty collection.
func (a *Adapter) Load(_ context.Context) ([]schema.Record, error) {
	data, version, _, err := a.store.Get(a.entity.StorageKey)
	if errors.Is(err, sql.ErrNoRows) {
		return []schema.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.entity.StorageKey, err)
	}
	if version != currentStoreVersion {
		return nil, fmt.Errorf("stored %s has version %d, want %d. Run 'bizcache store clear' to reset", a.entity.StorageKey, version, currentStoreVersion)
	}
	return decode(data)
}

// Create assigns a timestamp identity and, when the entity has a prefix, the
// next sequential code, then persists the extended collection.
func (a *Adapter) Create(_ context.Context, current []schema.Record, data schema.Record) (schema.Record, error) {
	record := a.entity.DefaultsCopy().Merge(data)
	record[schema.IdentityField] = a.nextIdentity(current)
	if code := algo.NextCode(a.entity.IDPrefix, current); code != "" {
		record[schema.CodeField] = code
	}

	next := append(slices.Clone(current), record)
	if err := a.save(next); err != nil {
		return nil, err
	}
	return record, nil
}

// Update shallow-merges partial into the record with the given identity.
// The identity itself can not be changed.
func (a *Adapter) Update(_ context.Context, current []schema.Record, id string, partial schema.Record) (schema.Record, error) {
	idx := indexOf(current, id)
	if idx < 0 {
		return nil, contract.ErrNotFound
	}

	merged := current[idx].Merge(partial.WithoutIdentity())
	next := slices.Clone(current)
	next[idx] = merged
	if err := a.save(next); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete drops the record with the given identity and persists the rest.
func (a *Adapter) Delete(_ context.Context, current []schema.Record, id string) error {
	idx := indexOf(current, id)
	if idx < 0 {
		return nil
	}
	return a.save(slices.Delete(slices.Clone(current), idx, idx+1))
}

// nextIdentity returns the current millisecond timestamp, bumped past any
// identity already in use.
func (a *Adapter) nextIdentity(current []schema.Record) string {
	ms := a.now().UnixMilli()
	for indexOf(current, strconv.FormatInt(ms, 10)) >= 0 {
		ms++
	}
	return strconv.FormatInt(ms, 10)
}

// save writes the whole collection under the entity's storage key.
func (a *Adapter) save(records []schema.Record) error {
	data, err := encode(records)
	if err != nil {
		return err
	}
	if err := a.store.Set(a.entity.StorageKey, data, currentStoreVersion, a.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.entity.StorageKey, err)
	}
	return nil
}

func indexOf(records []schema.Record, id string) int {
	return slices.IndexFunc(records, func(r schema.Record) bool {
		return r.Identity() == id
	})
}

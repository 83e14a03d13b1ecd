package core

import "github.com/huangsam/bizcache/schema"

// Snapshotter exposes a read-only copy of a sibling collection.
type Snapshotter interface {
	Snapshot() []schema.Record
}

// Reference binds a foreign-key field to the cache it points into.
// On create and update, a string id in Field is looked up in Source and a
// display stub is embedded under StubField. Embedded stubs are never
// refreshed, so renaming the source record later leaves them stale.
type Reference struct {
	Field     string
	StubField string
	Source    Snapshotter
}

// Resolve finds foreignID in snapshot and returns its display stub.
// It reports false when the id is empty or not present, e.g. because the
// sibling has not finished loading yet.
func Resolve(snapshot []schema.Record, foreignID string) (schema.Stub, bool) {
	if foreignID == "" {
		return schema.Stub{}, false
	}
	for _, r := range snapshot {
		if r.Identity() == foreignID {
			return schema.NewStub(r), true
		}
	}
	return schema.Stub{}, false
}

// applyReferences embeds stubs for every reference whose id field is present.
// A reference that can not be resolved is set to nil.
func (c *EntityCache) applyReferences(data schema.Record) schema.Record {
	for _, ref := range c.refs {
		raw, ok := data[ref.Field]
		if !ok || ref.Source == nil {
			continue
		}
		id := schema.Record{schema.IdentityField: raw}.Identity()
		if stub, found := Resolve(ref.Source.Snapshot(), id); found {
			data[ref.StubField] = stub.AsRecord()
		} else {
			data[ref.StubField] = nil
		}
	}
	return data
}

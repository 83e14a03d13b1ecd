package schema

import (
	"fmt"
	"maps"
	"strconv"
)

// Record is a single domain entity. Only identity (_id) and the optional
// human-readable code (ID) are meaningful to the cache layer.
type Record map[string]any

// Identity returns the record's _id as a string, or "" when absent.
func (r Record) Identity() string {
	return stringField(r, IdentityField)
}

// Code returns the record's human-readable code, or "" when absent.
func (r Record) Code() string {
	return stringField(r, CodeField)
}

// DisplayName returns the name field, falling back to title.
func (r Record) DisplayName() string {
	if name := stringField(r, NameField); name != "" {
		return name
	}
	return stringField(r, TitleField)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Merge returns a new record holding r with partial shallow-merged on top.
// Fields in partial win on overlap.
func (r Record) Merge(partial Record) Record {
	merged := make(Record, len(r)+len(partial))
	maps.Copy(merged, r)
	maps.Copy(merged, partial)
	return merged
}

// WithoutIdentity returns a copy with _id removed, i.e. the unpersisted fields.
func (r Record) WithoutIdentity() Record {
	out := r.Clone()
	delete(out, IdentityField)
	return out
}

// stringField normalizes ids that arrive as JSON numbers.
func stringField(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// Stub is a denormalized copy of a related record's display fields.
// A stub is never refreshed after it is embedded; edits to the source record
// are not propagated.
type Stub struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Code  string `json:"ID,omitempty"`
}

// NewStub builds a stub from the display fields of a record.
func NewStub(r Record) Stub {
	return Stub{
		ID:    r.Identity(),
		Name:  stringField(r, NameField),
		Title: stringField(r, TitleField),
		Code:  r.Code(),
	}
}

// AsRecord converts the stub to the map form embedded inside records.
func (s Stub) AsRecord() Record {
	out := Record{IdentityField: s.ID}
	if s.Name != "" {
		out[NameField] = s.Name
	}
	if s.Title != "" {
		out[TitleField] = s.Title
	}
	if s.Code != "" {
		out[CodeField] = s.Code
	}
	return out
}

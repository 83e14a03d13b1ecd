package offline

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/bizcache/schema"
)

// encode serializes a collection as a JSON array. A nil collection is stored as [].
func encode(records []schema.Record) ([]byte, error) {
	if records == nil {
		records = []schema.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

// decode parses a stored JSON array. Empty input is an empty collection.
func decode(data []byte) ([]schema.Record, error) {
	if len(data) == 0 {
		return []schema.Record{}, nil
	}
	var records []schema.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	if records == nil {
		records = []schema.Record{}
	}
	return records, nil
}

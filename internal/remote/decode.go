package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/bizcache/schema"
)

// envelope is the {"data": ...} wrapper some endpoints respond with.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeList accepts either a bare JSON array or {"data": [...]}.
func decodeList(body []byte) ([]schema.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if env.Data == nil {
			return nil, errors.New("decode response: object without data field")
		}
		body = env.Data
	}

	var records []schema.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if records == nil {
		records = []schema.Record{}
	}
	return records, nil
}

// decodeOne accepts a record or {"data": record}. The result must carry an identity.
func decodeOne(body []byte) (schema.Record, error) {
	var record schema.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if inner, ok := record["data"].(map[string]any); ok && record.Identity() == "" {
		record = schema.Record(inner)
	}
	if record.Identity() == "" {
		return nil, errors.New("decode response: record without _id")
	}
	return record, nil
}

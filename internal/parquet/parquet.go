// Package parquet exports cached entity collections and startup status to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/bizcache/schema"
	"github.com/parquet-go/parquet-go"
)

// EntityRow is one cached record flattened for columnar export.
// Fields beyond identity are opaque, so they travel as a JSON payload.
type EntityRow struct {
	// Entity is the catalog name, e.g. "warehouses"
	Entity string `parquet:"entity,snappy,dict"`

	// RecordID is the record identity (_id)
	RecordID string `parquet:"record_id,snappy"`

	// Code is the human-readable code such as WH-0001 (nullable)
	Code *string `parquet:"code,optional,snappy"`

	// DisplayName is the name or title field (nullable)
	DisplayName *string `parquet:"display_name,optional,snappy"`

	// Payload is the full record encoded as JSON
	Payload string `parquet:"payload,snappy"`

	// ExportedAt is when the row was written
	ExportedAt time.Time `parquet:"exported_at,snappy"`
}

// StatusRow is the startup outcome of one entity cache.
type StatusRow struct {
	Entity     string  `parquet:"entity,snappy,dict"`
	State      string  `parquet:"state,snappy,dict"`
	Count      int32   `parquet:"count,snappy"`
	DurationMs int64   `parquet:"duration_ms,snappy"`
	Error      *string `parquet:"error,optional,snappy"`
}

// ToEntityRows converts records of one entity into export rows.
func ToEntityRows(entity string, records []schema.Record, exportedAt time.Time) ([]EntityRow, error) {
	rows := make([]EntityRow, 0, len(records))
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", r.Identity(), err)
		}
		rows = append(rows, EntityRow{
			Entity:      entity,
			RecordID:    r.Identity(),
			Code:        optional(r.Code()),
			DisplayName: optional(r.DisplayName()),
			Payload:     string(payload),
			ExportedAt:  exportedAt,
		})
	}
	return rows, nil
}

// ToStatusRows converts aggregator statuses into export rows.
func ToStatusRows(statuses []schema.ResourceStatus) []StatusRow {
	rows := make([]StatusRow, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, StatusRow{
			Entity:     s.Name,
			State:      string(s.State),
			Count:      int32(s.Count),
			DurationMs: s.Duration.Milliseconds(),
			Error:      optional(s.Error),
		})
	}
	return rows
}

// WriteEntityRowsParquet writes entity rows to a Parquet file.
func WriteEntityRowsParquet(data []EntityRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteStatusRowsParquet writes status rows to a Parquet file.
func WriteStatusRowsParquet(data []StatusRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using struct schema inference from the row tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

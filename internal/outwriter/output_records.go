package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/parquet"
	"github.com/huangsam/bizcache/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteRecordResults outputs an entity collection, dispatching based on the output format configured.
func WriteRecordResults(entity schema.EntitySpec, records []schema.Record, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordCSV(w, records)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows, err := parquet.ToEntityRows(entity.Name, records, time.Now())
		if err != nil {
			return err
		}
		if err := parquet.WriteEntityRowsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordTable(w, entity, records, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRecordTable generates and writes the human-readable table.
func writeRecordTable(w io.Writer, entity schema.EntitySpec, records []schema.Record, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Identity", "Code", "Name", "Details"})

	detailWidth := getMaxDetailWidth(cfg)
	var data [][]string
	for i, r := range records {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Identity(),
			r.Code(),
			contract.TruncateText(r.DisplayName(), 30),
			contract.TruncateText(formatDetails(r), detailWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d %s records\n", len(records), entity.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed in %v. Mode: %s\n", duration.Round(time.Millisecond), cfg.Mode); err != nil {
		return err
	}
	return nil
}

// writeRecordCSV writes one row per record. Columns are the identity, code and
// name followed by every other field seen, in sorted order.
func writeRecordCSV(w io.Writer, records []schema.Record) error {
	leading := []string{schema.IdentityField, schema.CodeField, schema.NameField}
	extra := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			if !slices.Contains(leading, k) {
				extra[k] = struct{}{}
			}
		}
	}
	header := slices.Concat(leading, slices.Sorted(maps.Keys(extra)))

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := make([]string, len(header))
			for i, k := range header {
				row[i] = formatValue(r[k])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatDetails renders the fields beyond identity, code and name as compact JSON.
func formatDetails(r schema.Record) string {
	rest := r.WithoutIdentity()
	delete(rest, schema.CodeField)
	delete(rest, schema.NameField)
	if len(rest) == 0 {
		return ""
	}
	return formatValue(rest)
}

// formatValue renders a field value for a single table or CSV cell.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

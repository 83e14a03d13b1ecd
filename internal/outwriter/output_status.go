package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/parquet"
	"github.com/huangsam/bizcache/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteStatusResults outputs the startup status, dispatching based on the output format configured.
func WriteStatusResults(statuses []schema.ResourceStatus, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, statuses)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusCSV(w, statuses)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteStatusRowsParquet(parquet.ToStatusRows(statuses), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusTable(w, statuses, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeStatusTable generates and writes the human-readable startup table.
func writeStatusTable(w io.Writer, statuses []schema.ResourceStatus, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Entity", "State", "Records", "Time", "Error"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	loaded, failed := 0, 0
	var data [][]string
	for _, s := range statuses {
		switch s.State {
		case schema.LoadedState:
			loaded++
		case schema.FailedState:
			failed++
		}
		data = append(data, []string{
			s.Name,
			label(s.State),
			strconv.Itoa(s.Count),
			s.Duration.Round(time.Millisecond).String(),
			contract.TruncateText(s.Error, getMaxDetailWidth(cfg)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Ready: %d loaded, %d failed of %d entities\n", loaded, failed, len(statuses)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Startup completed in %v with %d workers. Mode: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.Mode); err != nil {
		return err
	}
	return nil
}

// writeStatusCSV writes the startup status in CSV format.
func writeStatusCSV(w io.Writer, statuses []schema.ResourceStatus) error {
	header := []string{"entity", "state", "records", "duration_ms", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range statuses {
			rec := []string{
				s.Name,
				string(s.State),
				strconv.Itoa(s.Count),
				strconv.FormatInt(s.Duration.Milliseconds(), 10),
				s.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

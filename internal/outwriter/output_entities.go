package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/olekukonko/tablewriter"
)

// entityView is the serialized shape of one catalog entry.
type entityView struct {
	Name         string        `json:"name"`
	ResourcePath string        `json:"resource_path"`
	StorageKey   string        `json:"storage_key"`
	IDPrefix     string        `json:"id_prefix,omitempty"`
	Defaults     schema.Record `json:"defaults,omitempty"`
	References   []string      `json:"references,omitempty"`
}

func newEntityView(e schema.EntitySpec) entityView {
	refs := make([]string, 0, len(e.References))
	for _, r := range e.References {
		refs = append(refs, fmt.Sprintf("%s->%s", r.IDField, r.Source))
	}
	return entityView{
		Name:         e.Name,
		ResourcePath: e.ResourcePath,
		StorageKey:   e.StorageKey,
		IDPrefix:     e.IDPrefix,
		Defaults:     e.Defaults,
		References:   refs,
	}
}

// WriteEntityCatalog outputs the catalog, dispatching based on the output format configured.
// Parquet is not offered for the catalog and falls back to the table.
func WriteEntityCatalog(entities []schema.EntitySpec, cfg *contract.Config) error {
	views := make([]entityView, 0, len(entities))
	for _, e := range entities {
		views = append(views, newEntityView(e))
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, views)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntityCSV(w, views)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntityTable(w, views)
		}, "Wrote table")
	}
}

// writeEntityTable generates and writes the human-readable catalog table.
func writeEntityTable(w io.Writer, views []entityView) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Entity", "Resource", "Prefix", "References"})
	var data [][]string
	for _, v := range views {
		data = append(data, []string{v.Name, "/api/" + v.ResourcePath, v.IDPrefix, strings.Join(v.References, ", ")})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d entities\n", len(views))
	return err
}

// writeEntityCSV writes the catalog in CSV format.
func writeEntityCSV(w io.Writer, views []entityView) error {
	header := []string{"entity", "resource_path", "storage_key", "id_prefix", "references"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range views {
			if err := cw.Write([]string{v.Name, v.ResourcePath, v.StorageKey, v.IDPrefix, strings.Join(v.References, "|")}); err != nil {
				return err
			}
		}
		return nil
	})
}

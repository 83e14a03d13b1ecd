package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/bizcache/core"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/spf13/cobra"
)

// entitiesCmd lists the catalog.
var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List every cached entity type.",
	Long: `Show the entity catalog: resource path, offline storage key, code prefix,
creation defaults and the foreign keys that get embedded as display stubs.

Examples:
  bizcache entities
  bizcache entities --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEntities(rootCtx, cfg, registry); err != nil {
			contract.LogFatal("Cannot list entities", err)
		}
	},
}

// listCmd prints one collection.
var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "Show every record of an entity.",
	Long: `Load an entity collection once and print it.

Examples:
  # Offline store in the default SQLite file
  bizcache list warehouses

  # Remote service
  BIZCACHE_API_TOKEN=... bizcache list contacts --mode remote --base-url https://erp.example.com

  # Export to Parquet for analysis
  bizcache list products --output parquet --output-file products.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteList(rootCtx, cfg, registry, args[0]); err != nil {
			contract.LogFatal("Cannot list records", err)
		}
	},
}

// getCmd prints one record.
var getCmd = &cobra.Command{
	Use:     "get <entity> <id>",
	Short:   "Show a single record by its _id.",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteGet(rootCtx, cfg, registry, args[0], args[1]); err != nil {
			contract.LogFatal("Cannot get record", err)
		}
	},
}

// createCmd creates a record.
var createCmd = &cobra.Command{
	Use:   "create <entity>",
	Short: "Create a record.",
	Long: `Create a record in an entity collection.

In offline mode the record gets a generated _id and, for entities with a code
prefix, the next code such as WH-0004. Foreign keys (e.g. warehouseId) are
embedded as a display stub of the referenced record.

Examples:
  bizcache create warehouses --set name=Main --set location=Lahore
  bizcache create stock-adjustments --set warehouseId=1700000000000 --set qty=5
  bizcache create contacts --data '{"name":"Sara","tags":["vip"]}'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := recordFlags(cmd)
		if err != nil {
			return err
		}
		if err := core.ExecuteCreate(rootCtx, cfg, registry, args[0], data); err != nil {
			contract.LogFatal("Cannot create record", err)
		}
		return nil
	},
}

// updateCmd applies a partial update.
var updateCmd = &cobra.Command{
	Use:   "update <entity> <id>",
	Short: "Update fields of an existing record.",
	Long: `Apply a partial update to a record. Fields not named keep their values.

Examples:
  bizcache update warehouses 1700000000000 --set location=Karachi
  bizcache update leaves 1700000000001 --set status=approved`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		partial, err := recordFlags(cmd)
		if err != nil {
			return err
		}
		if len(partial) == 0 {
			return fmt.Errorf("nothing to update: pass --set or --data")
		}
		if err := core.ExecuteUpdate(rootCtx, cfg, registry, args[0], args[1], partial); err != nil {
			contract.LogFatal("Cannot update record", err)
		}
		return nil
	},
}

// deleteCmd removes a record.
var deleteCmd = &cobra.Command{
	Use:     "delete <entity> <id>",
	Short:   "Delete a record. Unknown ids are ignored.",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDelete(rootCtx, cfg, registry, args[0], args[1]); err != nil {
			contract.LogFatal("Cannot delete record", err)
		}
	},
}

// startupCmd runs the startup aggregator.
var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Load every entity and report readiness.",
	Long: `Load every entity collection concurrently, the way an application does at
startup, and report the per-entity outcome. Failed loads are reported but do
not block readiness.

Examples:
  bizcache startup --workers 4
  bizcache startup --mode remote --base-url https://erp.example.com --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStartup(rootCtx, cfg, registry); err != nil {
			contract.LogFatal("Startup interrupted", err)
		}
	},
}

// recordFlags builds record fields from --data and repeated --set flags.
func recordFlags(cmd *cobra.Command) (schema.Record, error) {
	raw, err := cmd.Flags().GetString("data")
	if err != nil {
		return nil, err
	}
	sets, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, err
	}
	return parseFields(raw, sets)
}

// parseFields merges a JSON object with key=value assignments.
// Each value is decoded as JSON when it parses and kept as a string otherwise.
func parseFields(raw string, sets []string) (schema.Record, error) {
	fields := schema.Record{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
		if fields == nil {
			return nil, fmt.Errorf("invalid --data: must be a JSON object")
		}
	}
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		fields[key] = v
	}
	return fields, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/iocache"
	"github.com/huangsam/bizcache/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on offline store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by record commands. This avoids mode validation
// and registry construction for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the offline entity store",
	Long: `Manage the durable store that backs offline mode.

Every entity collection is kept as one versioned JSON document keyed by its
storage key (e.g. warehouses).

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all offline data
  migrate - Run schema migrations

Examples:
  # Check store status
  bizcache store status

  # Start over with empty collections
  bizcache store clear`,
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all offline entity data",
	Long: `Delete all offline entity collections from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store table

Examples:
  # Clear SQLite store (default)
  bizcache store clear

  # Clear MySQL store (set connection string via env variable)
  BIZCACHE_STORE_BACKEND=mysql BIZCACHE_STORE_DB_CONNECT="..." bizcache store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the offline store.

Displays:
- Backend type and connection status
- Number of stored entity collections
- Last and oldest write timestamps
- Store table size

Examples:
  # Check store status
  bizcache store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to initialize store", err)
		}
		status, err := iocache.Manager.GetEntityStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeMigrateCmd runs schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the offline store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  bizcache store migrate

  # Rollback to the initial state
  bizcache store migrate --target-version 0`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateStore(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

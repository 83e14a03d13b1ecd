// Package cmd defines the command-line interface for bizcache.
package cmd

import (
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(startupCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("mode", string(schema.OfflineMode), "Cache mode: remote or offline")
	rootCmd.PersistentFlags().String("base-url", "", "Service root for remote mode (e.g., https://erp.example.com)")
	rootCmd.PersistentFlags().String("api-token", "", "Bearer token for remote mode (prefer BIZCACHE_API_TOKEN)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Per-request timeout for remote mode")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Cap on concurrent startup loads (0 = no cap)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Offline store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Record fields are read straight from the command flags, not Viper
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringArray("set", nil, "Field assignment key=value (repeatable). Values are parsed as JSON when possible")
		c.Flags().String("data", "", "Record fields as a JSON object. --set values win on conflict")
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

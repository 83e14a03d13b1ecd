package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/bizcache/core"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/iocache"
	"github.com/huangsam/bizcache/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// registry holds one entity cache per catalog entry once sharedSetup has run.
var registry *core.Registry

// storeManager is the global offline store manager instance.
var storeManager contract.StoreManager = iocache.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "bizcache",
	Short:              "Cache business entities from a REST service or an offline store.",
	Long:               `Bizcache keeps one in-memory collection per business entity, backed by a remote REST service or a durable offline store.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("BIZCACHE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("mode", schema.OfflineMode)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("timeout", contract.DefaultTimeout.String())
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
}

// setConfigFile points Viper at --config or the default .bizcache.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".bizcache") // Name of config file (without extension)
	viper.SetConfigType("yaml")      // We'll use YAML format
	viper.AddConfigPath(".")         // Look in the current directory
	viper.AddConfigPath("$HOME")     // Look in the home directory
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and builds the entity registry.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Offline mode needs the durable store before any adapter is built.
	if cfg.Mode == schema.OfflineMode {
		if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			return fmt.Errorf("failed to initialize offline store: %w", err)
		}
	}

	if cfg.Output == schema.TextOut {
		contract.LogModeHeader(os.Stderr, cfg)
	}

	reg, err := buildRegistry(cfg, storeManager)
	if err != nil {
		return err
	}
	registry = reg
	return nil
}

// buildRegistry wires one entity cache per catalog entry for the configured mode.
func buildRegistry(cfg *contract.Config, mgr contract.StoreManager) (*core.Registry, error) {
	var store contract.KVStore
	if cfg.Mode == schema.OfflineMode {
		store = mgr.GetEntityStore()
	}

	var tokens contract.TokenSource
	if cfg.APIToken != "" {
		tokens = contract.StaticTokenSource(cfg.APIToken)
	}

	reg, err := core.NewRegistry(cfg, store, tokens, contract.StderrReporter{}, schema.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build entity caches: %w", err)
	}
	return reg, nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

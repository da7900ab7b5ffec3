// Package cli implements the kvlite command line interface using cobra.
//
// Every command resolves the target database from, in order: the --db
// flag, the storage.path config value, and finally ~/.kvlite/kvlite.db.
// Errors are returned to cobra for printing; nothing is logged.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/persistdb/kvlite/internal/adapters/driven/codec"
	"github.com/persistdb/kvlite/internal/adapters/driven/config/file"
	"github.com/persistdb/kvlite/internal/adapters/driven/storage/sqlite"
	"github.com/persistdb/kvlite/internal/core/ports/driven"
	"github.com/persistdb/kvlite/internal/logger"
)

var (
	dbPath    string
	walMode   bool
	codecName string
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "kvlite",
	Short: "Durable key-value storage for command line tools",
	Long: `kvlite stores key-value pairs in a single SQLite file.

It is meant for small-scale local persistence: resuming interrupted
operations, caching state between runs, simple configuration.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", false, "enable write-ahead journaling (sticks to the file once set)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "", "value codec: none, json, zstd or gob")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.kvlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print store resolution details to stderr")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig opens the TOML config store for the configured directory.
func loadConfig() (driven.ConfigStore, error) {
	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the target database, resolving flags against config
// defaults. The caller owns the returned store and must Close it.
func openStore() (driven.KVStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	path := dbPath
	if path == "" {
		path = cfg.GetString("storage.path")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".kvlite", "kvlite.db")
	}

	name := codecName
	if configured := cfg.GetString("storage.codec"); name == "" {
		name = configured
	} else if configured != "" && configured != name {
		logger.Warn("--codec %s overrides configured codec %s; values written with one codec are unreadable with the other", name, configured)
	}
	serialize, deserialize, err := codec.ByName(name)
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved store path %s (codec=%q)", path, name)

	var opts []sqlite.Option
	if walMode || cfg.GetBool("storage.wal") {
		logger.Debug("write-ahead journaling requested")
		opts = append(opts, sqlite.WithWAL())
	}
	if serialize != nil {
		opts = append(opts, sqlite.WithSerializer(serialize))
	}
	if deserialize != nil {
		opts = append(opts, sqlite.WithDeserializer(deserialize))
	}

	store, err := sqlite.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

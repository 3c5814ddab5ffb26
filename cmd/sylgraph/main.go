// Package main provides the sylgraph CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/config"
	"github.com/syllabus-viz/sylgraph/internal/loader"
	"github.com/syllabus-viz/sylgraph/internal/logger"
	"github.com/syllabus-viz/sylgraph/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (like missing required flags) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sylgraph",
	Short: "Course relationship graph viewer",
	Long: `sylgraph renders the relationships between courses in a syllabus as an
interactive graph.

It reads two CSV sources, a syllabus (one row per course) and a relation list
(source, target, type), from local paths or http(s) URLs. The graph can be
served as a live page with a JSON API, or written as a self-contained HTML file.

All commands output JSON by default. Use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/sylgraph/config.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustSetupLogger configures the global logger from cfg, exits on error.
func mustSetupLogger(cfg *config.Config) zerolog.Logger {
	lgr, err := logger.Configure(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	if err != nil {
		exitWithError(ExitConfigError, "configuring logger: %v", err)
	}
	return lgr
}

// loadDataset reads both sources. Unavailable sources degrade to empty collections
// and are reported in the returned Dataset.
func loadDataset(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) loader.Dataset {
	l := loader.New(
		loader.WithTimeout(cfg.FetchTimeout),
		loader.WithLogger(lgr),
	)
	return l.LoadDataset(ctx, cfg.Syllabus, cfg.Relations)
}

// mustLoadCatalog loads config, logger and both sources into a catalog.
func mustLoadCatalog(ctx context.Context) (*config.Config, *catalog.Catalog) {
	cfg := mustLoadConfig()
	lgr := mustSetupLogger(cfg)
	ds := loadDataset(ctx, cfg, lgr)
	return cfg, catalog.New(ds.Courses, ds.Relations)
}

// mustBuildIndex opens a SQLite index at path and fills it from cat, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustBuildIndex(path string, cat *catalog.Catalog) *storage.DB {
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	if _, err := db.RebuildFromCatalog(cat); err != nil {
		db.Close()
		exitWithError(ExitError, "building index: %v", err)
	}
	return db
}

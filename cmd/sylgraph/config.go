package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syllabus-viz/sylgraph/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Show the configuration after defaults, the config file, and environment
overrides are applied.

Environment overrides:
  SYLGRAPH_SYLLABUS   syllabus CSV path or URL
  SYLGRAPH_RELATIONS  relation CSV path or URL
  SYLGRAPH_ADDR       serve listen address
  SYLGRAPH_LOG_LEVEL  debug, info, warn, or error

A .env file in the working directory is read before the environment.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	Path         string `json:"path"`
	Syllabus     string `json:"syllabus"`
	Relations    string `json:"relations"`
	Addr         string `json:"addr"`
	LogLevel     string `json:"log_level"`
	LogPretty    bool   `json:"log_pretty"`
	FetchTimeout string `json:"fetch_timeout"`
	Watch        bool   `json:"watch"`
	Layout       string `json:"layout"`
	Title        string `json:"title"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if humanOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		outputHuman("# %s\n%s", path, data)
		return nil
	}
	return outputJSON(newConfigResponse(path, cfg))
}

func newConfigResponse(path string, cfg *config.Config) ConfigResponse {
	return ConfigResponse{
		Path:         path,
		Syllabus:     cfg.Syllabus,
		Relations:    cfg.Relations,
		Addr:         cfg.Addr,
		LogLevel:     cfg.LogLevel,
		LogPretty:    cfg.LogPretty,
		FetchTimeout: cfg.FetchTimeout.String(),
		Watch:        cfg.Watch,
		Layout:       cfg.Layout,
		Title:        cfg.Title,
	}
}

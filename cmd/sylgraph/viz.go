package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/viz"
)

var (
	vizOutput string
	vizLayout string
	vizView   string
	vizCourse string
)

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "", "Layout: physics or hierarchical (default: config layout)")
	vizCmd.Flags().StringVar(&vizView, "view", "all", "Initial view: all, connected, or neighborhood")
	vizCmd.Flags().StringVar(&vizCourse, "course", "", "Initial course for the neighborhood view")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate a self-contained graph page",
	Long: `Generate a self-contained interactive HTML page of the course graph.

Every view is embedded in the page, so it works without a server. Edge styles
indicate relationship types:
  - related:      plain arrow
  - recommended:  "desirable"
  - equivalent:   red, "prerequisite knowledge"
  - required:     red, bold, "mandatory"
  - exclusive:    magenta, bold, "cannot co-enroll"

Examples:
  # Generate HTML to stdout
  sylgraph viz > graph.html

  # Generate to file with a hierarchical layout
  sylgraph viz --layout hierarchical --output graph.html

  # Open on one course's neighborhood
  sylgraph viz --view neighborhood --course "Data Structures" -o ds.html`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	if err := viz.ValidateLayout(vizLayout); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	view, err := viz.ParseView(vizView)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	cfg, cat := mustLoadCatalog(context.Background())

	layout := vizLayout
	if layout == "" {
		layout = cfg.Layout
	}
	opts := viz.HTMLOptions{
		Mode:   viz.ModeStatic,
		Layout: layout,
		Title:  cfg.Title,
		View:   view,
		Course: vizCourse,
	}
	html, err := viz.GenerateHTML(viz.NewSnapshot(cat), opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		outputHuman("Visualization written to %s\n", vizOutput)
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: vizOutput})
}

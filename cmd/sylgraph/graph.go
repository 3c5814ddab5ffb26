package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/viz"
)

var (
	graphView   string
	graphCourse string
)

func init() {
	graphCmd.Flags().StringVar(&graphView, "view", "all", "View: all, connected, or neighborhood")
	graphCmd.Flags().StringVar(&graphCourse, "course", "", "Course name for the neighborhood view")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print graph data for a view",
	Long: `Print the nodes and edges of one graph view.

Views:
  all           every course, every relation
  connected     only courses that appear in a relation
  neighborhood  one course, its direct neighbors, and the relations among them

Examples:
  sylgraph graph --view connected
  sylgraph graph --view neighborhood --course "Data Structures" --human`,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	view, err := viz.ParseView(graphView)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	_, cat := mustLoadCatalog(context.Background())
	graph, err := viz.Build(cat, view, graphCourse)
	if err != nil {
		if errors.Is(err, viz.ErrMissingCourse) {
			exitWithError(ExitError, "%v (use --course)", err)
		}
		return err
	}

	if humanOutput {
		printGraphHuman(graph)
		return nil
	}
	return outputJSON(graph)
}

func printGraphHuman(g *viz.GraphData) {
	outputHuman("%d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
	for _, e := range g.Edges {
		outputHuman("  %s\n", formatEdge(e))
	}
}

// formatEdge renders an edge with its arrowhead on the side vis-network draws it.
func formatEdge(e viz.Edge) string {
	label := e.Label
	if label == "" {
		label = string(e.Kind)
	}
	if e.Arrows.From != nil {
		return e.From + " <-[" + label + "]- " + e.To
	}
	return e.From + " -[" + label + "]-> " + e.To
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/server"
)

var (
	serveAddr  string
	serveWatch bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload when local CSV sources change")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live graph page and JSON API",
	Long: `Serve the interactive graph page and its JSON API.

Endpoints:
  GET /                         live page
  GET /api/graph?view=&course=  graph data (view: all, connected, neighborhood)
  GET /api/courses              dropdown options
  GET /api/courses/:name        course detail
  GET /api/search?q=&limit=     course search
  GET /api/events               reload notifications (server-sent events)
  GET /healthz                  course and relation counts

With --watch, edits to local CSV sources are picked up without a restart and
open pages refresh in place.

Examples:
  sylgraph serve
  sylgraph serve --addr 127.0.0.1:9000 --watch`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = serveWatch
	}
	lgr := mustSetupLogger(cfg)

	srv, err := server.New(cfg, lgr)
	if err != nil {
		exitWithError(ExitError, "starting server: %v", err)
	}
	defer srv.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Run(ctx)
}

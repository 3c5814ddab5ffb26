package main

import (
	"context"

	"github.com/spf13/cobra"
)

// DefaultIndexPath is where index build writes when --db is not given.
const DefaultIndexPath = "sylgraph.db"

var indexDBPath string

func init() {
	indexBuildCmd.Flags().StringVar(&indexDBPath, "db", DefaultIndexPath, "SQLite index file")
	indexCmd.AddCommand(indexBuildCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite course index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write the course and relation data to a SQLite file",
	Long: `Write the course and relation data to a SQLite file with a full-text index.

An existing file is rebuilt in place. The file can be queried with any SQLite
client; the courses_fts table supports substring search.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	_, cat := mustLoadCatalog(context.Background())

	db := mustBuildIndex(indexDBPath, cat)
	defer db.Close()

	count, err := db.CountCourses()
	if err != nil {
		exitWithError(ExitError, "counting courses: %v", err)
	}

	if humanOutput {
		outputHuman("Indexed %d courses and %d relations into %s\n", count, len(cat.Relations()), indexDBPath)
		return nil
	}
	return outputJSON(StatusResponse{Status: "built", Path: indexDBPath, Courses: count})
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/course"
	"github.com/syllabus-viz/sylgraph/internal/storage"
)

var courseSearchLimit int

func init() {
	courseSearchCmd.Flags().IntVarP(&courseSearchLimit, "limit", "n", DefaultSearchLimit, "Maximum results")
	courseCmd.AddCommand(courseGetCmd, courseListCmd, courseSearchCmd)
	rootCmd.AddCommand(courseCmd)
}

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Look up syllabus records",
}

var courseGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show one course by name",
	Long: `Show one course by its exact name.

The output includes how many relations leave and enter the course. When a
name appears on more than one syllabus row, the last row is shown, matching
what the graph page displays. Exits with code 4 if no course has that name.`,
	Args: cobra.ExactArgs(1),
	RunE: runCourseGet,
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses as dropdown options",
	Args:  cobra.NoArgs,
	RunE:  runCourseList,
}

var courseSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search courses by name, code, instructor, or subject group",
	Long: `Search courses by substring of name, code, instructor, or subject group.

Examples:
  sylgraph course search algebra
  sylgraph course search 線形 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runCourseSearch,
}

// CourseDetail is the response for course get: the syllabus record plus how many
// relations leave and enter it.
type CourseDetail struct {
	course.Course
	Relations storage.Degree `json:"relations"`
}

func runCourseGet(cmd *cobra.Command, args []string) error {
	_, cat := mustLoadCatalog(context.Background())

	db := mustBuildIndex(storage.MemoryPath, cat)
	defer db.Close()

	detail, err := lookupCourse(db, args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if detail == nil {
		exitWithError(ExitNotFound, "course not found: %s", args[0])
	}
	if humanOutput {
		outputHuman("%s", formatCourseDetail(detail.Course))
		outputHuman("%-20s %s\n", "Relations:", formatDegree(detail.Relations))
		return nil
	}
	return outputJSON(detail)
}

// lookupCourse reads one course and its relation counts from the index.
// Returns nil if no course has that name.
func lookupCourse(db *storage.DB, name string) (*CourseDetail, error) {
	c, err := db.GetCourse(name)
	if err != nil || c == nil {
		return nil, err
	}
	counts, err := db.RelationCounts()
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: *c, Relations: counts[name]}, nil
}

func runCourseList(cmd *cobra.Command, args []string) error {
	_, cat := mustLoadCatalog(context.Background())

	opts := cat.Options()
	if humanOutput {
		for _, c := range cat.Courses() {
			outputHuman("%s\n", formatCourseLine(c))
		}
		outputHuman("\n%d courses\n", len(opts))
		return nil
	}
	return outputJSON(opts)
}

func runCourseSearch(cmd *cobra.Command, args []string) error {
	if courseSearchLimit < 1 {
		exitWithError(ExitError, "--limit must be positive")
	}
	_, cat := mustLoadCatalog(context.Background())

	db := mustBuildIndex(storage.MemoryPath, cat)
	defer db.Close()

	results, err := db.SearchCourses(args[0], courseSearchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(results) == 0 {
			outputHuman("No courses match %q\n", args[0])
			return nil
		}
		for _, c := range results {
			outputHuman("%s\n", formatCourseLine(c))
		}
		return nil
	}
	return outputJSON(results)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/syllabus-viz/sylgraph/internal/course"
	"github.com/syllabus-viz/sylgraph/internal/loader"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the syllabus and relation data",
	Long: `Verify the syllabus and relation data.

Reports:
  source_unavailable  a source could not be read or parsed
  duplicate_course    a course name appears on more than one syllabus row
  dangling_relation   a relation names a course missing from the syllabus
  unknown_kind        a relation type outside related, recommended,
                      equivalent, required, exclusive

Exits with code 3 when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status    string       `json:"status"`
	Courses   int          `json:"courses"`
	Relations int          `json:"relations"`
	Issues    []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Count  int    `json:"count,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lgr := mustSetupLogger(cfg)
	ds := loadDataset(context.Background(), cfg, lgr)

	result := checkDataset(ds)

	if humanOutput {
		printCheckHuman(result)
	} else {
		outputJSON(result)
	}
	if len(result.Issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// checkDataset collects every issue in ds in a stable order.
func checkDataset(ds loader.Dataset) CheckResult {
	issues := []CheckIssue{}

	for _, err := range ds.Errors {
		issue := CheckIssue{Type: "source_unavailable", Reason: err.Error()}
		var loadErr *loader.LoadError
		if errors.As(err, &loadErr) {
			issue.Source = loadErr.Source
			issue.Reason = loadErr.Err.Error()
		}
		issues = append(issues, issue)
	}

	duplicates := course.FindDuplicateNames(ds.Courses)
	names := make([]string, 0, len(duplicates))
	for name := range duplicates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		issues = append(issues, CheckIssue{
			Type:  "duplicate_course",
			Name:  name,
			Count: duplicates[name],
		})
	}

	for _, d := range course.FindDanglingRelations(ds.Relations, ds.Courses) {
		index := d.Index
		issues = append(issues, CheckIssue{
			Type:   "dangling_relation",
			Index:  &index,
			Source: d.Source,
			Target: d.Target,
			Kind:   string(d.Kind),
			Reason: d.Reason,
		})
	}

	unknown := course.FindUnknownKinds(ds.Relations)
	kinds := make([]string, 0, len(unknown))
	for k := range unknown {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		issues = append(issues, CheckIssue{
			Type:  "unknown_kind",
			Kind:  k,
			Count: unknown[course.Kind(k)],
		})
	}

	status := "ok"
	if len(issues) > 0 {
		status = "issues_found"
	}
	return CheckResult{
		Status:    status,
		Courses:   len(ds.Courses),
		Relations: len(ds.Relations),
		Issues:    issues,
	}
}

func printCheckHuman(r CheckResult) {
	outputHuman("%d courses, %d relations\n", r.Courses, r.Relations)
	if len(r.Issues) == 0 {
		outputHuman("No issues found\n")
		return
	}
	outputHuman("%d issues:\n", len(r.Issues))
	for _, issue := range r.Issues {
		outputHuman("  %s\n", formatIssue(issue))
	}
}

// formatIssue renders one issue as a single line.
func formatIssue(i CheckIssue) string {
	switch i.Type {
	case "source_unavailable":
		return fmt.Sprintf("source unavailable: %s: %s", i.Source, i.Reason)
	case "duplicate_course":
		return fmt.Sprintf("duplicate course %q (%d rows)", i.Name, i.Count)
	case "dangling_relation":
		return fmt.Sprintf("relation %d %q -> %q (%s): %s", *i.Index, i.Source, i.Target, i.Kind, i.Reason)
	case "unknown_kind":
		return fmt.Sprintf("unknown relation type %q (%d relations)", i.Kind, i.Count)
	default:
		return i.Type
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/syllabus-viz/sylgraph/internal/course"
	"github.com/syllabus-viz/sylgraph/internal/storage"
)

// DefaultSearchLimit is the default limit for course search.
const DefaultSearchLimit = 20

// NameMaxLen bounds course names in human-readable lists.
const NameMaxLen = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Courses int    `json:"courses,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// courseFields pairs detail labels with course values, in display order.
func courseFields(c course.Course) [][2]string {
	return [][2]string{
		{"Course", c.CourseName},
		{"Code", c.CourseCode},
		{"Regulation subject", c.RegulationSubjectName},
		{"Campus", c.Campus},
		{"Instructor", c.Instructor},
		{"Subject group", c.SubjectGroup},
		{"Subject code", c.SubjectCode},
		{"Language", c.Language},
		{"Term", c.Term},
		{"URL", c.URL},
	}
}

// formatCourseDetail renders one course as aligned label/value lines. Empty values are skipped.
func formatCourseDetail(c course.Course) string {
	var b strings.Builder
	for _, f := range courseFields(c) {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%-20s %s\n", f[0]+":", f[1])
	}
	return b.String()
}

// formatCourseLine renders one course as a single list line.
func formatCourseLine(c course.Course) string {
	name := truncateString(c.CourseName, NameMaxLen)
	if c.CourseCode == "" {
		return name
	}
	return fmt.Sprintf("%-10s %s", c.CourseCode, name)
}

// formatDegree renders relation counts as "2 out, 1 in".
func formatDegree(d storage.Degree) string {
	return fmt.Sprintf("%d out, %d in", d.Out, d.In)
}

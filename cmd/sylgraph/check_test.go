package main

import (
	"fmt"
	"os"
	"testing"

	"github.com/syllabus-viz/sylgraph/internal/course"
	"github.com/syllabus-viz/sylgraph/internal/loader"
)

func TestCheckDataset_Clean(t *testing.T) {
	ds := loader.Dataset{
		Courses: []course.Course{
			{CourseName: "Calculus I"},
			{CourseName: "Calculus II"},
		},
		Relations: []course.Relation{
			{Source: "Calculus I", Target: "Calculus II", Kind: course.KindRequired},
		},
	}

	result := checkDataset(ds)
	if result.Status != "ok" {
		t.Errorf("Status = %q, want ok", result.Status)
	}
	if len(result.Issues) != 0 {
		t.Errorf("Issues = %+v, want none", result.Issues)
	}
	if result.Courses != 2 || result.Relations != 1 {
		t.Errorf("counts = %d/%d, want 2/1", result.Courses, result.Relations)
	}
}

func TestCheckDataset_Issues(t *testing.T) {
	ds := loader.Dataset{
		Courses: []course.Course{
			{CourseName: "Physics"},
			{CourseName: "Chemistry"},
			{CourseName: "Physics"},
		},
		Relations: []course.Relation{
			{Source: "Physics", Target: "Chemistry", Kind: course.KindRelated},
			{Source: "Physics", Target: "Biology", Kind: course.KindRequired},
			{Source: "Chemistry", Target: "Physics", Kind: "suggested"},
			{Source: "Geology", Target: "Chemistry", Kind: "suggested"},
		},
		Errors: []error{
			&loader.LoadError{Source: "https://example.edu/extra.csv", Err: os.ErrNotExist},
		},
	}

	result := checkDataset(ds)
	if result.Status != "issues_found" {
		t.Errorf("Status = %q, want issues_found", result.Status)
	}

	var got []string
	for _, issue := range result.Issues {
		got = append(got, formatIssue(issue))
	}
	want := []string{
		fmt.Sprintf("source unavailable: https://example.edu/extra.csv: %v", os.ErrNotExist),
		`duplicate course "Physics" (2 rows)`,
		`relation 1 "Physics" -> "Biology" (required): missing_target`,
		`relation 3 "Geology" -> "Chemistry" (suggested): missing_source`,
		`unknown relation type "suggested" (2 relations)`,
	}
	if len(got) != len(want) {
		t.Fatalf("issues = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("issue[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCheckDataset_EmptyIssuesIsArray(t *testing.T) {
	result := checkDataset(loader.Dataset{})
	if result.Issues == nil {
		t.Error("Issues should be an empty slice so JSON output is []")
	}
}

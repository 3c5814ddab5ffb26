package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/course"
)

// setupTestDB creates a test database indexed from a small catalog.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cat := catalog.New(
		[]course.Course{
			{CourseCode: "CS101", CourseName: "Introduction to Programming", Instructor: "Sato", SubjectGroup: "Core", Campus: "Main"},
			{CourseCode: "CS201", CourseName: "Data Structures", Instructor: "Tanaka", SubjectGroup: "Core"},
			{CourseCode: "MA100", CourseName: "線形代数", Instructor: "Suzuki", SubjectGroup: "Math"},
			{CourseCode: "CS101B", CourseName: "Introduction to Programming", Instructor: "Ito", Campus: "Branch"},
			{CourseCode: "X_1", CourseName: "100% Attendance"},
		},
		[]course.Relation{
			{Source: "Introduction to Programming", Target: "Data Structures", Kind: course.KindRequired},
			{Source: "線形代数", Target: "Data Structures", Kind: course.KindRecommended},
			{Source: "Data Structures", Target: "Algorithms", Kind: course.KindRelated},
		},
	)

	count, err := db.RebuildFromCatalog(cat)
	if err != nil {
		t.Fatalf("RebuildFromCatalog failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 courses indexed, got %d", count)
	}
	return db
}

func courseCodes(courses []course.Course) []string {
	codes := make([]string, 0, len(courses))
	for _, c := range courses {
		codes = append(codes, c.CourseCode)
	}
	return codes
}

func TestDB_GetCourse(t *testing.T) {
	db := setupTestDB(t)

	c, err := db.GetCourse("Data Structures")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.CourseCode != "CS201" || c.Instructor != "Tanaka" {
		t.Errorf("GetCourse() = %+v", c)
	}

	// Repeated names resolve to the last row, matching the catalog.
	c, err = db.GetCourse("Introduction to Programming")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Campus != "Branch" {
		t.Errorf("GetCourse() for duplicate name = %+v, want last row", c)
	}

	c, err = db.GetCourse("Nope")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing course, got %+v", c)
	}
}

func TestDB_SearchCourses(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"substring of name", "structur", 10, []string{"CS201"}},
		{"case insensitive", "INTRODUCTION", 10, []string{"CS101", "CS101B"}},
		{"instructor", "suzuki", 10, []string{"MA100"}},
		{"subject group", "Core", 10, []string{"CS101", "CS201"}},
		{"limit", "Introduction", 1, []string{"CS101"}},
		{"japanese substring", "線形代", 10, []string{"MA100"}},
		{"short query uses like", "CS", 10, []string{"CS101", "CS201", "CS101B"}},
		{"like wildcards are literal", "%", 10, []string{"X_1"}},
		{"quotes are escaped", `"Data`, 10, []string{}},
		{"empty query", "  ", 10, []string{}},
		{"no match", "Quantum", 10, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchCourses(tt.query, tt.limit)
			if err != nil {
				t.Fatalf("SearchCourses(%q) error: %v", tt.query, err)
			}
			if codes := courseCodes(got); !reflect.DeepEqual(codes, tt.want) {
				t.Errorf("SearchCourses(%q) = %v, want %v", tt.query, codes, tt.want)
			}
		})
	}
}

func TestDB_RelationCounts(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.RelationCounts()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]Degree{
		"Introduction to Programming": {Out: 1, In: 0},
		"線形代数":                        {Out: 1, In: 0},
		"Data Structures":             {Out: 1, In: 2},
		"Algorithms":                  {Out: 0, In: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RelationCounts() = %v, want %v", got, want)
	}
}

func TestDB_RebuildReplacesContents(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.RebuildFromCatalog(catalog.New([]course.Course{{CourseName: "Only"}}, nil)); err != nil {
		t.Fatal(err)
	}

	n, err := db.CountCourses()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountCourses() = %d, want 1", n)
	}

	counts, err := db.RelationCounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 {
		t.Errorf("relations should be cleared, got %v", counts)
	}

	got, err := db.SearchCourses("Data", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("stale FTS rows returned: %v", got)
	}
}

func TestOpenDB_Memory(t *testing.T) {
	db, err := OpenDB(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.RebuildFromCatalog(catalog.Empty()); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountCourses()
	if err != nil || n != 0 {
		t.Errorf("CountCourses() = %d, %v", n, err)
	}
}

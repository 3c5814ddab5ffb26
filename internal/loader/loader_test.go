package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"http://example.edu/a.csv":  true,
		"https://example.edu/a.csv": true,
		"data/syllabus.csv":         false,
		"/abs/path.csv":             false,
		"httpdata.csv":              false,
	}
	for source, want := range tests {
		if got := IsRemote(source); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", source, got, want)
		}
	}
}

func TestLoader_FetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/relations.csv":
			w.Write([]byte("source,target,type\nA,B,related\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()))

	relations, err := l.LoadRelations(context.Background(), srv.URL+"/relations.csv")
	if err != nil {
		t.Fatalf("LoadRelations() error: %v", err)
	}
	if len(relations) != 1 || relations[0].Source != "A" {
		t.Errorf("unexpected relations: %+v", relations)
	}

	_, err = l.LoadRelations(context.Background(), srv.URL+"/missing.csv")
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}

func TestLoader_LoadCoursesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "syllabus.csv", syllabusCSV)

	courses, err := New().LoadCourses(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 2 {
		t.Errorf("expected 2 courses, got %d", len(courses))
	}

	_, err = New().LoadCourses(context.Background(), filepath.Join(dir, "nope.csv"))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected LoadError wrapping ErrNotExist, got %v", err)
	}
}

func TestLoader_LoadDataset(t *testing.T) {
	dir := t.TempDir()
	syllabus := writeFile(t, dir, "syllabus.csv", syllabusCSV)
	relations := writeFile(t, dir, "relations.csv", "source,target,type\nIntro to Programming,Data Structures,required\n")

	ds := New().LoadDataset(context.Background(), syllabus, relations)
	if len(ds.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ds.Errors)
	}
	if len(ds.Courses) != 2 || len(ds.Relations) != 1 {
		t.Errorf("got %d courses and %d relations", len(ds.Courses), len(ds.Relations))
	}
}

func TestLoader_LoadDataset_DegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	syllabus := writeFile(t, dir, "syllabus.csv", syllabusCSV)
	relations := writeFile(t, dir, "relations.csv", "from,to\nA,B\n")

	var logs bytes.Buffer
	l := New(WithLogger(zerolog.New(&logs)))

	ds := l.LoadDataset(context.Background(), syllabus, relations)
	if len(ds.Courses) != 2 {
		t.Errorf("syllabus should still load, got %d courses", len(ds.Courses))
	}
	if ds.Relations == nil || len(ds.Relations) != 0 {
		t.Errorf("relations should degrade to empty non-nil slice, got %#v", ds.Relations)
	}
	if len(ds.Errors) != 1 || !errors.Is(ds.Errors[0], ErrMissingColumn) {
		t.Errorf("expected one ErrMissingColumn, got %v", ds.Errors)
	}
	if !strings.Contains(logs.String(), "source unavailable") {
		t.Errorf("expected degraded load to be logged, got %q", logs.String())
	}
}

func TestLoader_LoadDataset_BothMissing(t *testing.T) {
	dir := t.TempDir()
	ds := New().LoadDataset(context.Background(), filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"))
	if len(ds.Courses) != 0 || len(ds.Relations) != 0 {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
	if len(ds.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(ds.Errors))
	}
}

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/syllabus-viz/sylgraph/internal/course"
)

// Parse errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrRaggedRow     = errors.New("wrong number of fields")
)

// Syllabus CSV headers.
const (
	ColURL                   = "url"
	ColCourseCode            = "course_code"
	ColCourseName            = "course_name"
	ColRegulationSubjectName = "regulation_subject_name"
	ColCampus                = "campus"
	ColInstructor            = "instructor"
	ColSubjectGroup          = "subject_group"
	ColSubjectCode           = "subject_code"
	ColLanguage              = "language"
	ColTerm                  = "term"
)

// Relation CSV headers.
const (
	ColSource = "source"
	ColTarget = "target"
	ColType   = "type"
)

const utf8BOM = "\ufeff"

// header maps normalized column names to their index in a row.
type header struct {
	index map[string]int
	width int // number of columns in the header row
}

func readHeader(r *csv.Reader, required ...string) (header, error) {
	names, err := r.Read()
	if err == io.EOF {
		return header{}, fmt.Errorf("%w: empty input has no header row", ErrMissingColumn)
	}
	if err != nil {
		return header{}, fmt.Errorf("reading header: %w", err)
	}

	h := header{index: make(map[string]int, len(names)), width: len(names)}
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}

	for _, col := range required {
		if _, ok := h.index[col]; !ok {
			return header{}, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	return h, nil
}

// get returns the value of column col in row, or "" if the column is absent.
func (h header) get(row []string, col string) string {
	i, ok := h.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readRows reads every data row after the header. Empty lines and rows whose fields
// are all whitespace are skipped; any other row must match the header width.
func readRows(r *csv.Reader, width int, each func(row []string)) error {
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		if len(row) != width {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%w: line %d has %d, header has %d", ErrRaggedRow, line, len(row), width)
		}
		each(row)
	}
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// newReader accepts stray quotes inside unquoted fields, such as O"Brien.
// Row width is checked by readRows so blank rows can be skipped first.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// ParseCourses parses a syllabus CSV. Rows are returned in input order.
func ParseCourses(r io.Reader) ([]course.Course, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColCourseName)
	if err != nil {
		return nil, err
	}

	courses := []course.Course{}
	err = readRows(cr, h.width, func(row []string) {
		courses = append(courses, course.Course{
			URL:                   h.get(row, ColURL),
			CourseCode:            h.get(row, ColCourseCode),
			CourseName:            h.get(row, ColCourseName),
			RegulationSubjectName: h.get(row, ColRegulationSubjectName),
			Campus:                h.get(row, ColCampus),
			Instructor:            h.get(row, ColInstructor),
			SubjectGroup:          h.get(row, ColSubjectGroup),
			SubjectCode:           h.get(row, ColSubjectCode),
			Language:              h.get(row, ColLanguage),
			Term:                  h.get(row, ColTerm),
		})
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ParseRelations parses a relation CSV. Rows are returned in input order.
func ParseRelations(r io.Reader) ([]course.Relation, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColSource, ColTarget, ColType)
	if err != nil {
		return nil, err
	}

	relations := []course.Relation{}
	err = readRows(cr, h.width, func(row []string) {
		relations = append(relations, course.Relation{
			Source: h.get(row, ColSource),
			Target: h.get(row, ColTarget),
			Kind:   course.Kind(h.get(row, ColType)),
		})
	})
	if err != nil {
		return nil, err
	}
	return relations, nil
}

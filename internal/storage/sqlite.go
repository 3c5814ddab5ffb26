// Package storage maintains a SQLite query index over a loaded course catalog.
//
// The CSV sources stay the source of truth. The index is rebuilt from a catalog
// whenever it is loaded and is safe to delete.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/course"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// minTrigramQuery is the shortest query the trigram tokenizer can match.
const minTrigramQuery = 3

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectCourseFields contains the standard field list for SELECT queries.
const selectCourseFields = `url, course_code, course_name, regulation_subject_name,
	campus, instructor, subject_group, subject_code, language, term`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: SQLite serializes writes, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Syllabus rows in load order; course_name is not unique
		CREATE TABLE IF NOT EXISTS courses (
			seq INTEGER PRIMARY KEY,
			url TEXT NOT NULL,
			course_code TEXT NOT NULL,
			course_name TEXT NOT NULL,
			regulation_subject_name TEXT NOT NULL,
			campus TEXT NOT NULL,
			instructor TEXT NOT NULL,
			subject_group TEXT NOT NULL,
			subject_code TEXT NOT NULL,
			language TEXT NOT NULL,
			term TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(course_name);

		CREATE TABLE IF NOT EXISTS relations (
			seq INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			kind TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source);
		CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target);

		-- Trigram tokenizer gives substring matching for names without word breaks
		CREATE VIRTUAL TABLE IF NOT EXISTS courses_fts USING fts5(
			course_name,
			course_code,
			instructor,
			subject_group,
			tokenize = 'trigram'
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromCatalog replaces the index contents with cat. It returns the number of
// courses indexed.
func (d *DB) RebuildFromCatalog(cat *catalog.Catalog) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"courses", "relations", "courses_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	courseStmt, err := tx.Prepare(`
		INSERT INTO courses (seq, ` + selectCourseFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing courses insert: %w", err)
	}
	defer courseStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO courses_fts (rowid, course_name, course_code, instructor, subject_group)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, c := range cat.Courses() {
		_, err := courseStmt.Exec(i,
			c.URL, c.CourseCode, c.CourseName, c.RegulationSubjectName,
			c.Campus, c.Instructor, c.SubjectGroup, c.SubjectCode, c.Language, c.Term,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting course %q: %w", c.CourseName, err)
		}
		if _, err := ftsStmt.Exec(i, c.CourseName, c.CourseCode, c.Instructor, c.SubjectGroup); err != nil {
			return 0, fmt.Errorf("inserting fts for %q: %w", c.CourseName, err)
		}
	}

	relStmt, err := tx.Prepare(`INSERT INTO relations (seq, source, target, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing relations insert: %w", err)
	}
	defer relStmt.Close()

	for i, r := range cat.Relations() {
		if _, err := relStmt.Exec(i, r.Source, r.Target, string(r.Kind)); err != nil {
			return 0, fmt.Errorf("inserting relation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(cat.Courses()), nil
}

// CountCourses returns the number of indexed syllabus rows.
func (d *DB) CountCourses() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

// GetCourse retrieves a course by exact name. When the name repeats, the last row wins.
// Returns nil if no course matches.
func (d *DB) GetCourse(name string) (*course.Course, error) {
	row := d.db.QueryRow(`SELECT `+selectCourseFields+`
		FROM courses WHERE course_name = ? ORDER BY seq DESC LIMIT 1`, name)

	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting course %q: %w", name, err)
	}
	return &c, nil
}

// SearchCourses finds courses whose name, code, instructor, or subject group contain
// query. Results are in syllabus order.
func (d *DB) SearchCourses(query string, limit int) ([]course.Course, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []course.Course{}, nil
	}

	var rows *sql.Rows
	var err error
	if utf8.RuneCountInString(query) < minTrigramQuery {
		like := "%" + escapeLike(query) + "%"
		rows, err = d.db.Query(`
			SELECT `+selectCourseFields+`
			FROM courses
			WHERE course_name LIKE ?1 ESCAPE '\' OR course_code LIKE ?1 ESCAPE '\'
				OR instructor LIKE ?1 ESCAPE '\' OR subject_group LIKE ?1 ESCAPE '\'
			ORDER BY seq
			LIMIT ?2`, like, limit)
	} else {
		rows, err = d.db.Query(`
			SELECT `+selectCourseFields+`
			FROM courses
			WHERE seq IN (SELECT rowid FROM courses_fts WHERE courses_fts MATCH ?)
			ORDER BY seq
			LIMIT ?`, prepareFTSQuery(query), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanCourses(rows)
}

// Degree counts the relations leaving and entering one course name.
type Degree struct {
	Out int `json:"out"`
	In  int `json:"in"`
}

// RelationCounts returns the in and out degree of every name that appears in a relation.
func (d *DB) RelationCounts() (map[string]Degree, error) {
	rows, err := d.db.Query(`
		SELECT name, SUM(out_count), SUM(in_count) FROM (
			SELECT source AS name, COUNT(*) AS out_count, 0 AS in_count FROM relations GROUP BY source
			UNION ALL
			SELECT target AS name, 0 AS out_count, COUNT(*) AS in_count FROM relations GROUP BY target
		) GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("counting relations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]Degree)
	for rows.Next() {
		var name string
		var deg Degree
		if err := rows.Scan(&name, &deg.Out, &deg.In); err != nil {
			return nil, fmt.Errorf("scanning relation count: %w", err)
		}
		counts[name] = deg
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(s scanner) (course.Course, error) {
	var c course.Course
	err := s.Scan(
		&c.URL, &c.CourseCode, &c.CourseName, &c.RegulationSubjectName,
		&c.Campus, &c.Instructor, &c.SubjectGroup, &c.SubjectCode, &c.Language, &c.Term,
	)
	return c, err
}

func scanCourses(rows *sql.Rows) ([]course.Course, error) {
	courses := []course.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// prepareFTSQuery quotes the query as a single FTS5 phrase.
func prepareFTSQuery(query string) string {
	return "\"" + strings.ReplaceAll(query, "\"", "\"\"") + "\""
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

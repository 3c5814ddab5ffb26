// Package catalog holds the loaded syllabus and relation collections.
//
// A Catalog is built once from a loaded dataset and never mutated. Reloads build a new
// Catalog and publish it through a Holder, so readers always see one consistent snapshot.
package catalog

import (
	"sync/atomic"
	"time"

	"github.com/syllabus-viz/sylgraph/internal/course"
)

// Catalog is an immutable snapshot of both datasets.
type Catalog struct {
	courses   []course.Course
	relations []course.Relation
	byName    map[string]int
	loadedAt  time.Time
}

// Option is one entry of the course selector.
type Option struct {
	Value string `json:"value"` // course name
	Label string `json:"label"` // course code and name
}

// New builds a Catalog. The slices are copied; nil inputs become empty collections.
func New(courses []course.Course, relations []course.Relation) *Catalog {
	c := &Catalog{
		courses:   append([]course.Course{}, courses...),
		relations: append([]course.Relation{}, relations...),
		byName:    make(map[string]int, len(courses)),
		loadedAt:  time.Now(),
	}
	// Later rows overwrite earlier ones so lookups agree with the rendered graph,
	// where a repeated node id replaces the previous node.
	for i, crs := range c.courses {
		c.byName[crs.CourseName] = i
	}
	return c
}

// Empty returns a Catalog with no data.
func Empty() *Catalog {
	return New(nil, nil)
}

// Courses returns the syllabus records in load order. Callers must not modify the result.
func (c *Catalog) Courses() []course.Course {
	return c.courses
}

// Relations returns the relation records in load order. Callers must not modify the result.
func (c *Catalog) Relations() []course.Relation {
	return c.relations
}

// LoadedAt is when the snapshot was built.
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Lookup finds a course by exact name.
func (c *Catalog) Lookup(name string) (course.Course, bool) {
	i, ok := c.byName[name]
	if !ok {
		return course.Course{}, false
	}
	return c.courses[i], true
}

// Options lists every course for the selector, in syllabus order.
func (c *Catalog) Options() []Option {
	opts := make([]Option, 0, len(c.courses))
	for _, crs := range c.courses {
		opts = append(opts, Option{Value: crs.CourseName, Label: crs.OptionLabel()})
	}
	return opts
}

// Holder publishes the current Catalog to concurrent readers.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a Holder holding cat, or an empty Catalog if cat is nil.
func NewHolder(cat *Catalog) *Holder {
	h := &Holder{}
	h.Store(cat)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Store replaces the current snapshot.
func (h *Holder) Store(cat *Catalog) {
	if cat == nil {
		cat = Empty()
	}
	h.current.Store(cat)
}

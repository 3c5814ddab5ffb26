package viz

import (
	"errors"
	"fmt"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/course"
)

// View selects which part of the catalog is projected.
type View string

const (
	ViewAll          View = "all"
	ViewConnected    View = "connected"
	ViewNeighborhood View = "neighborhood"
)

// ValidViews lists the supported view names.
var ValidViews = []View{ViewAll, ViewConnected, ViewNeighborhood}

// Validation errors.
var (
	ErrInvalidView   = errors.New("invalid view")
	ErrMissingCourse = errors.New("neighborhood view requires a course")
)

// ParseView validates a view name. An empty name selects ViewAll.
func ParseView(name string) (View, error) {
	switch View(name) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewConnected:
		return ViewConnected, nil
	case ViewNeighborhood:
		return ViewNeighborhood, nil
	default:
		return "", fmt.Errorf("%w %q: must be all, connected, or neighborhood", ErrInvalidView, name)
	}
}

// Build projects the catalog for the given view. courseName is only used by ViewNeighborhood.
func Build(cat *catalog.Catalog, view View, courseName string) (*GraphData, error) {
	switch view {
	case "", ViewAll:
		return &GraphData{
			Nodes: ProjectNodes(cat.Courses()),
			Edges: ProjectEdges(cat.Relations()),
		}, nil
	case ViewConnected:
		return &GraphData{
			Nodes: ConnectedNodes(cat.Relations()),
			Edges: ProjectEdges(cat.Relations()),
		}, nil
	case ViewNeighborhood:
		if courseName == "" {
			return nil, ErrMissingCourse
		}
		nodes, edges := Neighborhood(cat.Relations(), courseName)
		return &GraphData{Nodes: nodes, Edges: edges}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidView, view)
	}
}

// ProjectNodes emits one node per course, in order. Repeated names are not merged; the
// rendering surface keeps the last node written for an id.
func ProjectNodes(courses []course.Course) []Node {
	nodes := make([]Node, 0, len(courses))
	for _, c := range courses {
		nodes = append(nodes, newNode(c.CourseName))
	}
	return nodes
}

// ProjectEdges emits one styled edge per relation, in order.
func ProjectEdges(relations []course.Relation) []Edge {
	edges := make([]Edge, 0, len(relations))
	for i, r := range relations {
		edges = append(edges, newEdge(i, r))
	}
	return edges
}

// ConnectedNodes emits one node per distinct course name that is the source or target of at
// least one relation, in order of first appearance. Courses without relations are dropped.
func ConnectedNodes(relations []course.Relation) []Node {
	seen := make(map[string]bool)
	nodes := []Node{}
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		nodes = append(nodes, newNode(name))
	}

	for _, r := range relations {
		add(r.Source)
		add(r.Target)
	}
	return nodes
}

// Neighborhood returns the subgraph induced by name and every course one relation away from
// it. The node set always contains name. The edge set holds every relation whose endpoints
// both lie in the node set, including relations between two neighbors.
func Neighborhood(relations []course.Relation, name string) ([]Node, []Edge) {
	members := map[string]bool{name: true}
	nodes := []Node{newNode(name)}
	add := func(n string) {
		if members[n] {
			return
		}
		members[n] = true
		nodes = append(nodes, newNode(n))
	}

	for _, r := range relations {
		if r.Touches(name) {
			add(r.Source)
			add(r.Target)
		}
	}

	edges := []Edge{}
	for i, r := range relations {
		if members[r.Source] && members[r.Target] {
			edges = append(edges, newEdge(i, r))
		}
	}
	return nodes, edges
}

func newNode(name string) Node {
	return Node{ID: name, Label: name}
}

// newEdge builds the styled edge for the relation at index i of the dataset.
func newEdge(i int, r course.Relation) Edge {
	style := StyleFor(r.Kind)
	e := Edge{
		ID:     edgeID(i),
		From:   r.Source,
		To:     r.Target,
		Arrows: style.Arrows,
		Label:  style.Label,
		Width:  style.Width,
		Title:  string(r.Kind),
		Kind:   r.Kind,
	}
	if style.Color != "" {
		e.Color = &EdgeColor{Color: style.Color}
	}
	return e
}

// edgeID identifies an edge by its relation's position, so the same relation keeps
// the same id in every view built from one catalog.
func edgeID(index int) string {
	return fmt.Sprintf("e%d", index)
}

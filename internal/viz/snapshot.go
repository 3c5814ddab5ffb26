package viz

import (
	"encoding/json"
	"fmt"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/course"
)

// Snapshot carries every view of a catalog so a page can switch views without a server.
type Snapshot struct {
	All       GraphData `json:"all"`
	Connected GraphData `json:"connected"`
	// Neighborhoods maps a course name to the node ids and edge ids of its neighborhood.
	// Edge ids refer to All.Edges.
	Neighborhoods map[string]NeighborhoodRef `json:"neighborhoods"`
	Courses       map[string]course.Course   `json:"courses"`
	Options       []catalog.Option           `json:"options"`
}

// NeighborhoodRef lists the members of one neighborhood by id.
type NeighborhoodRef struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// NewSnapshot precomputes every view of cat.
func NewSnapshot(cat *catalog.Catalog) *Snapshot {
	s := &Snapshot{
		All: GraphData{
			Nodes: ProjectNodes(cat.Courses()),
			Edges: ProjectEdges(cat.Relations()),
		},
		Connected: GraphData{
			Nodes: ConnectedNodes(cat.Relations()),
			Edges: ProjectEdges(cat.Relations()),
		},
		Neighborhoods: make(map[string]NeighborhoodRef),
		Courses:       make(map[string]course.Course, len(cat.Courses())),
		Options:       cat.Options(),
	}

	names := make([]string, 0, len(cat.Courses()))
	for _, c := range cat.Courses() {
		names = append(names, c.CourseName)
	}
	for _, n := range s.Connected.Nodes {
		names = append(names, n.ID)
	}

	for _, name := range names {
		if _, done := s.Neighborhoods[name]; done {
			continue
		}
		nodes, edges := Neighborhood(cat.Relations(), name)
		ref := NeighborhoodRef{
			Nodes: make([]string, 0, len(nodes)),
			Edges: make([]string, 0, len(edges)),
		}
		for _, n := range nodes {
			ref.Nodes = append(ref.Nodes, n.ID)
		}
		for _, e := range edges {
			ref.Edges = append(ref.Edges, e.ID)
		}
		s.Neighborhoods[name] = ref

		if c, ok := cat.Lookup(name); ok {
			s.Courses[name] = c
		}
	}
	return s
}

// JSON encodes the snapshot for embedding in a page.
func (s *Snapshot) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot to JSON: %w", err)
	}
	return string(data), nil
}

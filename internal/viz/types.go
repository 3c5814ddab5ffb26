// Package viz projects the course catalog into vis-network graph data and renders the
// interactive page around it.
package viz

import "github.com/syllabus-viz/sylgraph/internal/course"

// GraphData is the node and edge payload handed to the rendering surface.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a vis-network node. ID and Label are both the course name.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ArrowHead configures one end of an edge.
type ArrowHead struct {
	Enabled     bool    `json:"enabled"`
	ScaleFactor float64 `json:"scaleFactor,omitempty"`
}

// Arrows selects which ends of an edge carry an arrow head.
type Arrows struct {
	To   *ArrowHead `json:"to,omitempty"`
	From *ArrowHead `json:"from,omitempty"`
}

// EdgeColor is the vis-network edge color object.
type EdgeColor struct {
	Color string `json:"color"`
}

// Edge is a styled vis-network edge derived from one relation.
type Edge struct {
	// ID is derived from the relation's position in the dataset and is stable across views.
	ID     string      `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Arrows Arrows      `json:"arrows"`
	Label  string      `json:"label,omitempty"`
	Color  *EdgeColor  `json:"color,omitempty"`
	Width  int         `json:"width,omitempty"`
	Title  string      `json:"title,omitempty"` // hover tooltip
	Kind   course.Kind `json:"kind"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

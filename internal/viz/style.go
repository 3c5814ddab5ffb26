package viz

import "github.com/syllabus-viz/sylgraph/internal/course"

// Edge colors. An empty color leaves the vis-network default.
const (
	ColorRed     = "red"
	ColorMagenta = "magenta"
)

// RelatedArrowScale is the arrow head scale for "related" edges.
const RelatedArrowScale = 0.5

// HeavyWidth is the line width of "required" and "exclusive" edges.
const HeavyWidth = 2

// EdgeStyle is the appearance of an edge for one relation kind.
type EdgeStyle struct {
	Arrows Arrows
	Label  string
	Color  string
	Width  int
}

func forward() Arrows {
	return Arrows{To: &ArrowHead{Enabled: true}}
}

func reverse() Arrows {
	return Arrows{From: &ArrowHead{Enabled: true}}
}

// StyleFor returns the edge style for a relation kind. Unrecognized kinds get a forward
// arrow labeled with the raw kind string.
func StyleFor(kind course.Kind) EdgeStyle {
	switch kind {
	case course.KindRelated:
		return EdgeStyle{Arrows: Arrows{To: &ArrowHead{Enabled: true, ScaleFactor: RelatedArrowScale}}}
	case course.KindRecommended:
		return EdgeStyle{Arrows: reverse(), Label: "desirable"}
	case course.KindEquivalent:
		return EdgeStyle{Arrows: reverse(), Label: "prerequisite knowledge", Color: ColorRed}
	case course.KindRequired:
		return EdgeStyle{Arrows: forward(), Label: "mandatory", Color: ColorRed, Width: HeavyWidth}
	case course.KindExclusive:
		return EdgeStyle{Arrows: reverse(), Label: "cannot co-enroll", Color: ColorMagenta, Width: HeavyWidth}
	default:
		return EdgeStyle{Arrows: forward(), Label: string(kind)}
	}
}

// Package course defines the core domain types for syllabus and relation records.
package course

// Course is one syllabus row. CourseName is the node identity in every graph view.
type Course struct {
	URL                   string `json:"url"`
	CourseCode            string `json:"course_code"`
	CourseName            string `json:"course_name"`
	RegulationSubjectName string `json:"regulation_subject_name"`
	Campus                string `json:"campus"`
	Instructor            string `json:"instructor"`
	SubjectGroup          string `json:"subject_group"`
	SubjectCode           string `json:"subject_code"`
	Language              string `json:"language"`
	Term                  string `json:"term"`
}

// OptionLabel returns the dropdown label for the course: code and name.
func (c Course) OptionLabel() string {
	if c.CourseCode == "" {
		return c.CourseName
	}
	return c.CourseCode + " " + c.CourseName
}

// Kind is the relation vocabulary. Values outside the named constants are kept verbatim.
type Kind string

const (
	KindRelated     Kind = "related"
	KindRecommended Kind = "recommended"
	KindEquivalent  Kind = "equivalent"
	KindRequired    Kind = "required"
	KindExclusive   Kind = "exclusive"
)

// KnownKinds lists the recognized relation kinds.
var KnownKinds = []Kind{KindRelated, KindRecommended, KindEquivalent, KindRequired, KindExclusive}

// Known reports whether k is one of KnownKinds.
func (k Kind) Known() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Relation is a directed, typed link between two course names.
type Relation struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   Kind   `json:"type"`
}

// Touches reports whether name is the source or target of r.
func (r Relation) Touches(name string) bool {
	return r.Source == name || r.Target == name
}

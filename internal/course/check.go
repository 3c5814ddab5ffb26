package course

// DanglingRelation describes a relation whose endpoint has no syllabus record.
type DanglingRelation struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   Kind   `json:"type"`
	Reason string `json:"reason"` // "missing_source", "missing_target", or "missing_both"
}

// FindDuplicateNames returns course names that occur on more than one row, with their counts.
func FindDuplicateNames(courses []Course) map[string]int {
	counts := make(map[string]int, len(courses))
	for _, c := range courses {
		counts[c.CourseName]++
	}

	duplicates := make(map[string]int)
	for name, count := range counts {
		if count > 1 {
			duplicates[name] = count
		}
	}
	return duplicates
}

// FindDanglingRelations returns relations that reference a name absent from courses.
func FindDanglingRelations(relations []Relation, courses []Course) []DanglingRelation {
	names := make(map[string]bool, len(courses))
	for _, c := range courses {
		names[c.CourseName] = true
	}

	var dangling []DanglingRelation
	for i, r := range relations {
		sourceOK := names[r.Source]
		targetOK := names[r.Target]
		if sourceOK && targetOK {
			continue
		}
		d := DanglingRelation{Index: i, Source: r.Source, Target: r.Target, Kind: r.Kind}
		switch {
		case !sourceOK && !targetOK:
			d.Reason = "missing_both"
		case !sourceOK:
			d.Reason = "missing_source"
		default:
			d.Reason = "missing_target"
		}
		dangling = append(dangling, d)
	}
	return dangling
}

// FindUnknownKinds returns each unrecognized kind with the number of relations using it.
func FindUnknownKinds(relations []Relation) map[Kind]int {
	unknown := make(map[Kind]int)
	for _, r := range relations {
		if !r.Kind.Known() {
			unknown[r.Kind]++
		}
	}
	return unknown
}

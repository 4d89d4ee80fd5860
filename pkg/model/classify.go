package model

// ElementClass is the tag assigned to an element by the single
// classification pass. Downstream stages dispatch on the tag and never
// re-probe element capabilities.
type ElementClass int

const (
	// ClassIndependent is a regular element with no host reference.
	ClassIndependent ElementClass = iota
	// ClassHosted is a regular element placed relative to a host.
	ClassHosted
	// ClassSketchBound is an element bounded by a drawn profile; it is
	// transformed individually with constraint-tolerant fallbacks.
	ClassSketchBound
	// ClassAnnotation is a view-annotation element, propagated last.
	ClassAnnotation
	// ClassExcluded is an element the operation must not touch.
	ClassExcluded
)

// Classification partitions a candidate element set into disjoint groups.
// The partition is pure: building it has no side effects and the decision
// per element is made exactly once.
type Classification struct {
	Independent []Element
	Hosted      []Element
	SketchBound []Element
	Annotations []Element
	Excluded    []Element
}

// Regular returns independent and hosted elements in transformation order:
// independents first, so hosts reach their final orientation before their
// guests move.
func (c Classification) Regular() []Element {
	out := make([]Element, 0, len(c.Independent)+len(c.Hosted))
	out = append(out, c.Independent...)
	out = append(out, c.Hosted...)
	return out
}

// Structural returns the regular elements that participate in adjacency
// joins.
func (c Classification) Structural() []Element {
	var out []Element
	for _, e := range c.Regular() {
		if e.Category.IsStructural() {
			out = append(out, e)
		}
	}
	return out
}

// ClassOf assigns the classification tag for one element under the given
// allow-list. An element is excluded when it is pinned, lacks a placement,
// belongs to a datum category, anchors the coordinate system by name, or
// falls outside the allow-list.
func ClassOf(e Element, allow CategorySet) ElementClass {
	switch {
	case e.Pinned,
		e.Location.Kind == LocationNone,
		e.Category.IsDatum(),
		e.AnchorsCoordinates(),
		!allow.Has(e.Category):
		return ClassExcluded
	case e.Category.IsSketchBound():
		return ClassSketchBound
	case e.Category.IsAnnotation():
		return ClassAnnotation
	case e.IsHosted():
		return ClassHosted
	default:
		return ClassIndependent
	}
}

// Classify partitions elements into movable-regular (independent/hosted),
// sketch-bound, annotation, and excluded sets.
func Classify(elements []Element, allow CategorySet) Classification {
	var c Classification
	for _, e := range elements {
		switch ClassOf(e, allow) {
		case ClassExcluded:
			c.Excluded = append(c.Excluded, e)
		case ClassSketchBound:
			c.SketchBound = append(c.SketchBound, e)
		case ClassAnnotation:
			c.Annotations = append(c.Annotations, e)
		case ClassHosted:
			c.Hosted = append(c.Hosted, e)
		case ClassIndependent:
			c.Independent = append(c.Independent, e)
		}
	}
	return c
}

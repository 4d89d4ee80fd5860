package model

// Category tags an element with its document discipline. Categories decide
// structural behavior once, at classification time: whether an element is
// sketch-bounded, participates in joins, or is annotation-only. Downstream
// code dispatches on the classification result and never re-probes.
type Category string

// Physical model categories.
const (
	CategoryWall             Category = "wall"
	CategoryStructuralColumn Category = "structural-column"
	CategoryDoor             Category = "door"
	CategoryWindow           Category = "window"
	CategoryFurniture        Category = "furniture"
	CategoryPlumbingFixture  Category = "plumbing-fixture"
	CategoryLightingFixture  Category = "lighting-fixture"
)

// Sketch-bounded categories: shape defined by a drawn boundary profile
// rather than a point/curve placement.
const (
	CategoryFloor   Category = "floor"
	CategoryCeiling Category = "ceiling"
	CategoryRoof    Category = "roof"
	CategoryStair   Category = "stair"
)

// Annotation categories, propagated after all model geometry has settled.
const (
	CategoryDimension         Category = "dimension"
	CategoryTextNote          Category = "text-note"
	CategoryTag               Category = "tag"
	CategoryGenericAnnotation Category = "generic-annotation"
	CategoryCallout           Category = "callout"
	CategoryDetailItem        Category = "detail-item"
)

// Coordinate-system and datum categories, always excluded from transforms.
const (
	CategoryBasePoint   Category = "base-point"
	CategorySurveyPoint Category = "survey-point"
	CategoryLevel       Category = "level"
	CategoryGrid        Category = "grid"
)

// IsSketchBound reports whether elements of this category are bounded by a
// drawn profile. The decision is structural and made once per category.
func (c Category) IsSketchBound() bool {
	switch c {
	case CategoryFloor, CategoryCeiling, CategoryRoof, CategoryStair:
		return true
	}
	return false
}

// IsStructural reports whether elements of this category participate in
// pairwise adjacency joins (wall-like elements).
func (c Category) IsStructural() bool {
	switch c {
	case CategoryWall, CategoryStructuralColumn:
		return true
	}
	return false
}

// IsAnnotation reports whether this is a view-annotation category.
func (c Category) IsAnnotation() bool {
	switch c {
	case CategoryDimension, CategoryTextNote, CategoryTag,
		CategoryGenericAnnotation, CategoryCallout, CategoryDetailItem:
		return true
	}
	return false
}

// IsDatum reports whether this category anchors the document coordinate
// system and must never be transformed.
func (c Category) IsDatum() bool {
	switch c {
	case CategoryBasePoint, CategorySurveyPoint, CategoryLevel, CategoryGrid:
		return true
	}
	return false
}

// CategorySet is an allow-list of categories.
type CategorySet map[Category]bool

// NewCategorySet builds a set from the given categories.
func NewCategorySet(categories ...Category) CategorySet {
	s := make(CategorySet, len(categories))
	for _, c := range categories {
		s[c] = true
	}
	return s
}

// Has reports membership. The empty set admits every category, so an
// unset allow-list means "everything transformable".
func (s CategorySet) Has(c Category) bool {
	if len(s) == 0 {
		return true
	}
	return s[c]
}

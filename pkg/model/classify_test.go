package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClassifyPartitionsEveryElementOnce(t *testing.T) {
	host := NewID()
	elements := []Element{
		{ID: host, Category: CategoryWall, Location: CurveLocation(mgl64.Vec3{}, mgl64.Vec3{10, 0, 0})},
		{ID: NewID(), Category: CategoryDoor, Host: &host, Location: PointLocation(mgl64.Vec3{5, 0, 0})},
		{ID: NewID(), Category: CategoryFloor, Location: CurveLocation(mgl64.Vec3{}, mgl64.Vec3{10, 10, 0})},
		{ID: NewID(), Category: CategoryDimension, Location: PointLocation(mgl64.Vec3{1, 1, 0})},
		{ID: NewID(), Category: CategoryLevel, Location: PointLocation(mgl64.Vec3{})},
	}

	c := Classify(elements, nil)

	if len(c.Independent) != 1 || len(c.Hosted) != 1 || len(c.SketchBound) != 1 ||
		len(c.Annotations) != 1 || len(c.Excluded) != 1 {
		t.Errorf("partition sizes = %d/%d/%d/%d/%d, want 1 each",
			len(c.Independent), len(c.Hosted), len(c.SketchBound),
			len(c.Annotations), len(c.Excluded))
	}

	total := len(c.Independent) + len(c.Hosted) + len(c.SketchBound) +
		len(c.Annotations) + len(c.Excluded)
	if total != len(elements) {
		t.Errorf("partition covers %d elements, want %d", total, len(elements))
	}
}

func TestClassifyExclusions(t *testing.T) {
	tests := []struct {
		name    string
		element Element
		allow   CategorySet
	}{
		{
			name:    "pinned",
			element: Element{ID: NewID(), Category: CategoryWall, Pinned: true, Location: PointLocation(mgl64.Vec3{})},
		},
		{
			name:    "no placement",
			element: Element{ID: NewID(), Category: CategoryWall},
		},
		{
			name:    "datum category",
			element: Element{ID: NewID(), Category: CategoryGrid, Location: PointLocation(mgl64.Vec3{})},
		},
		{
			name:    "coordinate anchor by name",
			element: Element{ID: NewID(), Name: "Project Base Point", Category: CategoryFurniture, Location: PointLocation(mgl64.Vec3{})},
		},
		{
			name:    "outside allow-list",
			element: Element{ID: NewID(), Category: CategoryFurniture, Location: PointLocation(mgl64.Vec3{})},
			allow:   NewCategorySet(CategoryWall),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify([]Element{tt.element}, tt.allow)
			if len(c.Excluded) != 1 {
				t.Errorf("element not excluded: %+v", c)
			}
		})
	}
}

func TestRegularOrdersIndependentsFirst(t *testing.T) {
	host := NewID()
	guest := NewID()
	c := Classify([]Element{
		{ID: guest, Category: CategoryWindow, Host: &host, Location: PointLocation(mgl64.Vec3{})},
		{ID: host, Category: CategoryWall, Location: CurveLocation(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})},
	}, nil)

	regular := c.Regular()
	if len(regular) != 2 {
		t.Fatalf("Regular returned %d elements, want 2", len(regular))
	}
	if regular[0].ID != host || regular[1].ID != guest {
		t.Error("hosted element ordered before its host")
	}
}

func TestStructuralFiltersJoinParticipants(t *testing.T) {
	c := Classify([]Element{
		{ID: NewID(), Category: CategoryWall, Location: CurveLocation(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})},
		{ID: NewID(), Category: CategoryStructuralColumn, Location: PointLocation(mgl64.Vec3{})},
		{ID: NewID(), Category: CategoryFurniture, Location: PointLocation(mgl64.Vec3{})},
	}, nil)

	if got := len(c.Structural()); got != 2 {
		t.Errorf("Structural = %d elements, want 2", got)
	}
}

func TestCategorySetEmptyAdmitsAll(t *testing.T) {
	var empty CategorySet
	if !empty.Has(CategoryWall) {
		t.Error("empty set rejected a category")
	}
	only := NewCategorySet(CategoryDoor)
	if only.Has(CategoryWall) || !only.Has(CategoryDoor) {
		t.Error("allow-list membership wrong")
	}
}

package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box. The zero value is the empty box,
// which unions as a no-op and reports IsEmpty.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3

	valid bool
}

// NewBox returns the box spanning min..max. Components of min and max are
// swapped where necessary so the result is well-formed.
func NewBox(min, max mgl64.Vec3) Box {
	b := Box{valid: true}
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(min[i], max[i])
		b.Max[i] = math.Max(min[i], max[i])
	}
	return b
}

// BoxOf returns the smallest box containing all points.
// With no points it returns the empty box.
func BoxOf(points ...mgl64.Vec3) Box {
	var b Box
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool { return !b.valid }

// Center returns the box centroid. The empty box centers on the origin.
func (b Box) Center() mgl64.Vec3 {
	if !b.valid {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extend grows the box to include p.
func (b Box) Extend(p mgl64.Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Corners returns the eight corner points. Calling Corners on the empty box
// returns eight origins.
func (b Box) Corners() [8]mgl64.Vec3 {
	var c [8]mgl64.Vec3
	if !b.valid {
		return c
	}
	i := 0
	for _, x := range [2]float64{b.Min.X(), b.Max.X()} {
		for _, y := range [2]float64{b.Min.Y(), b.Max.Y()} {
			for _, z := range [2]float64{b.Min.Z(), b.Max.Z()} {
				c[i] = mgl64.Vec3{x, y, z}
				i++
			}
		}
	}
	return c
}

// Transformed returns the axis-aligned box of this box's corners after
// applying t. Under rotation the result can be larger than the original;
// that is inherent to axis alignment, not an error.
func (b Box) Transformed(t Transform) Box {
	if !b.valid {
		return b
	}
	var out Box
	for _, p := range b.Corners() {
		out = out.Extend(t.OfPoint(p))
	}
	return out
}

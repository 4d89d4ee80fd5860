package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/planshift/planshift/pkg/geom"
	"github.com/planshift/planshift/pkg/model"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to indented JSON.
func MarshalDocument(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(encodeDocument(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalDocument decodes JSON bytes into a document.
func UnmarshalDocument(data []byte) (*Document, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return decodeDocument(rec)
}

// WriteDocument writes a document as indented JSON to w.
func WriteDocument(d *Document, w io.Writer) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalDocument(data)
}

// WriteDocumentFile writes a document to a JSON file.
func WriteDocumentFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(d, f)
}

// ReadDocumentFile reads a JSON file and returns the decoded document.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// =============================================================================
// Wire Types
// =============================================================================

// Vec is the wire form of a point or vector.
type Vec struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

func toVec(v mgl64.Vec3) Vec   { return Vec{X: v.X(), Y: v.Y(), Z: v.Z()} }
func fromVec(v Vec) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func toVecPtr(v mgl64.Vec3) *Vec {
	w := toVec(v)
	return &w
}

func fromVecPtr(v *Vec) mgl64.Vec3 {
	if v == nil {
		return mgl64.Vec3{}
	}
	return fromVec(*v)
}

// ElementRecord is the wire form of a spatial element.
type ElementRecord struct {
	ID                string  `json:"id" bson:"id"`
	Name              string  `json:"name,omitempty" bson:"name,omitempty"`
	Category          string  `json:"category" bson:"category"`
	Placement         string  `json:"placement" bson:"placement"` // none, point, curve
	Point             *Vec    `json:"point,omitempty" bson:"point,omitempty"`
	Start             *Vec    `json:"start,omitempty" bson:"start,omitempty"`
	End               *Vec    `json:"end,omitempty" bson:"end,omitempty"`
	Host              *string `json:"host,omitempty" bson:"host,omitempty"`
	Pinned            bool    `json:"pinned,omitempty" bson:"pinned,omitempty"`
	LockedOrientation bool    `json:"locked_orientation,omitempty" bson:"locked_orientation,omitempty"`
}

// MarkerRecord is the wire form of a directional marker.
type MarkerRecord struct {
	ID       string   `json:"id" bson:"id"`
	Name     string   `json:"name,omitempty" bson:"name,omitempty"`
	Family   string   `json:"family,omitempty" bson:"family,omitempty"`
	Kind     string   `json:"kind" bson:"kind"` // single, hub
	Position Vec      `json:"position" bson:"position"`
	Facing   Vec      `json:"facing" bson:"facing"`
	Views    []string `json:"views,omitempty" bson:"views,omitempty"`
}

// FrameRecord is the wire form of a view's crop frame.
type FrameRecord struct {
	Active bool `json:"active" bson:"active"`
	Origin Vec  `json:"origin" bson:"origin"`
	BasisX Vec  `json:"basis_x" bson:"basis_x"`
	BasisY Vec  `json:"basis_y" bson:"basis_y"`
	BasisZ Vec  `json:"basis_z" bson:"basis_z"`
	Min    Vec  `json:"min" bson:"min"`
	Max    Vec  `json:"max" bson:"max"`
}

// ViewRecord is the wire form of a view.
type ViewRecord struct {
	ID           string      `json:"id" bson:"id"`
	Name         string      `json:"name,omitempty" bson:"name,omitempty"`
	Kind         string      `json:"kind" bson:"kind"` // plan, section, elevation
	Template     bool        `json:"template,omitempty" bson:"template,omitempty"`
	Frame        FrameRecord `json:"frame" bson:"frame"`
	FrameMutable bool        `json:"frame_mutable" bson:"frame_mutable"`
	SectionMin   *Vec        `json:"section_min,omitempty" bson:"section_min,omitempty"`
	SectionMax   *Vec        `json:"section_max,omitempty" bson:"section_max,omitempty"`
}

// JoinPair is the wire form of a join record.
type JoinPair struct {
	A string `json:"a" bson:"a"`
	B string `json:"b" bson:"b"`
}

// Record is the complete wire form of a document.
type Record struct {
	Elements []ElementRecord `json:"elements" bson:"elements"`
	Markers  []MarkerRecord  `json:"markers,omitempty" bson:"markers,omitempty"`
	Views    []ViewRecord    `json:"views,omitempty" bson:"views,omitempty"`
	Joins    []JoinPair      `json:"joins,omitempty" bson:"joins,omitempty"`
}

// =============================================================================
// Conversions
// =============================================================================

func encodeDocument(d *Document) Record {
	var rec Record
	for _, e := range d.elements {
		er := ElementRecord{
			ID:                e.ID.String(),
			Name:              e.Name,
			Category:          string(e.Category),
			Pinned:            e.Pinned,
			LockedOrientation: e.LockedOrientation,
		}
		switch e.Location.Kind {
		case model.LocationPoint:
			er.Placement = "point"
			er.Point = toVecPtr(e.Location.Point)
		case model.LocationCurve:
			er.Placement = "curve"
			er.Start = toVecPtr(e.Location.Start)
			er.End = toVecPtr(e.Location.End)
		default:
			er.Placement = "none"
		}
		if e.Host != nil {
			host := e.Host.String()
			er.Host = &host
		}
		rec.Elements = append(rec.Elements, er)
	}
	for _, m := range d.markers {
		mr := MarkerRecord{
			ID:       m.ID.String(),
			Name:     m.Name,
			Family:   m.Family,
			Kind:     "single",
			Position: toVec(m.Position),
			Facing:   toVec(m.Facing),
		}
		if m.Kind == model.MarkerHub {
			mr.Kind = "hub"
		}
		for _, v := range m.HostedViews() {
			mr.Views = append(mr.Views, v.String())
		}
		rec.Markers = append(rec.Markers, mr)
	}
	for _, v := range d.views {
		vr := ViewRecord{
			ID:           v.ID.String(),
			Name:         v.Name,
			Template:     v.Template,
			FrameMutable: v.FrameMutable,
			Frame: FrameRecord{
				Active: v.Frame.Active,
				Origin: toVec(v.Frame.Origin),
				BasisX: toVec(v.Frame.BasisX),
				BasisY: toVec(v.Frame.BasisY),
				BasisZ: toVec(v.Frame.BasisZ),
				Min:    toVec(v.Frame.Min),
				Max:    toVec(v.Frame.Max),
			},
		}
		switch v.Kind {
		case model.ViewSection:
			vr.Kind = "section"
		case model.ViewElevation:
			vr.Kind = "elevation"
		default:
			vr.Kind = "plan"
		}
		if !v.SectionExtent.IsEmpty() {
			vr.SectionMin = toVecPtr(v.SectionExtent.Min)
			vr.SectionMax = toVecPtr(v.SectionExtent.Max)
		}
		rec.Views = append(rec.Views, vr)
	}
	for j := range d.joins {
		rec.Joins = append(rec.Joins, JoinPair{A: j.A.String(), B: j.B.String()})
	}
	return rec
}

func decodeDocument(rec Record) (*Document, error) {
	d := NewDocument()
	for _, er := range rec.Elements {
		id, err := model.ParseID(er.ID)
		if err != nil {
			return nil, fmt.Errorf("element id %q: %w", er.ID, err)
		}
		e := model.Element{
			ID:                id,
			Name:              er.Name,
			Category:          model.Category(er.Category),
			Pinned:            er.Pinned,
			LockedOrientation: er.LockedOrientation,
		}
		switch er.Placement {
		case "point":
			e.Location = model.PointLocation(fromVecPtr(er.Point))
		case "curve":
			e.Location = model.CurveLocation(fromVecPtr(er.Start), fromVecPtr(er.End))
		case "none", "":
			// no placement
		default:
			return nil, fmt.Errorf("element %s: unknown placement %q", er.ID, er.Placement)
		}
		if er.Host != nil {
			host, err := model.ParseID(*er.Host)
			if err != nil {
				return nil, fmt.Errorf("element %s host: %w", er.ID, err)
			}
			e.Host = &host
		}
		if err := d.AddElement(e); err != nil {
			return nil, err
		}
	}
	for _, mr := range rec.Markers {
		id, err := model.ParseID(mr.ID)
		if err != nil {
			return nil, fmt.Errorf("marker id %q: %w", mr.ID, err)
		}
		m := model.Marker{
			ID:       id,
			Name:     mr.Name,
			Family:   mr.Family,
			Position: fromVec(mr.Position),
			Facing:   fromVec(mr.Facing),
		}
		switch mr.Kind {
		case "hub":
			m.Kind = model.MarkerHub
		case "single", "":
			m.Kind = model.MarkerSingle
		default:
			return nil, fmt.Errorf("marker %s: unknown kind %q", mr.ID, mr.Kind)
		}
		for _, vs := range mr.Views {
			vid, err := model.ParseID(vs)
			if err != nil {
				return nil, fmt.Errorf("marker %s view: %w", mr.ID, err)
			}
			m.Views = append(m.Views, vid)
		}
		if err := d.AddMarker(m); err != nil {
			return nil, err
		}
	}
	for _, vr := range rec.Views {
		id, err := model.ParseID(vr.ID)
		if err != nil {
			return nil, fmt.Errorf("view id %q: %w", vr.ID, err)
		}
		v := model.View{
			ID:           id,
			Name:         vr.Name,
			Template:     vr.Template,
			FrameMutable: vr.FrameMutable,
			Frame: model.Frame{
				Active: vr.Frame.Active,
				Origin: fromVec(vr.Frame.Origin),
				BasisX: fromVec(vr.Frame.BasisX),
				BasisY: fromVec(vr.Frame.BasisY),
				BasisZ: fromVec(vr.Frame.BasisZ),
				Min:    fromVec(vr.Frame.Min),
				Max:    fromVec(vr.Frame.Max),
			},
		}
		switch vr.Kind {
		case "section":
			v.Kind = model.ViewSection
		case "elevation":
			v.Kind = model.ViewElevation
		case "plan", "":
			v.Kind = model.ViewPlan
		default:
			return nil, fmt.Errorf("view %s: unknown kind %q", vr.ID, vr.Kind)
		}
		if vr.SectionMin != nil && vr.SectionMax != nil {
			v.SectionExtent = geom.NewBox(fromVec(*vr.SectionMin), fromVec(*vr.SectionMax))
		}
		if err := d.AddView(v); err != nil {
			return nil, err
		}
	}
	for _, jp := range rec.Joins {
		a, err := model.ParseID(jp.A)
		if err != nil {
			return nil, fmt.Errorf("join id %q: %w", jp.A, err)
		}
		b, err := model.ParseID(jp.B)
		if err != nil {
			return nil, fmt.Errorf("join id %q: %w", jp.B, err)
		}
		d.joins[model.NewJoinRecord(a, b)] = true
	}
	return d, nil
}

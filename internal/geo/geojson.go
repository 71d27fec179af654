package geo

import (
	"encoding/json"
	"fmt"
)

// FeatureCollection is the top level of a GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature holds one GeoJSON feature. Properties stay raw so each dataset can
// decode its own property bag.
type Feature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   Geometry        `json:"geometry"`
}

// Geometry holds a GeoJSON geometry with lazily decoded coordinates.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Point decodes a Point geometry into (lon, lat).
func (g Geometry) Point() (lon, lat float64, err error) {
	if g.Type != "Point" {
		return 0, 0, fmt.Errorf("geometry type %q, want Point", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return 0, 0, fmt.Errorf("decode point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return 0, 0, fmt.Errorf("point has %d coordinates, want 2", len(coords))
	}
	return coords[0], coords[1], nil
}

// AsMultiPolygon decodes a Polygon or MultiPolygon geometry into a
// MultiPolygon with X=lon, Y=lat. Callers project the result into planar
// coordinates before measuring anything.
func (g Geometry) AsMultiPolygon() (MultiPolygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("decode polygon coordinates: %w", err)
		}
		p, err := toPolygon(rings)
		if err != nil {
			return nil, err
		}
		return MultiPolygon{p}, nil
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("decode multipolygon coordinates: %w", err)
		}
		mp := make(MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := toPolygon(rings)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("geometry type %q, want Polygon or MultiPolygon", g.Type)
	}
}

func toPolygon(rings [][][]float64) (Polygon, error) {
	p := make(Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(Ring, 0, len(ring))
		for _, pos := range ring {
			if len(pos) < 2 {
				return nil, fmt.Errorf("ring position has %d coordinates, want 2", len(pos))
			}
			r = append(r, Point{X: pos[0], Y: pos[1]})
		}
		p = append(p, r)
	}
	return p, nil
}

// ProjectRegion applies fn to every vertex of the region, typically to move
// a lon/lat multipolygon into Lambert-93 meters.
func ProjectRegion(mp MultiPolygon, fn func(lon, lat float64) Point) MultiPolygon {
	out := make(MultiPolygon, len(mp))
	for i, p := range mp {
		outP := make(Polygon, len(p))
		for j, ring := range p {
			outR := make(Ring, len(ring))
			for k, pt := range ring {
				outR[k] = fn(pt.X, pt.Y)
			}
			outP[j] = outR
		}
		out[i] = outP
	}
	return out
}

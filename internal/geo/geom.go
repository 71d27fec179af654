// Package geo provides the small amount of planar geometry the analyses
// need: GeoJSON decoding, point-in-polygon tests, areas, boundary distances,
// and the WGS-84 → Lambert-93 projection used to put everything in meters.
package geo

import "math"

// Point is a planar coordinate pair. For projected data X is east and Y is
// north, both in meters.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Ring is a closed linear ring. The closing vertex may be present or absent;
// all computations treat the ring as implicitly closed.
type Ring []Point

// Polygon is an outer ring followed by zero or more hole rings.
type Polygon []Ring

// MultiPolygon is a set of polygons treated as one region.
type MultiPolygon []Polygon

// signedArea returns the shoelace area of the ring: positive for
// counter-clockwise winding, negative for clockwise.
func (r Ring) signedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area of the ring.
func (r Ring) Area() float64 {
	return math.Abs(r.signedArea())
}

// Area returns the polygon area: the outer ring minus its holes.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}
	area := p[0].Area()
	for _, hole := range p[1:] {
		area -= hole.Area()
	}
	return area
}

// Area returns the total area of all member polygons.
func (mp MultiPolygon) Area() float64 {
	var area float64
	for _, p := range mp {
		area += p.Area()
	}
	return area
}

// Contains reports whether pt lies inside the polygon using the even-odd
// rule, so points inside a hole are outside the polygon.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	for _, ring := range p {
		if ring.crossings(pt)%2 == 1 {
			inside = !inside
		}
	}
	return inside
}

// Contains reports whether pt lies inside any member polygon.
func (mp MultiPolygon) Contains(pt Point) bool {
	for _, p := range mp {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

// crossings counts edges crossed by a ray from pt toward +X.
func (r Ring) crossings(pt Point) int {
	n := len(r)
	if n < 3 {
		return 0
	}
	count := 0
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if (a.Y > pt.Y) == (b.Y > pt.Y) {
			continue
		}
		x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if x > pt.X {
			count++
		}
	}
	return count
}

// DistanceToBoundary returns the shortest distance from pt to any ring edge
// of the region. It does not test containment; callers that need "distance
// inside the window" should check Contains first.
func (mp MultiPolygon) DistanceToBoundary(pt Point) float64 {
	best := math.Inf(1)
	for _, p := range mp {
		for _, ring := range p {
			n := len(ring)
			for i := 0; i < n; i++ {
				d := distPointSegment(pt, ring[i], ring[(i+1)%n])
				if d < best {
					best = d
				}
			}
		}
	}
	return best
}

// distPointSegment returns the distance from p to the segment ab.
func distPointSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Dist(p, Point{a.X + t*dx, a.Y + t*dy})
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the bounding box of the region. The zero box is returned
// for an empty region.
func (mp MultiPolygon) Bounds() BBox {
	first := true
	var b BBox
	for _, p := range mp {
		for _, ring := range p {
			for _, pt := range ring {
				if first {
					b = BBox{pt.X, pt.Y, pt.X, pt.Y}
					first = false
					continue
				}
				b.MinX = math.Min(b.MinX, pt.X)
				b.MinY = math.Min(b.MinY, pt.Y)
				b.MaxX = math.Max(b.MaxX, pt.X)
				b.MaxY = math.Max(b.MaxY, pt.Y)
			}
		}
	}
	return b
}

// Centroid returns the area-weighted centroid of the region. Holes subtract
// from the weighting. Returns the zero point for degenerate input.
func (mp MultiPolygon) Centroid() Point {
	var cx, cy, totalArea float64
	for _, p := range mp {
		for ri, ring := range p {
			a := ring.signedArea()
			weight := math.Abs(a)
			if ri > 0 {
				weight = -weight
			}
			if weight == 0 {
				continue
			}
			c := ring.centroid()
			cx += c.X * weight
			cy += c.Y * weight
			totalArea += weight
		}
	}
	if totalArea == 0 {
		return Point{}
	}
	return Point{cx / totalArea, cy / totalArea}
}

// centroid returns the centroid of a single ring.
func (r Ring) centroid() Point {
	a := r.signedArea()
	if a == 0 {
		// Degenerate ring: fall back to the vertex mean.
		var sx, sy float64
		for _, pt := range r {
			sx += pt.X
			sy += pt.Y
		}
		n := float64(len(r))
		if n == 0 {
			return Point{}
		}
		return Point{sx / n, sy / n}
	}
	var cx, cy float64
	n := len(r)
	for i := 0; i < n; i++ {
		p0, p1 := r[i], r[(i+1)%n]
		cross := p0.X*p1.Y - p1.X*p0.Y
		cx += (p0.X + p1.X) * cross
		cy += (p0.Y + p1.Y) * cross
	}
	return Point{cx / (6 * a), cy / (6 * a)}
}

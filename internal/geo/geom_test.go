package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitSquare returns a 1x1 square with corner at the origin.
func unitSquare() Polygon {
	return Polygon{Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
}

func TestRingArea(t *testing.T) {
	tests := []struct {
		name string
		ring Ring
		want float64
	}{
		{"unit square ccw", Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 1},
		{"unit square cw", Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, 1},
		{"triangle", Ring{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"explicitly closed", Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, 4},
		{"degenerate", Ring{{0, 0}, {1, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.ring.Area(), 1e-12)
		})
	}
}

func TestPolygonAreaWithHole(t *testing.T) {
	p := Polygon{
		Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}}, // 2x2 hole
	}
	assert.InDelta(t, 96.0, p.Area(), 1e-12)

	mp := MultiPolygon{p, unitSquare()}
	assert.InDelta(t, 97.0, mp.Area(), 1e-12)
}

func TestPolygonContains(t *testing.T) {
	p := Polygon{
		Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}},
	}

	assert.True(t, p.Contains(Point{1, 1}))
	assert.True(t, p.Contains(Point{9.9, 9.9}))
	assert.False(t, p.Contains(Point{5, 5}), "inside the hole is outside the polygon")
	assert.False(t, p.Contains(Point{-1, 5}))
	assert.False(t, p.Contains(Point{11, 5}))
}

func TestMultiPolygonContains(t *testing.T) {
	mp := MultiPolygon{
		unitSquare(),
		Polygon{Ring{{5, 5}, {6, 5}, {6, 6}, {5, 6}}},
	}

	assert.True(t, mp.Contains(Point{0.5, 0.5}))
	assert.True(t, mp.Contains(Point{5.5, 5.5}))
	assert.False(t, mp.Contains(Point{3, 3}))
}

func TestDistanceToBoundary(t *testing.T) {
	mp := MultiPolygon{Polygon{Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}}

	assert.InDelta(t, 5.0, mp.DistanceToBoundary(Point{5, 5}), 1e-12)
	assert.InDelta(t, 1.0, mp.DistanceToBoundary(Point{1, 5}), 1e-12)
	assert.InDelta(t, 0.0, mp.DistanceToBoundary(Point{0, 5}), 1e-12)
	// Outside points measure to the nearest edge too.
	assert.InDelta(t, 2.0, mp.DistanceToBoundary(Point{-2, 5}), 1e-12)
}

func TestBounds(t *testing.T) {
	mp := MultiPolygon{
		Polygon{Ring{{2, 3}, {8, 3}, {8, 7}, {2, 7}}},
		Polygon{Ring{{-1, 5}, {0, 5}, {0, 6}, {-1, 6}}},
	}
	b := mp.Bounds()
	assert.Equal(t, BBox{-1, 3, 8, 7}, b)

	assert.Equal(t, BBox{}, MultiPolygon{}.Bounds())
}

func TestCentroid(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		mp := MultiPolygon{Polygon{Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}}}}
		c := mp.Centroid()
		assert.InDelta(t, 1.0, c.X, 1e-12)
		assert.InDelta(t, 1.0, c.Y, 1e-12)
	})

	t.Run("hole pulls centroid away", func(t *testing.T) {
		// 10x10 square with a 4x4 hole in the left half.
		mp := MultiPolygon{Polygon{
			Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
			Ring{{1, 3}, {5, 3}, {5, 7}, {1, 7}},
		}}
		c := mp.Centroid()
		assert.Greater(t, c.X, 5.0, "mass removed on the left shifts centroid right")
		assert.InDelta(t, 5.0, c.Y, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Point{}, MultiPolygon{}.Centroid())
	})
}

func TestDist(t *testing.T) {
	assert.InDelta(t, 5.0, Dist(Point{0, 0}, Point{3, 4}), 1e-12)
}

func TestGeometryPoint(t *testing.T) {
	g := Geometry{Type: "Point", Coordinates: []byte(`[2.3499, 48.853]`)}
	lon, lat, err := g.Point()
	require.NoError(t, err)
	assert.Equal(t, 2.3499, lon)
	assert.Equal(t, 48.853, lat)

	_, _, err = Geometry{Type: "Polygon"}.Point()
	require.Error(t, err)

	_, _, err = Geometry{Type: "Point", Coordinates: []byte(`[2.3499]`)}.Point()
	require.Error(t, err)
}

func TestGeometryAsMultiPolygon(t *testing.T) {
	t.Run("polygon", func(t *testing.T) {
		g := Geometry{Type: "Polygon", Coordinates: []byte(`[[[0,0],[4,0],[4,4],[0,4],[0,0]]]`)}
		mp, err := g.AsMultiPolygon()
		require.NoError(t, err)
		require.Len(t, mp, 1)
		assert.InDelta(t, 16.0, mp.Area(), 1e-12)
	})

	t.Run("multipolygon", func(t *testing.T) {
		g := Geometry{Type: "MultiPolygon", Coordinates: []byte(`[[[[0,0],[1,0],[1,1],[0,1]]],[[[5,5],[7,5],[7,7],[5,7]]]]`)}
		mp, err := g.AsMultiPolygon()
		require.NoError(t, err)
		require.Len(t, mp, 2)
		assert.InDelta(t, 5.0, mp.Area(), 1e-12)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Geometry{Type: "Point", Coordinates: []byte(`[0,0]`)}.AsMultiPolygon()
		require.Error(t, err)
	})
}

func TestProjectRegion(t *testing.T) {
	mp := MultiPolygon{Polygon{Ring{{1, 2}, {3, 4}}}}
	out := ProjectRegion(mp, func(lon, lat float64) Point {
		return Point{lon * 10, lat * 10}
	})
	assert.Equal(t, Point{10, 20}, out[0][0][0])
	assert.Equal(t, Point{30, 40}, out[0][0][1])
	// Input untouched.
	assert.Equal(t, Point{1, 2}, mp[0][0][0])
}

func TestLambert93KnownPoints(t *testing.T) {
	// Reference values computed with the EPSG 9802 formulas for RGF93 /
	// Lambert-93 (IGN NTG_71 parameters).
	tests := []struct {
		name     string
		lon, lat float64
		e, n     float64
	}{
		{"notre-dame", 2.3499, 48.8530, 652296.97, 6861636.36},
		{"parc montsouris", 2.3386, 48.8222, 651439.14, 6858218.62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Lambert93(tt.lon, tt.lat)
			assert.InDelta(t, tt.e, p.X, 1.0)
			assert.InDelta(t, tt.n, p.Y, 1.0)
		})
	}
}

func TestLambert93LocalScale(t *testing.T) {
	// At Paris latitude 0.01 deg of longitude spans ~734 m and 0.01 deg of
	// latitude ~1112 m; the projection must preserve those to well under 1%.
	a := Lambert93(2.34, 48.85)
	b := Lambert93(2.35, 48.85)
	c := Lambert93(2.34, 48.86)

	assert.InDelta(t, 733.8, Dist(a, b), 2.0)
	assert.InDelta(t, 1111.9, Dist(a, c), 2.0)
	assert.True(t, math.Abs(b.X-a.X) > 700, "east axis follows longitude")
	assert.True(t, math.Abs(c.Y-a.Y) > 1100, "north axis follows latitude")
}

package stats

import (
	"fmt"
	"math"

	"github.com/couchcryptid/paris-tree-census/internal/geo"
)

// KResult holds the Ripley K concentration function of a point pattern at a
// ladder of radii, with and without border correction, plus the variance-
// stabilized L transform and the complete-spatial-randomness reference.
type KResult struct {
	R       []float64 // radii, meters
	K       []float64 // uncorrected estimate
	KBorder []float64 // border (reduced-sample) estimate; NaN where undefined
	L       []float64 // sqrt(K/pi)
	LBorder []float64
	CSR     []float64 // pi r^2

	N      int     // points in the pattern
	Area   float64 // window area, square meters
	Lambda float64 // estimated intensity (n-1)/|W|
}

// RipleyK estimates K(r) for the pattern inside the window at steps radii up
// to maxR. The intensity is estimated as (n-1)/|W|, the usual small-sample
// correction, which makes the uncorrected and border estimators agree on
// patterns far from the boundary.
//
// Neighbor counting goes through a grid index with maxR-sized cells, so the
// cost is proportional to the number of nearby pairs rather than n².
func RipleyK(points []geo.Point, window geo.MultiPolygon, maxR float64, steps int) (*KResult, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("ripley k needs at least 2 points, got %d", n)
	}
	if maxR <= 0 || steps <= 0 {
		return nil, fmt.Errorf("ripley k needs positive radius and steps")
	}
	area := window.Area()
	if area <= 0 {
		return nil, fmt.Errorf("window has no area")
	}

	dr := maxR / float64(steps)
	radii := make([]float64, steps)
	for k := range radii {
		radii[k] = dr * float64(k+1)
	}

	// Per-point neighbor histograms over the radius ladder.
	hist := make([][]int, n)
	for i := range hist {
		hist[i] = make([]int, steps)
	}

	idx := newGridIndex(points, maxR)
	for i, p := range points {
		idx.visitNeighbors(i, func(j int) {
			d := geo.Dist(p, points[j])
			if d > maxR {
				return
			}
			k := 0
			if d > 0 {
				k = int(math.Ceil(d/dr)) - 1
			}
			if k < 0 {
				k = 0
			}
			if k < steps {
				hist[i][k]++
			}
		})
	}

	// Cumulative counts per point.
	for i := range hist {
		for k := 1; k < steps; k++ {
			hist[i][k] += hist[i][k-1]
		}
	}

	boundaryDist := make([]float64, n)
	for i, p := range points {
		boundaryDist[i] = window.DistanceToBoundary(p)
	}

	lambda := float64(n-1) / area
	res := &KResult{
		R:       radii,
		K:       make([]float64, steps),
		KBorder: make([]float64, steps),
		L:       make([]float64, steps),
		LBorder: make([]float64, steps),
		CSR:     make([]float64, steps),
		N:       n,
		Area:    area,
		Lambda:  lambda,
	}

	for k, r := range radii {
		var pairSum, borderSum float64
		borderCenters := 0
		for i := range points {
			c := float64(hist[i][k])
			pairSum += c
			if boundaryDist[i] > r {
				borderSum += c
				borderCenters++
			}
		}

		res.K[k] = pairSum / (lambda * float64(n))
		res.L[k] = math.Sqrt(res.K[k] / math.Pi)
		res.CSR[k] = math.Pi * r * r

		if borderCenters == 0 {
			res.KBorder[k] = math.NaN()
			res.LBorder[k] = math.NaN()
			continue
		}
		res.KBorder[k] = borderSum / (lambda * float64(borderCenters))
		res.LBorder[k] = math.Sqrt(res.KBorder[k] / math.Pi)
	}

	return res, nil
}

// gridIndex buckets points into square cells so neighbor scans only touch
// the 3x3 cell block around a point.
type gridIndex struct {
	points   []geo.Point
	cellSize float64
	minX     float64
	minY     float64
	cells    map[[2]int][]int
}

func newGridIndex(points []geo.Point, cellSize float64) *gridIndex {
	g := &gridIndex{
		points:   points,
		cellSize: cellSize,
		cells:    make(map[[2]int][]int),
	}
	if len(points) > 0 {
		g.minX, g.minY = points[0].X, points[0].Y
		for _, p := range points[1:] {
			g.minX = math.Min(g.minX, p.X)
			g.minY = math.Min(g.minY, p.Y)
		}
	}
	for i, p := range points {
		c := g.cellOf(p)
		g.cells[c] = append(g.cells[c], i)
	}
	return g
}

func (g *gridIndex) cellOf(p geo.Point) [2]int {
	return [2]int{
		int(math.Floor((p.X - g.minX) / g.cellSize)),
		int(math.Floor((p.Y - g.minY) / g.cellSize)),
	}
}

// visitNeighbors calls fn for every other point within the 3x3 cell block
// around point i. Distances are not filtered here.
func (g *gridIndex) visitNeighbors(i int, fn func(j int)) {
	c := g.cellOf(g.points[i])
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, j := range g.cells[[2]int{c[0] + dx, c[1] + dy}] {
				if j != i {
					fn(j)
				}
			}
		}
	}
}

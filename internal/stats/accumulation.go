package stats

import (
	"math"
	"sort"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
	"github.com/couchcryptid/paris-tree-census/internal/geo"
)

// AccumulationStep is one point of a spatial diversity accumulation curve:
// the diversity seen after pooling the k nearest trees around the focal
// location, with each tree weighted by a Gaussian kernel of its distance.
type AccumulationStep struct {
	K         int     // neighbors pooled so far
	Distance  float64 // distance of the k-th neighbor, meters
	Entropy   float64 // kernel-weighted Shannon entropy, nats
	Effective float64 // Hill number of order 1
}

// AccumulationCurve orders trees by distance from the focal point and
// computes the locally-weighted Shannon diversity after each addition.
// Weights follow exp(-(d/h)²/2) with bandwidth h, so distant neighbors
// contribute progressively less and the curve flattens at the scale where
// the local species pool is exhausted. Returns nil for an empty input.
func AccumulationCurve(trees []domain.Tree, focal geo.Point, bandwidth float64) []AccumulationStep {
	if len(trees) == 0 || bandwidth <= 0 {
		return nil
	}

	type neighbor struct {
		species string
		dist    float64
		weight  float64
	}
	neighbors := make([]neighbor, 0, len(trees))
	for _, t := range trees {
		d := geo.Dist(focal, geo.Point{X: t.East, Y: t.North})
		z := d / bandwidth
		neighbors = append(neighbors, neighbor{
			species: t.Species,
			dist:    d,
			weight:  math.Exp(-z * z / 2),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	weights := make(map[string]float64)
	var totalWeight float64
	steps := make([]AccumulationStep, 0, len(neighbors))

	for k, nb := range neighbors {
		weights[nb.species] += nb.weight
		totalWeight += nb.weight

		var h float64
		if totalWeight > 0 {
			for _, w := range weights {
				if w <= 0 {
					continue
				}
				p := w / totalWeight
				h -= p * math.Log(p)
			}
		}

		steps = append(steps, AccumulationStep{
			K:         k + 1,
			Distance:  nb.dist,
			Entropy:   h,
			Effective: math.Exp(h),
		})
	}
	return steps
}

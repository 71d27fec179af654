package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShannonEntropy(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   float64
	}{
		{"empty", map[string]int{}, 0},
		{"single species", map[string]int{"a": 10}, 0},
		{"uniform two", map[string]int{"a": 5, "b": 5}, math.Log(2)},
		{"uniform four", map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, math.Log(4)},
		{"skewed", map[string]int{"a": 9, "b": 1}, -(0.9*math.Log(0.9) + 0.1*math.Log(0.1))},
		{"zero count ignored", map[string]int{"a": 4, "b": 0, "c": 4}, math.Log(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ShannonEntropy(tt.counts), 1e-12)
		})
	}
}

func TestEffectiveSpecies(t *testing.T) {
	assert.InDelta(t, 1.0, EffectiveSpecies(0), 1e-12)
	assert.InDelta(t, 4.0, EffectiveSpecies(math.Log(4)), 1e-12)
}

func TestPartitionDiversity(t *testing.T) {
	t.Run("identical groups have zero beta", func(t *testing.T) {
		groups := map[string]map[string]int{
			"RUE A": {"x": 10, "y": 10},
			"RUE B": {"x": 10, "y": 10},
		}
		p := PartitionDiversity(groups, 1)

		assert.InDelta(t, math.Log(2), p.Gamma, 1e-12)
		assert.InDelta(t, math.Log(2), p.Alpha, 1e-12)
		assert.InDelta(t, 0, p.Beta, 1e-12)
		assert.InDelta(t, 1.0, p.BetaEffective, 1e-9)
		assert.Equal(t, 2, p.Groups)
		assert.Equal(t, 40, p.Individuals)
	})

	t.Run("disjoint monocultures put everything in beta", func(t *testing.T) {
		groups := map[string]map[string]int{
			"RUE A": {"x": 10},
			"RUE B": {"y": 10},
		}
		p := PartitionDiversity(groups, 1)

		assert.InDelta(t, math.Log(2), p.Gamma, 1e-12)
		assert.InDelta(t, 0, p.Alpha, 1e-12)
		assert.InDelta(t, math.Log(2), p.Beta, 1e-12)
		assert.InDelta(t, 2.0, p.BetaEffective, 1e-9, "behaves like 2 distinct communities")
	})

	t.Run("weighted alpha", func(t *testing.T) {
		// 30 individuals with H=ln2, 10 with H=0.
		groups := map[string]map[string]int{
			"RUE A": {"x": 15, "y": 15},
			"RUE B": {"z": 10},
		}
		p := PartitionDiversity(groups, 1)
		assert.InDelta(t, 0.75*math.Log(2), p.Alpha, 1e-12)
		assert.True(t, p.Beta > 0)
	})

	t.Run("size filter drops small streets", func(t *testing.T) {
		groups := map[string]map[string]int{
			"RUE A":     {"x": 10, "y": 10},
			"TINY PATH": {"z": 2},
		}
		p := PartitionDiversity(groups, 5)
		assert.Equal(t, 1, p.Groups)
		assert.Equal(t, 20, p.Individuals)
		assert.InDelta(t, math.Log(2), p.Gamma, 1e-12, "filtered group is out of gamma too")
	})

	t.Run("nothing survives filter", func(t *testing.T) {
		groups := map[string]map[string]int{"RUE A": {"x": 1}}
		p := PartitionDiversity(groups, 10)
		assert.Equal(t, Partition{}, p)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Partition{}, PartitionDiversity(nil, 1))
	})
}

package stats

import (
	"math"
	"sort"
)

// ShannonEntropy returns the Shannon index H = -Σ p ln p over a species
// count table, in nats. Empty input yields 0.
func ShannonEntropy(counts map[string]int) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}

// EffectiveSpecies converts an entropy to its Hill number of order 1:
// the count of equally-common species that would produce the same entropy.
func EffectiveSpecies(h float64) float64 {
	return math.Exp(h)
}

// Partition is an additive Shannon diversity decomposition: Gamma is the
// entropy of the pooled community, Alpha the individual-weighted mean of the
// group entropies, Beta their difference. The Effective fields are the
// corresponding Hill numbers; BetaEffective is the number of compositionally
// distinct groups the street system behaves like.
type Partition struct {
	Gamma float64
	Alpha float64
	Beta  float64

	GammaEffective float64
	AlphaEffective float64
	BetaEffective  float64

	Groups      int // groups retained after the size filter
	Individuals int // individuals in retained groups
}

// PartitionDiversity decomposes diversity across groups. Groups with fewer
// than minGroupSize individuals are excluded; they are mostly short street
// segments whose tiny samples would drag alpha down artificially. Returns
// the zero Partition when nothing survives the filter.
func PartitionDiversity(groups map[string]map[string]int, minGroupSize int) Partition {
	pooled := make(map[string]int)
	var alpha float64
	total := 0
	kept := 0

	// Deterministic iteration keeps float accumulation stable run to run.
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	sizes := make(map[string]int, len(groups))
	for _, name := range names {
		size := 0
		for _, n := range groups[name] {
			size += n
		}
		if size < minGroupSize {
			continue
		}
		sizes[name] = size
		total += size
		kept++
		for sp, n := range groups[name] {
			pooled[sp] += n
		}
	}
	if total == 0 {
		return Partition{}
	}

	for _, name := range names {
		size, ok := sizes[name]
		if !ok {
			continue
		}
		alpha += float64(size) / float64(total) * ShannonEntropy(groups[name])
	}

	gamma := ShannonEntropy(pooled)
	beta := gamma - alpha
	if beta < 0 {
		// Weighted alpha never exceeds gamma mathematically; guard against
		// float round-off producing -1e-16.
		beta = 0
	}

	return Partition{
		Gamma:          gamma,
		Alpha:          alpha,
		Beta:           beta,
		GammaEffective: EffectiveSpecies(gamma),
		AlphaEffective: EffectiveSpecies(alpha),
		BetaEffective:  EffectiveSpecies(beta),
		Groups:         kept,
		Individuals:    total,
	}
}

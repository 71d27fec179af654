// Package stats implements the census analyses: abundance tables, Shannon
// diversity partitioning, the Ripley K point-pattern concentration function,
// and the locally-weighted diversity accumulation curve.
package stats

import (
	"sort"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
)

// Abundance is one row of an abundance table.
type Abundance struct {
	Name  string
	Count int
	Share float64 // fraction of all individuals
}

// AbundanceBySpecies counts individuals per species binomial, most abundant
// first. Ties break alphabetically so output order is stable.
func AbundanceBySpecies(trees []domain.Tree) []Abundance {
	return abundanceBy(trees, func(t domain.Tree) string { return t.Species })
}

// AbundanceByGenus counts individuals per genus.
func AbundanceByGenus(trees []domain.Tree) []Abundance {
	return abundanceBy(trees, func(t domain.Tree) string { return t.Genus })
}

// AbundanceBySizeClass counts individuals per derived size class; unmeasured
// trees are reported under "unmeasured".
func AbundanceBySizeClass(trees []domain.Tree) []Abundance {
	return abundanceBy(trees, func(t domain.Tree) string {
		if t.SizeClass == nil {
			return "unmeasured"
		}
		return *t.SizeClass
	})
}

func abundanceBy(trees []domain.Tree, key func(domain.Tree) string) []Abundance {
	counts := make(map[string]int)
	total := 0
	for _, t := range trees {
		k := key(t)
		if k == "" {
			continue
		}
		counts[k]++
		total++
	}

	rows := make([]Abundance, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, Abundance{Name: name, Count: n, Share: float64(n) / float64(total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// TopN returns the first n rows of an abundance table, or all of them when
// the table is shorter.
func TopN(rows []Abundance, n int) []Abundance {
	if n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// CountsByGroup tallies species counts per group (street, sector, ...).
// Individuals with an empty group or species key are skipped.
func CountsByGroup(trees []domain.Tree, group func(domain.Tree) string) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, t := range trees {
		g := group(t)
		if g == "" || t.Species == "" {
			continue
		}
		if out[g] == nil {
			out[g] = make(map[string]int)
		}
		out[g][t.Species]++
	}
	return out
}

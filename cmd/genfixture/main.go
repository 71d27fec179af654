// Command genfixture samples a full "les-arbres" portal export down to a
// small GeoJSON fixture for the test suites. It runs the real domain
// transformation over the sample and prints the resulting counts, so test
// assertions can be updated alongside the fixture.
//
// Sampling is deterministic: every Nth feature is kept, plus every feature
// on the focal park and every remarkable tree, so the analyses the tests
// exercise stay meaningful at fixture scale.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -in data/cache/les-arbres.geojson \
//	  -out internal/pipeline/testdata/les-arbres-sample.geojson \
//	  -keep-every 500
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
	"github.com/couchcryptid/paris-tree-census/internal/geo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "full les-arbres GeoJSON export")
	out := flag.String("out", "", "output path for the sampled fixture")
	keepEvery := flag.Int("keep-every", 500, "keep one feature in N")
	focalPark := flag.String("focal-park", "PARC MONTSOURIS", "park whose trees are always kept")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}
	if *keepEvery < 1 {
		return fmt.Errorf("-keep-every must be at least 1")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}
	log.Printf("export: %d features", len(fc.Features))

	parkKey := domain.NormalizeStreet(*focalPark)
	sample := sampleFeatures(fc.Features, *keepEvery, parkKey)
	log.Printf("sample: %d features (1 in %d + park + remarkable)", len(sample), *keepEvery)

	if err := writeFixture(*out, sample); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(sample, parkKey)
	return nil
}

// sampleFeatures keeps every Nth feature plus all park and remarkable trees.
func sampleFeatures(features []geo.Feature, keepEvery int, parkKey string) []geo.Feature {
	var out []geo.Feature
	for i, f := range features {
		if i%keepEvery == 0 {
			out = append(out, f)
			continue
		}
		tree, err := domain.ParseTreeFeature(f)
		if err != nil {
			continue
		}
		if tree.Remarkable || strings.HasPrefix(domain.NormalizeStreet(tree.Street), parkKey) {
			out = append(out, f)
		}
	}
	return out
}

func writeFixture(path string, features []geo.Feature) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fc := geo.FeatureCollection{Type: "FeatureCollection", Features: features}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

type nameCount struct {
	name  string
	count int
}

func printStats(features []geo.Feature, parkKey string) {
	speciesCounts := map[string]int{}
	sectorCounts := map[string]int{}
	parkSpecies := map[string]int{}
	var total, dropped, remarkable int

	for _, f := range features {
		tree, err := domain.ParseTreeFeature(f)
		if err != nil {
			dropped++
			continue
		}
		tree = domain.EnrichTree(tree)
		if err := domain.ValidTree(tree); err != nil {
			dropped++
			continue
		}
		total++
		speciesCounts[tree.Species]++
		sectorCounts[tree.Sector]++
		if tree.Remarkable {
			remarkable++
		}
		if strings.HasPrefix(tree.Street, parkKey) {
			parkSpecies[tree.Species]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Valid: %d, dropped: %d, remarkable: %d\n", total, dropped, remarkable)
	fmt.Printf("Species: %d, sectors: %d\n", len(speciesCounts), len(sectorCounts))

	fmt.Println("\nTop species:")
	for _, sc := range topCounts(speciesCounts, 10) {
		fmt.Printf("  %s=%d\n", sc.name, sc.count)
	}

	fmt.Println("\nBy sector:")
	for _, sc := range topCounts(sectorCounts, len(sectorCounts)) {
		fmt.Printf("  %s=%d\n", sc.name, sc.count)
	}

	fmt.Printf("\nFocal park (%s): %d trees, %d species\n",
		parkKey, sumCounts(parkSpecies), len(parkSpecies))
	for _, sc := range topCounts(parkSpecies, 5) {
		fmt.Printf("  %s=%d\n", sc.name, sc.count)
	}
}

func topCounts(counts map[string]int, n int) []nameCount {
	out := make([]nameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, nameCount{name, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// Command validate audits a downloaded "les-arbres" export before a census
// run: GeoJSON structure, coordinate plausibility, field integrity, and,
// when a cached analysis table is given, consistency between the export and
// the table. It runs the real domain transformation, so what it accepts is
// exactly what the pipeline would keep.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -trees data/cache/les-arbres.geojson \
//	  -districts data/cache/arrondissements.geojson \
//	  -db data/cache/trees.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
	"github.com/couchcryptid/paris-tree-census/internal/geo"
	"github.com/couchcryptid/paris-tree-census/internal/store"
)

// Greater-Paris bounding box in WGS-84, generous enough for the annexed
// woods and the extramural cemeteries the export includes.
const (
	minLon = 2.0
	maxLon = 2.7
	minLat = 48.6
	maxLat = 49.1
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	treesPath := flag.String("trees", "", "path to the les-arbres GeoJSON export")
	districtsPath := flag.String("districts", "", "optional path to the arrondissements GeoJSON export")
	dbPath := flag.String("db", "", "optional path to the cached SQLite analysis table")
	maxErrors := flag.Int("max-errors", 25, "detailed errors printed per phase")
	flag.Parse()

	if *treesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*treesPath, *districtsPath, *dbPath, *maxErrors); code != 0 {
		os.Exit(code)
	}
}

func run(treesPath, districtsPath, dbPath string, maxErrors int) int {
	fmt.Println("=== Tree Census Export Validation ===")
	fmt.Println()

	fc, err := loadCollection(treesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load trees export: %v\n", err)
		return 1
	}

	var window geo.MultiPolygon
	if districtsPath != "" {
		window, err = loadWindow(districtsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load districts export: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateStructure(fc),
		validateCoordinates(fc, window),
		validateFields(fc),
	}
	if dbPath != "" {
		p, err := validateTable(fc, window, dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open analysis table: %v\n", err)
			return 1
		}
		phases = append(phases, p)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d\n", len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Printf("  ... and %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCollection(path string) (*geo.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("type %q, want FeatureCollection", fc.Type)
	}
	return &fc, nil
}

func loadWindow(path string) (geo.MultiPolygon, error) {
	fc, err := loadCollection(path)
	if err != nil {
		return nil, err
	}
	var window geo.MultiPolygon
	for i, f := range fc.Features {
		mp, err := f.Geometry.AsMultiPolygon()
		if err != nil {
			return nil, fmt.Errorf("district feature %d: %w", i, err)
		}
		window = append(window, geo.ProjectRegion(mp, geo.Lambert93)...)
	}
	if window.Area() <= 0 {
		return nil, fmt.Errorf("districts produced an empty window")
	}
	return window, nil
}

// ── Phase 1: Export Structure ──
// Every feature must be a Point with a decodable property bag.

func validateStructure(fc *geo.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Export Structure (GeoJSON)"}

	if len(fc.Features) == 0 {
		p.errorf("export has no features")
		return p
	}

	for i, f := range fc.Features {
		if f.Type != "Feature" {
			p.errorf("feature %d: type %q, want Feature", i, f.Type)
		}
		if f.Geometry.Type != "Point" {
			p.errorf("feature %d: geometry type %q, want Point", i, f.Geometry.Type)
			continue
		}
		if _, _, err := f.Geometry.Point(); err != nil {
			p.errorf("feature %d: %v", i, err)
		}
		var props domain.RawTreeProperties
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			p.errorf("feature %d: properties: %v", i, err)
		}
	}
	return p
}

// ── Phase 2: Coordinate Plausibility ──
// Coordinates must land in greater Paris; with a window given, report how
// many records the spatial join would drop.

func validateCoordinates(fc *geo.FeatureCollection, window geo.MultiPolygon) *phase {
	p := &phase{name: "Phase 2: Coordinate Plausibility"}

	var zero, outOfBox, outOfWindow int
	for i, f := range fc.Features {
		lon, lat, err := f.Geometry.Point()
		if err != nil {
			continue // reported in phase 1
		}
		if lon == 0 && lat == 0 {
			zero++
			continue
		}
		if lon < minLon || lon > maxLon || lat < minLat || lat > maxLat {
			outOfBox++
			p.errorf("feature %d: (%.4f, %.4f) outside greater Paris", i, lon, lat)
			continue
		}
		if window != nil && !window.Contains(geo.Lambert93(lon, lat)) {
			outOfWindow++
		}
	}

	fmt.Printf("  coordinates: %d zero, %d out of bounding box, %d outside window\n",
		zero, outOfBox, outOfWindow)

	// Null-island rows and extramural sites are expected in the portal data;
	// only a large share of them is suspicious.
	if zero > len(fc.Features)/100 {
		p.errorf("%d features (>1%%) have zero coordinates", zero)
	}
	return p
}

// ── Phase 3: Field Integrity ──
// Runs the real transformation and checks the portal vocabulary.

func validateFields(fc *geo.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Field Integrity (transformation)"}

	remarquable := map[string]bool{"": true, "OUI": true, "NON": true}
	var invalid int

	for i, f := range fc.Features {
		var props domain.RawTreeProperties
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			continue // reported in phase 1
		}
		if v := strings.ToUpper(strings.TrimSpace(props.Remarquable)); !remarquable[v] {
			p.errorf("feature %d: remarquable %q not in {OUI, NON, empty}", i, props.Remarquable)
		}

		tree, err := domain.ParseTreeFeature(f)
		if err != nil {
			invalid++
			continue
		}
		tree = domain.EnrichTree(tree)
		if err := domain.ValidTree(tree); err != nil {
			invalid++
			continue
		}
		if tree.Species != "" && !strings.HasPrefix(tree.Species, tree.Genus+" ") {
			p.errorf("feature %d: binomial %q does not start with genus %q", i, tree.Species, tree.Genus)
		}
	}

	fmt.Printf("  fields: %d features would be dropped by the pipeline\n", invalid)

	// The live export runs a fraction of a percent of broken rows.
	if invalid > len(fc.Features)/100 {
		p.errorf("%d features (>1%%) fail validation", invalid)
	}
	return p
}

// ── Phase 4: Table Consistency ──
// Every record the pipeline would keep must already be in the cached table.

func validateTable(fc *geo.FeatureCollection, window geo.MultiPolygon, dbPath string) (*phase, error) {
	p := &phase{name: "Phase 4: Table Consistency (SQLite)"}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cached, err := s.Load(context.Background())
	if err != nil {
		return nil, err
	}
	cachedIDs := make(map[string]bool, len(cached))
	for _, t := range cached {
		cachedIDs[t.ID] = true
	}

	var expected, missing int
	for _, f := range fc.Features {
		tree, err := domain.ParseTreeFeature(f)
		if err != nil {
			continue
		}
		tree = domain.EnrichTree(tree)
		if err := domain.ValidTree(tree); err != nil {
			continue
		}
		if window != nil && !window.Contains(geo.Point{X: tree.East, Y: tree.North}) {
			continue
		}
		expected++
		if !cachedIDs[tree.ID] {
			missing++
			p.errorf("tree %s (%s, %s) not in table", tree.ID, tree.Species, tree.Street)
		}
	}

	fmt.Printf("  table: %d rows cached, %d expected from export, %d missing\n",
		len(cached), expected, missing)

	if len(cached) > expected {
		p.errorf("table has %d rows but the export yields %d; stale cache, re-run with FORCE_REFRESH=true",
			len(cached), expected)
	}
	return p, nil
}

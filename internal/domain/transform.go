package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/paris-tree-census/internal/geo"
)

var (
	// arrondissementRe matches the portal's district labels,
	// e.g. "PARIS 14E ARRDT" -> ordinal 14, suffix "E".
	arrondissementRe = regexp.MustCompile(`^PARIS (\d+)(ER|E) ARRDT$`)

	// whitespaceRe collapses runs of whitespace inside addresses.
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Girth and height ceilings beyond which a record is a data-entry error.
// The stoutest tree in Paris is under 700 cm around; no tree on Earth tops
// 120 m.
const (
	maxGirthCm = 1000.0
	maxHeightM = 120.0
)

// ParseTreeFeature deserializes one "les-arbres" GeoJSON feature into a Tree.
// Fields are mapped as-is; EnrichTree normalizes them afterwards. The epithet
// is carried in Species until enrichment composes the binomial.
func ParseTreeFeature(f geo.Feature) (Tree, error) {
	var props RawTreeProperties
	if err := json.Unmarshal(f.Properties, &props); err != nil {
		return Tree{}, fmt.Errorf("parse tree properties: %w", err)
	}

	lon, lat, err := f.Geometry.Point()
	if err != nil {
		return Tree{}, fmt.Errorf("parse tree geometry: %w", err)
	}

	return Tree{
		ID:         generateID(props.IDBase, props.Genre, props.Espece, lat, lon),
		Species:    strings.TrimSpace(props.Espece),
		Genus:      strings.TrimSpace(props.Genre),
		CommonName: strings.TrimSpace(props.LibelleFrancais),
		Cultivar:   trimCultivar(props.Cultivar),
		Sector:     strings.TrimSpace(props.Arrondissement),
		SiteType:   strings.TrimSpace(props.Domanialite),
		Street:     props.Adresse,
		GirthCm:    props.CirconferenceCm,
		HeightM:    props.HauteurM,
		Stage:      strings.TrimSpace(props.Stade),
		Remarkable: strings.EqualFold(strings.TrimSpace(props.Remarquable), "OUI"),
		Geo:        Geo{Lat: lat, Lon: lon},
	}, nil
}

// generateID produces a deterministic ID from the portal row ID, species
// fields, and coordinates. Deterministic IDs make the cache upsert idempotent
// (ON CONFLICT DO NOTHING): reprocessing the same export yields the same row.
func generateID(idBase float64, genus, espece string, lat, lon float64) string {
	input := fmt.Sprintf("%.0f|%s|%s|%.6f|%.6f", idBase, genus, espece, lat, lon)
	hash := sha256.Sum256([]byte(input))
	return "tree-" + hex.EncodeToString(hash[:8])
}

// EnrichTree normalizes and derives the analysis fields of a parsed tree:
// the species binomial, sector and street labels, the size class, the
// Lambert-93 planar coordinates, and the processing timestamp.
func EnrichTree(t Tree) Tree {
	t.Genus = capitalize(t.Genus)
	t.Species = BinomialName(t.Genus, t.Species)
	t.Sector = NormalizeSector(t.Sector)
	t.Street = NormalizeStreet(t.Street)
	t.SiteType = strings.ToLower(t.SiteType)
	t.Stage = normalizeStage(t.Stage)
	t.SizeClass = deriveSizeClass(t.GirthCm)

	p := geo.Lambert93(t.Geo.Lon, t.Geo.Lat)
	t.East = p.X
	t.North = p.Y

	t.ProcessedAt = clock.Now()
	return t
}

// ValidTree reports whether a cleaned record is usable for analysis.
// Returns a descriptive error for discarded records.
func ValidTree(t Tree) error {
	if t.Geo.Lat == 0 && t.Geo.Lon == 0 {
		return fmt.Errorf("tree %s: missing coordinates", t.ID)
	}
	if t.GirthCm < 0 || t.GirthCm > maxGirthCm {
		return fmt.Errorf("tree %s: girth %.0f cm out of range", t.ID, t.GirthCm)
	}
	if t.HeightM < 0 || t.HeightM > maxHeightM {
		return fmt.Errorf("tree %s: height %.0f m out of range", t.ID, t.HeightM)
	}
	if t.GirthCm == 0 && t.HeightM == 0 {
		// Unmeasured in both dimensions: stumps and empty planting sites.
		return fmt.Errorf("tree %s: no measured dimensions", t.ID)
	}
	if t.Genus == "" {
		return fmt.Errorf("tree %s: missing genus", t.ID)
	}
	return nil
}

// BinomialName composes "<Genus> <epithet>" from the portal's split species
// columns. A missing or placeholder epithet ("n. sp.") yields "<Genus> sp.".
func BinomialName(genus, epithet string) string {
	genus = capitalize(genus)
	if genus == "" {
		return ""
	}
	epithet = strings.ToLower(strings.TrimSpace(epithet))
	if epithet == "" || epithet == "n. sp." || epithet == "sp." {
		return genus + " sp."
	}
	return genus + " " + epithet
}

// NormalizeSector rewrites the portal's district labels into display form:
// "PARIS 14E ARRDT" -> "Paris 14e", "PARIS 1ER ARRDT" -> "Paris 1er".
// Non-district sectors (the annexed woods, extramural départements) are
// title-cased with French particles kept lowercase.
func NormalizeSector(sector string) string {
	sector = strings.ToUpper(strings.TrimSpace(sector))
	if sector == "" {
		return ""
	}
	if m := arrondissementRe.FindStringSubmatch(sector); m != nil {
		return "Paris " + m[1] + strings.ToLower(m[2])
	}
	return titleFrench(sector)
}

// NormalizeStreet canonicalizes an address for use as a grouping key:
// uppercase with single spaces. The portal already stores addresses in
// uppercase; this flattens stray tabs and double spaces.
func NormalizeStreet(street string) string {
	street = strings.TrimSpace(street)
	if street == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(strings.ToUpper(street), " ")
}

// frenchParticles stay lowercase inside title-cased labels.
var frenchParticles = map[string]bool{
	"DE": true, "DU": true, "DES": true, "LA": true, "LE": true, "LES": true,
}

func titleFrench(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i > 0 && frenchParticles[w] {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = capitalizeHyphenated(w)
	}
	return strings.Join(words, " ")
}

// capitalizeHyphenated capitalizes each hyphen-separated part, so
// "SEINE-SAINT-DENIS" becomes "Seine-Saint-Denis".
func capitalizeHyphenated(w string) string {
	parts := strings.Split(w, "-")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, "-")
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// stageLabels maps the portal's development-stage vocabulary to short labels.
var stageLabels = map[string]string{
	"jeune (arbre)":       "young",
	"jeune (arbre)adulte": "young adult",
	"adulte":              "adult",
	"mature":              "mature",
}

func normalizeStage(stage string) string {
	stage = strings.ToLower(strings.TrimSpace(stage))
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return stage
}

// deriveSizeClass buckets trunk circumference into four size classes used by
// the summary tables:
//   - sapling: < 30 cm
//   - young:   < 90 cm
//   - mature:  < 180 cm
//   - veteran: >= 180 cm
//
// Returns nil when the girth is unmeasured (zero).
func deriveSizeClass(girthCm float64) *string {
	if girthCm <= 0 {
		return nil
	}
	var s string
	switch {
	case girthCm < 30:
		s = "sapling"
	case girthCm < 90:
		s = "young"
	case girthCm < 180:
		s = "mature"
	default:
		s = "veteran"
	}
	return &s
}

// trimCultivar strips the surrounding quotes the portal stores around
// cultivar names: "'Baumannii'" -> "Baumannii".
func trimCultivar(c string) string {
	c = strings.TrimSpace(c)
	c = strings.Trim(c, "'’")
	return c
}

// Package domain models the Paris street-tree census ("les-arbres") data.
//
// # Data Source
//
// Tree records come from the City of Paris open-data portal
// (https://opendata.paris.fr, dataset "les-arbres"), downloaded as a GeoJSON
// export. Each feature is one tree: a Point geometry in WGS-84 plus a flat
// property bag describing the tree and where it stands. Administrative
// boundaries come from the "arrondissements" dataset on the same portal.
//
// # Portal Data Conventions
//
// Species identity is split across columns:
//
//	"genre"             → botanical genus, e.g. "Platanus"
//	"espece"            → epithet, e.g. "x hispanica"; may be empty or "n. sp."
//	"libellefrancais"   → French common name, e.g. "Platane"
//	"varieteoucultivar" → cultivar, e.g. "'Baumannii'", often empty
//
// The binomial used throughout the analyses is "<Genre> <espece>", falling
// back to "<Genre> sp." when the epithet is missing. See [EnrichTree].
//
// Administrative sector ("arrondissement") values:
//
//	"PARIS 7E ARRDT"   → 7th arrondissement; "1ER" for the first.
//	"BOIS DE VINCENNES", "BOIS DE BOULOGNE" → the two annexed woods.
//	"HAUTS-DE-SEINE", "SEINE-SAINT-DENIS", "VAL-DE-MARNE" → extramural sites
//	(schools, cemeteries) managed by the city but outside its boundary.
//
// Dimensions:
//
//	"circonferenceencm" → trunk circumference in centimeters, measured at
//	                      1.30 m. Zero means unmeasured. Values above 1000 cm
//	                      are entry errors (the stoutest tree in Paris is
//	                      under 700 cm).
//	"hauteurenm"        → height in meters. Zero means unmeasured. Values
//	                      above 120 m are entry errors (keyboard slips such
//	                      as 1230 appear in the raw export).
//
// The "remarquable" flag is the tri-state string "OUI" / "NON" / empty; only
// the literal "OUI" (case-insensitive) marks a notable tree.
//
// Addresses ("adresse") are uppercase street or park designations and serve
// as the street-level grouping key for diversity partitioning. They are
// normalized by collapsing runs of whitespace; see [NormalizeStreet].
//
// # Coordinates
//
// Geometries are WGS-84 longitude/latitude. All distance-based analyses run
// in planar meters, so every tree also carries Lambert-93 (EPSG:2154)
// east/north coordinates produced at enrichment time.
//
// # ID Generation
//
// Tree IDs are deterministic SHA-256 hashes of the portal row ID, species,
// and coordinates. Re-running the pipeline over the same export produces the
// same IDs, which makes the SQLite cache upsert idempotent (ON CONFLICT DO
// NOTHING). See [generateID].
package domain

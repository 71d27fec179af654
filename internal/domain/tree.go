package domain

import "time"

// RawTreeProperties is the flat property bag of one "les-arbres" GeoJSON
// feature, with the portal's original column names. Numeric columns may be
// null in the export; null unmarshals as zero.
type RawTreeProperties struct {
	IDBase            float64 `json:"idbase"`
	TypeEmplacement   string  `json:"typeemplacement"`
	Domanialite       string  `json:"domanialite"`
	Arrondissement    string  `json:"arrondissement"`
	ComplementAdresse string  `json:"complementadresse"`
	Numero            string  `json:"numero"`
	Adresse           string  `json:"adresse"`
	CirconferenceCm   float64 `json:"circonferenceencm"`
	HauteurM          float64 `json:"hauteurenm"`
	Stade             string  `json:"stadedeveloppement"`
	Remarquable       string  `json:"remarquable"`
	LibelleFrancais   string  `json:"libellefrancais"`
	Genre             string  `json:"genre"`
	Espece            string  `json:"espece"`
	Cultivar          string  `json:"varieteoucultivar"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Tree is the cleaned, typed representation of one census record. It is the
// row type of the denormalized analysis table: materialized once per run and
// read-only afterwards.
type Tree struct {
	ID         string  `json:"id"`
	Species    string  `json:"species"` // binomial, e.g. "Platanus x hispanica"
	Genus      string  `json:"genus"`
	CommonName string  `json:"common_name,omitempty"`
	Cultivar   string  `json:"cultivar,omitempty"`
	Sector     string  `json:"sector"`    // normalized arrondissement label
	SiteType   string  `json:"site_type"` // domanialite: alignment, garden, cemetery...
	Street     string  `json:"street"`    // normalized address, the grouping key
	GirthCm    float64 `json:"girth_cm"`
	HeightM    float64 `json:"height_m"`
	Stage      string  `json:"stage,omitempty"`
	Remarkable bool    `json:"remarkable"`
	SizeClass  *string `json:"size_class,omitempty"` // nil when girth is unmeasured

	Geo Geo `json:"geo"`

	// Lambert-93 planar coordinates in meters, filled by EnrichTree.
	East  float64 `json:"east"`
	North float64 `json:"north"`

	ProcessedAt time.Time `json:"processed_at"`
}

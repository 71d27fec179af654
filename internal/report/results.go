// Package report renders the analysis outputs: PNG charts via gonum/plot,
// an XLSX workbook of the tables, and a Markdown summary.
package report

import (
	"time"

	"github.com/couchcryptid/paris-tree-census/internal/stats"
)

// Results aggregates everything the pipeline computed, ready to render.
type Results struct {
	GeneratedAt time.Time

	// Census overview.
	TotalTrees      int
	RemarkableCount int
	Sectors         int
	Streets         int
	WindowAreaKm2   float64

	// Abundance tables (already truncated to the configured top N).
	TopSpecies  []stats.Abundance
	TopGenera   []stats.Abundance
	SizeClasses []stats.Abundance

	// Street-level diversity partition.
	Partition      stats.Partition
	StreetMinTrees int

	// Point-pattern concentration.
	Ripley        *stats.KResult
	RipleySpecies string

	// Park accumulation curve.
	Accumulation    []stats.AccumulationStep
	FocalPark       string
	AccumBandwidthM float64
}

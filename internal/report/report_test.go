package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/paris-tree-census/internal/geo"
	"github.com/couchcryptid/paris-tree-census/internal/stats"
)

func sampleResults(t *testing.T) *Results {
	t.Helper()

	points := []geo.Point{{X: 45, Y: 50}, {X: 55, Y: 50}, {X: 50, Y: 45}, {X: 50, Y: 55}}
	k, err := stats.RipleyK(points, geo.MultiPolygon{geo.Polygon{geo.Ring{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
	}}}, 20, 10)
	require.NoError(t, err)

	return &Results{
		GeneratedAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalTrees:      1234,
		RemarkableCount: 7,
		Sectors:         20,
		Streets:         310,
		WindowAreaKm2:   105.4,
		TopSpecies: []stats.Abundance{
			{Name: "Platanus x hispanica", Count: 400, Share: 0.32},
			{Name: "Tilia cordata", Count: 200, Share: 0.16},
		},
		TopGenera: []stats.Abundance{
			{Name: "Platanus", Count: 410, Share: 0.33},
		},
		SizeClasses: []stats.Abundance{
			{Name: "mature", Count: 600, Share: 0.49},
		},
		Partition:      stats.Partition{Gamma: 3.2, Alpha: 2.1, Beta: 1.1, GammaEffective: 24.5, AlphaEffective: 8.2, BetaEffective: 3.0, Groups: 120, Individuals: 1100},
		StreetMinTrees: 10,
		Ripley:         k,
		RipleySpecies:  "Platanus x hispanica",
		Accumulation: []stats.AccumulationStep{
			{K: 1, Distance: 5, Entropy: 0, Effective: 1},
			{K: 2, Distance: 12, Entropy: 0.69, Effective: 2},
		},
		FocalPark:       "PARC MONTSOURIS",
		AccumBandwidthM: 150,
	}
}

func TestWriteMarkdown(t *testing.T) {
	res := sampleResults(t)
	path := filepath.Join(t.TempDir(), ReportName)

	require.NoError(t, WriteMarkdown(res, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Platanus x hispanica")
	assert.Contains(t, text, "Gamma (city)")
	assert.Contains(t, text, "PARC MONTSOURIS")
	assert.Contains(t, text, "1234")
	assert.Contains(t, text, AbundanceChart)
}

func TestWriteWorkbook(t *testing.T) {
	res := sampleResults(t)
	path := filepath.Join(t.TempDir(), WorkbookName)

	require.NoError(t, WriteWorkbook(res, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{"Overview", "Abundance", "Diversity", "Concentration", "Accumulation"}, sheets)

	v, err := f.GetCellValue("Abundance", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Platanus x hispanica", v)

	v, err = f.GetCellValue("Diversity", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Gamma (city)", v)
}

func TestCharts(t *testing.T) {
	res := sampleResults(t)
	dir := t.TempDir()

	require.NoError(t, SaveAbundanceChart(res.TopSpecies, dir))
	require.NoError(t, SaveConcentrationChart(res.Ripley, res.RipleySpecies, dir))
	require.NoError(t, SaveAccumulationChart(res.Accumulation, res.FocalPark, dir))
	require.NoError(t, SavePatternChart([]geo.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 1}}, res.RipleySpecies, dir))

	for _, name := range []string{AbundanceChart, ConcentrationChart, AccumulationChart, PatternChart} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestChartsRejectEmptyInput(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, SaveAbundanceChart(nil, dir))
	assert.Error(t, SaveConcentrationChart(nil, "x", dir))
	assert.Error(t, SaveAccumulationChart(nil, "x", dir))
	assert.Error(t, SavePatternChart(nil, "x", dir))
}

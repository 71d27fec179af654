package report

import (
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/paris-tree-census/internal/geo"
	"github.com/couchcryptid/paris-tree-census/internal/stats"
)

// Chart filenames inside the output directory.
const (
	AbundanceChart     = "species_abundance.png"
	ConcentrationChart = "concentration_function.png"
	AccumulationChart  = "park_accumulation.png"
	PatternChart       = "species_pattern.png"
)

// SaveAbundanceChart renders a horizontal-labelled bar chart of the top
// species counts.
func SaveAbundanceChart(rows []stats.Abundance, outDir string) error {
	if len(rows) == 0 {
		return fmt.Errorf("abundance chart: no rows")
	}

	p := plot.New()
	p.Title.Text = "Most abundant street-tree species"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "individuals"

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		values[i] = float64(r.Count)
		names[i] = r.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("abundance bars: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = -1
	p.X.Tick.Label.YAlign = -0.5
	p.Add(plotter.NewGrid())

	path := filepath.Join(outDir, AbundanceChart)
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveConcentrationChart renders the centered L function L(r)−r for the
// focal species against the zero line expected under complete spatial
// randomness. Radii where the border estimate is undefined are skipped.
func SaveConcentrationChart(k *stats.KResult, species string, outDir string) error {
	if k == nil || len(k.R) == 0 {
		return fmt.Errorf("concentration chart: no estimate")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Spatial concentration of %s (n=%d)", species, k.N)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "radius r (m)"
	p.Y.Label.Text = "L(r) − r"

	var observed plotter.XYs
	for i, r := range k.R {
		if math.IsNaN(k.LBorder[i]) {
			continue
		}
		observed = append(observed, plotter.XY{X: r, Y: k.LBorder[i] - r})
	}
	if len(observed) == 0 {
		return fmt.Errorf("concentration chart: border estimate undefined everywhere")
	}

	line, err := plotter.NewLine(observed)
	if err != nil {
		return fmt.Errorf("concentration line: %w", err)
	}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("observed (border-corrected)", line)

	csr := plotter.NewFunction(func(float64) float64 { return 0 })
	csr.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(csr)
	p.Legend.Add("CSR", csr)

	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	path := filepath.Join(outDir, ConcentrationChart)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveAccumulationChart renders effective species against neighborhood
// radius for the focal park.
func SaveAccumulationChart(steps []stats.AccumulationStep, park string, outDir string) error {
	if len(steps) == 0 {
		return fmt.Errorf("accumulation chart: no steps")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Local diversity accumulation: %s", park)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "neighborhood radius (m)"
	p.Y.Label.Text = "effective species (exp H)"

	curve := make(plotter.XYs, len(steps))
	for i, s := range steps {
		curve[i] = plotter.XY{X: s.Distance, Y: s.Effective}
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("accumulation line: %w", err)
	}
	line.Width = vg.Points(2)
	p.Add(line, plotter.NewGrid())

	path := filepath.Join(outDir, AccumulationChart)
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SavePatternChart renders the planar point pattern of the focal species.
// Patterns beyond maxPatternPoints are thinned deterministically to keep
// the PNG reasonable.
const maxPatternPoints = 20000

func SavePatternChart(points []geo.Point, species string, outDir string) error {
	if len(points) == 0 {
		return fmt.Errorf("pattern chart: no points")
	}

	stride := 1
	if len(points) > maxPatternPoints {
		stride = (len(points) + maxPatternPoints - 1) / maxPatternPoints
	}

	xys := make(plotter.XYs, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		xys = append(xys, plotter.XY{X: points[i].X, Y: points[i].Y})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s point pattern (Lambert-93)", species)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "east (m)"
	p.Y.Label.Text = "north (m)"

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("pattern scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter, plotter.NewGrid())

	path := filepath.Join(outDir, PatternChart)
	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

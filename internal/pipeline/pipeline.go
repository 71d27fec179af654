// Package pipeline orchestrates one census run: fetch the dataset exports,
// clean and type the tree records, join them to the city window, run the
// analyses, and render the report artifacts. Stages run sequentially; the
// first error stops the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/paris-tree-census/internal/adapter/opendata"
	"github.com/couchcryptid/paris-tree-census/internal/config"
	"github.com/couchcryptid/paris-tree-census/internal/domain"
	"github.com/couchcryptid/paris-tree-census/internal/geo"
	"github.com/couchcryptid/paris-tree-census/internal/observability"
	"github.com/couchcryptid/paris-tree-census/internal/report"
	"github.com/couchcryptid/paris-tree-census/internal/stats"
)

// TreeStore caches the cleaned analysis table between runs.
type TreeStore interface {
	Save(ctx context.Context, trees []domain.Tree) (int, error)
	Load(ctx context.Context) ([]domain.Tree, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Pipeline wires the stages of one census run.
type Pipeline struct {
	cfg       *config.Config
	trees     opendata.Fetcher
	districts opendata.Fetcher
	store     TreeStore
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// New creates a Pipeline. The fetchers are usually cache-decorated portal
// clients, one per dataset.
func New(cfg *config.Config, trees, districts opendata.Fetcher, store TreeStore, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		trees:     trees,
		districts: districts,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
}

// Run executes the full census pipeline and returns the computed results.
func (p *Pipeline) Run(ctx context.Context) (*report.Results, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var window geo.MultiPolygon
	err := p.stage(ctx, "window", func() error {
		var err error
		window, err = p.buildWindow(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var trees []domain.Tree
	err = p.stage(ctx, "materialize", func() error {
		var err error
		trees, err = p.materializeTable(ctx, window)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("no trees survived cleaning and the spatial join")
	}

	var res *report.Results
	err = p.stage(ctx, "analyze", func() error {
		res = p.analyze(trees, window)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, "render", func() error {
		return p.render(res, trees)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// stage runs fn with cancellation, timing, and logging around it.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	start := p.clock.Now()
	p.logger.Info("stage started", "stage", name)
	if err := fn(); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	elapsed := p.clock.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	p.logger.Info("stage finished", "stage", name, "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// buildWindow fetches the arrondissement boundaries and assembles the
// Lambert-93 analysis window.
func (p *Pipeline) buildWindow(ctx context.Context) (geo.MultiPolygon, error) {
	fc, err := opendata.FetchCollection(ctx, p.districts, p.cfg.DistrictsURL)
	if err != nil {
		return nil, err
	}
	p.metrics.FeaturesFetched.WithLabelValues("districts").Add(float64(len(fc.Features)))

	var window geo.MultiPolygon
	for _, f := range fc.Features {
		mp, err := f.Geometry.AsMultiPolygon()
		if err != nil {
			return nil, fmt.Errorf("district geometry: %w", err)
		}
		window = append(window, geo.ProjectRegion(mp, geo.Lambert93)...)
	}
	if window.Area() <= 0 {
		return nil, fmt.Errorf("district boundaries produced an empty window")
	}

	p.logger.Info("analysis window built",
		"districts", len(fc.Features),
		"area_km2", window.Area()/1e6,
	)
	return window, nil
}

// materializeTable produces the cleaned tree table: from the store when warm,
// otherwise by fetching, cleaning, joining, and caching the portal export.
func (p *Pipeline) materializeTable(ctx context.Context, window geo.MultiPolygon) ([]domain.Tree, error) {
	if !p.cfg.ForceRefresh {
		n, err := p.store.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			p.logger.Info("analysis table served from store", "trees", n)
			return p.store.Load(ctx)
		}
	}

	fc, err := opendata.FetchCollection(ctx, p.trees, p.cfg.TreesURL)
	if err != nil {
		return nil, err
	}
	p.metrics.FeaturesFetched.WithLabelValues("trees").Add(float64(len(fc.Features)))

	trees := p.cleanAndJoin(fc, window)
	p.logger.Info("tree table cleaned",
		"features", len(fc.Features),
		"kept", len(trees),
	)

	// A forced refresh replaces the table wholesale, so rows the portal
	// removed since the last run do not survive into the next warm run.
	if p.cfg.ForceRefresh {
		if err := p.store.Clear(ctx); err != nil {
			return nil, err
		}
	}
	inserted, err := p.store.Save(ctx, trees)
	if err != nil {
		return nil, err
	}
	p.logger.Info("analysis table cached", "inserted", inserted)
	return trees, nil
}

// cleanAndJoin parses, enriches, validates, and spatially joins the raw
// features. Bad records are counted and dropped, never fatal: a census of
// 200k rows always contains a few dozen broken ones.
func (p *Pipeline) cleanAndJoin(fc *geo.FeatureCollection, window geo.MultiPolygon) []domain.Tree {
	trees := make([]domain.Tree, 0, len(fc.Features))
	for _, f := range fc.Features {
		tree, err := domain.ParseTreeFeature(f)
		if err != nil {
			p.metrics.ParseErrors.Inc()
			p.logger.Debug("feature dropped", "error", err)
			continue
		}
		tree = domain.EnrichTree(tree)
		if err := domain.ValidTree(tree); err != nil {
			p.metrics.RecordsDiscarded.WithLabelValues("invalid").Inc()
			p.logger.Debug("record discarded", "error", err)
			continue
		}
		if !window.Contains(geo.Point{X: tree.East, Y: tree.North}) {
			// Extramural sites: suburban cemeteries, school yards.
			p.metrics.RecordsDiscarded.WithLabelValues("outside_window").Inc()
			continue
		}
		p.metrics.RecordsKept.Inc()
		trees = append(trees, tree)
	}
	return trees
}

// analyze runs every analysis over the materialized table.
func (p *Pipeline) analyze(trees []domain.Tree, window geo.MultiPolygon) *report.Results {
	species := stats.AbundanceBySpecies(trees)
	genera := stats.AbundanceByGenus(trees)
	sizes := stats.AbundanceBySizeClass(trees)

	streets := stats.CountsByGroup(trees, func(t domain.Tree) string { return t.Street })
	partition := stats.PartitionDiversity(streets, p.cfg.StreetMinTrees)

	sectors := make(map[string]bool)
	remarkable := 0
	for _, t := range trees {
		sectors[t.Sector] = true
		if t.Remarkable {
			remarkable++
		}
	}

	res := &report.Results{
		GeneratedAt:     p.clock.Now().UTC(),
		TotalTrees:      len(trees),
		RemarkableCount: remarkable,
		Sectors:         len(sectors),
		Streets:         len(streets),
		WindowAreaKm2:   window.Area() / 1e6,
		TopSpecies:      stats.TopN(species, p.cfg.TopSpecies),
		TopGenera:       stats.TopN(genera, p.cfg.TopSpecies),
		SizeClasses:     sizes,
		Partition:       partition,
		StreetMinTrees:  p.cfg.StreetMinTrees,
		RipleySpecies:   p.cfg.RipleySpecies,
		FocalPark:       p.cfg.FocalPark,
		AccumBandwidthM: p.cfg.AccumBandwidthM,
	}

	points := speciesPattern(trees, p.cfg.RipleySpecies)
	if len(points) >= 2 {
		k, err := stats.RipleyK(points, window, p.cfg.RipleyMaxRadiusM, p.cfg.RipleySteps)
		if err != nil {
			p.logger.Warn("concentration estimate failed", "species", p.cfg.RipleySpecies, "error", err)
		} else {
			res.Ripley = k
		}
	} else {
		p.logger.Warn("too few points for concentration estimate",
			"species", p.cfg.RipleySpecies, "points", len(points))
	}

	parkTrees := parkSubset(trees, p.cfg.FocalPark)
	if len(parkTrees) > 0 {
		focal := meanPoint(parkTrees)
		res.Accumulation = stats.AccumulationCurve(parkTrees, focal, p.cfg.AccumBandwidthM)
	} else {
		p.logger.Warn("focal park not found in table", "park", p.cfg.FocalPark)
	}

	return res
}

// render writes every artifact into the output directory.
func (p *Pipeline) render(res *report.Results, trees []domain.Tree) error {
	if err := os.MkdirAll(p.cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := report.SaveAbundanceChart(res.TopSpecies, p.cfg.OutDir); err != nil {
		return err
	}
	if res.Ripley != nil {
		if err := report.SaveConcentrationChart(res.Ripley, res.RipleySpecies, p.cfg.OutDir); err != nil {
			return err
		}
		if err := report.SavePatternChart(speciesPattern(trees, res.RipleySpecies), res.RipleySpecies, p.cfg.OutDir); err != nil {
			return err
		}
	}
	if len(res.Accumulation) > 0 {
		if err := report.SaveAccumulationChart(res.Accumulation, res.FocalPark, p.cfg.OutDir); err != nil {
			return err
		}
	}
	if err := report.WriteWorkbook(res, filepath.Join(p.cfg.OutDir, report.WorkbookName)); err != nil {
		return err
	}
	if err := report.WriteMarkdown(res, filepath.Join(p.cfg.OutDir, report.ReportName)); err != nil {
		return err
	}

	p.logger.Info("report rendered", "dir", p.cfg.OutDir)
	return nil
}

func speciesPattern(trees []domain.Tree, species string) []geo.Point {
	var points []geo.Point
	for _, t := range trees {
		if t.Species == species {
			points = append(points, geo.Point{X: t.East, Y: t.North})
		}
	}
	return points
}

// parkSubset selects trees whose street key matches the focal park. The
// match is prefix-based because park addresses sometimes carry annexes,
// e.g. "PARC MONTSOURIS / AVENUE REILLE".
func parkSubset(trees []domain.Tree, park string) []domain.Tree {
	key := domain.NormalizeStreet(park)
	if key == "" {
		return nil
	}
	var out []domain.Tree
	for _, t := range trees {
		if strings.HasPrefix(t.Street, key) {
			out = append(out, t)
		}
	}
	return out
}

func meanPoint(trees []domain.Tree) geo.Point {
	var sx, sy float64
	for _, t := range trees {
		sx += t.East
		sy += t.North
	}
	n := float64(len(trees))
	return geo.Point{X: sx / n, Y: sy / n}
}

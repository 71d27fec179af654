package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// WorkbookName is the XLSX filename inside the output directory.
const WorkbookName = "tree_census.xlsx"

// WriteWorkbook writes every results table into one XLSX workbook with a
// sheet per analysis.
func WriteWorkbook(res *Results, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Overview"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	writeOverviewSheet(f, res)

	if err := writeAbundanceSheet(f, res); err != nil {
		return err
	}
	if err := writeDiversitySheet(f, res); err != nil {
		return err
	}
	if err := writeConcentrationSheet(f, res); err != nil {
		return err
	}
	if err := writeAccumulationSheet(f, res); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, res *Results) {
	rows := [][]any{
		{"Generated", res.GeneratedAt.Format("2006-01-02 15:04 UTC")},
		{"Trees analyzed", res.TotalTrees},
		{"Remarkable trees", res.RemarkableCount},
		{"Sectors", res.Sectors},
		{"Streets", res.Streets},
		{"Window area (km²)", res.WindowAreaKm2},
	}
	for i, row := range rows {
		setRow(f, "Overview", i+1, row)
	}
}

func writeAbundanceSheet(f *excelize.File, res *Results) error {
	const sheet = "Abundance"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}

	setRow(f, sheet, 1, []any{"Rank", "Species", "Count", "Share"})
	for i, r := range res.TopSpecies {
		setRow(f, sheet, i+2, []any{i + 1, r.Name, r.Count, fmt.Sprintf("%.2f%%", r.Share*100)})
	}

	offset := len(res.TopSpecies) + 4
	setRow(f, sheet, offset, []any{"Rank", "Genus", "Count", "Share"})
	for i, r := range res.TopGenera {
		setRow(f, sheet, offset+i+1, []any{i + 1, r.Name, r.Count, fmt.Sprintf("%.2f%%", r.Share*100)})
	}
	return nil
}

func writeDiversitySheet(f *excelize.File, res *Results) error {
	const sheet = "Diversity"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}

	p := res.Partition
	rows := [][]any{
		{"Component", "Entropy (nats)", "Effective species"},
		{"Gamma (city)", p.Gamma, p.GammaEffective},
		{"Alpha (within streets)", p.Alpha, p.AlphaEffective},
		{"Beta (between streets)", p.Beta, p.BetaEffective},
		{},
		{"Streets retained", p.Groups},
		{"Individuals retained", p.Individuals},
		{"Minimum trees per street", res.StreetMinTrees},
	}
	for i, row := range rows {
		setRow(f, sheet, i+1, row)
	}
	return nil
}

func writeConcentrationSheet(f *excelize.File, res *Results) error {
	const sheet = "Concentration"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}

	setRow(f, sheet, 1, []any{"Species", res.RipleySpecies})
	if res.Ripley == nil {
		setRow(f, sheet, 2, []any{"No estimate (too few points)"})
		return nil
	}
	setRow(f, sheet, 2, []any{"Points", res.Ripley.N})
	setRow(f, sheet, 3, []any{"r (m)", "K(r)", "K border", "L(r)-r", "CSR K"})
	for i, r := range res.Ripley.R {
		lCentered := any(nil)
		kBorder := any(nil)
		if !math.IsNaN(res.Ripley.KBorder[i]) {
			kBorder = res.Ripley.KBorder[i]
			lCentered = res.Ripley.LBorder[i] - r
		}
		setRow(f, sheet, i+4, []any{r, res.Ripley.K[i], kBorder, lCentered, res.Ripley.CSR[i]})
	}
	return nil
}

func writeAccumulationSheet(f *excelize.File, res *Results) error {
	const sheet = "Accumulation"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}

	setRow(f, sheet, 1, []any{"Park", res.FocalPark})
	setRow(f, sheet, 2, []any{"Kernel bandwidth (m)", res.AccumBandwidthM})
	setRow(f, sheet, 3, []any{"k", "Distance (m)", "Entropy", "Effective species"})
	for i, s := range res.Accumulation {
		setRow(f, sheet, i+4, []any{s.K, s.Distance, s.Entropy, s.Effective})
	}
	return nil
}

// setRow writes one row of values starting at column A. Cell write errors
// are impossible for valid coordinates, so they are ignored the same way
// the excelize examples do.
func setRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

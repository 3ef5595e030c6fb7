package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/cts-trends/internal/analysis"
)

// Params selects the parameters of every engine in a full report.
type Params struct {
	BaselineYear int
	DiD          analysis.DiDOptions
	Compare      analysis.CompareOptions
	// Year is the crime-type breakdown and zone year.
	Year int
}

func (p Params) withDefaults() Params {
	if p.BaselineYear == 0 {
		p.BaselineYear = analysis.DefaultBaselineYear
	}
	if p.DiD.CohortYear == 0 {
		p.DiD.CohortYear = analysis.DefaultCohortYear
	}
	if p.Compare.NearThresholdKM == 0 {
		p.Compare.NearThresholdKM = analysis.DefaultNearThresholdKM
	}
	if p.Year == 0 {
		p.Year = analysis.DefaultCompareYear
	}
	return p
}

// Build runs every engine against e and renders one table each.
func Build(e *analysis.Engine, p Params) ([]Table, error) {
	p = p.withDefaults()

	index, err := e.Index(p.BaselineYear)
	if err != nil {
		return nil, err
	}
	did, err := e.DiD(p.DiD)
	if err != nil {
		return nil, err
	}

	return []Table{
		IndexTable(index, p.BaselineYear),
		DiDTable(did, p.DiD.CohortYear),
		TrendTable(e.Trend()),
		CrimeTypeTable(e.CrimeTypes(p.Year), p.Year),
		ZoneTable(e.Zones(p.Year), p.Year),
		ComparisonTable(e.Compare(p.Compare), p.Compare),
		DistanceTable(e.Distances()),
		ControlsTable(ControlRows(e.ControlCandidates(), e.Classifier())),
	}, nil
}

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// NewWorkbook lays tables out one per sheet: title row, header row, data.
// Numeric cells are stored as numbers.
func NewWorkbook(tables []Table) (*xlsx.File, error) {
	f := xlsx.NewFile()
	for i, t := range tables {
		name := t.Name
		if name == "" {
			name = "sheet" + strconv.Itoa(i+1)
		}
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}

		sheet, err := f.AddSheet(name)
		if err != nil {
			return nil, eris.Wrapf(err, "report: add sheet %q", name)
		}

		sheet.AddRow().AddCell().SetString(t.Title)
		header := sheet.AddRow()
		for _, h := range t.Header {
			header.AddCell().SetString(h)
		}
		for _, cells := range t.Rows {
			row := sheet.AddRow()
			for _, v := range cells {
				cell := row.AddCell()
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cell.SetFloat(n)
				} else {
					cell.SetString(v)
				}
			}
		}
	}
	return f, nil
}

// SaveXLSX writes tables to a workbook at path.
func SaveXLSX(path string, tables []Table) error {
	f, err := NewWorkbook(tables)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

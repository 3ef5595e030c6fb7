package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/report"
)

var (
	indexBaselineYear int
	didCohortYear     int
	crimeTypesYear    int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Violent crime indexed to a baseline year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		year := indexBaselineYear
		if year == 0 {
			year = cfg.Analysis.BaselineYear
		}
		points, err := e.Index(year)
		if err != nil {
			return err
		}
		return render(cmd, points, report.IndexTable(points, year))
	},
}

var didCmd = &cobra.Command{
	Use:   "did",
	Short: "Difference-in-differences of a treatment cohort against controls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		year := didCohortYear
		if year == 0 {
			year = cfg.Analysis.CohortYear
		}
		points, err := e.DiD(analysis.DiDOptions{CohortYear: year})
		if err != nil {
			return err
		}
		return render(cmd, points, report.DiDTable(points, year))
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Deviation of each group from its linear trend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		points := e.Trend()
		return render(cmd, points, report.TrendTable(points))
	},
}

var crimeTypesCmd = &cobra.Command{
	Use:   "crimetypes",
	Short: "Treatment and control totals per crime type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		year, err := compareYear(crimeTypesYear)
		if err != nil {
			return err
		}
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		rows := e.CrimeTypes(year)
		return render(cmd, rows, report.CrimeTypeTable(rows, year))
	},
}

// compareYear resolves a --year flag, where 0 selects the default.
func compareYear(year int) (int, error) {
	if year == 0 {
		return analysis.DefaultCompareYear, nil
	}
	if !crime.InRange(year) {
		return 0, eris.Errorf("--year %d outside %d-%d", year, crime.FirstYear, crime.LastYear)
	}
	return year, nil
}

func init() {
	indexCmd.Flags().IntVar(&indexBaselineYear, "baseline-year", 0, "index baseline year (default from config)")
	didCmd.Flags().IntVar(&didCohortYear, "cohort-year", 0, "treatment cohort opening year (default from config)")
	crimeTypesCmd.Flags().IntVar(&crimeTypesYear, "year", 0, "year to break down (default 2023)")

	rootCmd.AddCommand(indexCmd, didCmd, trendCmd, crimeTypesCmd)
}

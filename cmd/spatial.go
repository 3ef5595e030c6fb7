package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/report"
)

var (
	spatialYear   int
	spatialNearKM float64
)

var spatialCmd = &cobra.Command{
	Use:   "spatial",
	Short: "Distance-based comparisons around treatment sites",
	Long:  "Commands that need neighbourhood boundaries: distance zones, near/far comparison and per-neighbourhood distances.",
}

// -- spatial zones --

var spatialZonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Average violent crime per distance zone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		year, err := compareYear(spatialYear)
		if err != nil {
			return err
		}
		e, err := spatialEngine(cmd)
		if err != nil {
			return err
		}

		stats := e.Zones(year)
		return render(cmd, stats, report.ZoneTable(stats, year))
	},
}

// -- spatial compare --

var spatialCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare neighbourhoods near a treatment site with all others",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		km := spatialNearKM
		if km == 0 {
			km = cfg.Analysis.NearThresholdKM
		}
		if km < 0 {
			return eris.Errorf("--near-km must be positive, got %g", km)
		}

		e, err := spatialEngine(cmd)
		if err != nil {
			return err
		}
		opts := analysis.CompareOptions{NearThresholdKM: km}
		rows := e.Compare(opts)
		return render(cmd, rows, report.ComparisonTable(rows, opts))
	},
}

// -- spatial distances --

var spatialDistancesCmd = &cobra.Command{
	Use:   "distances",
	Short: "Distance from each neighbourhood to its nearest treatment site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := spatialEngine(cmd)
		if err != nil {
			return err
		}
		rows := e.Distances()
		return render(cmd, rows, report.DistanceTable(rows))
	},
}

// -- spatial bounds --

var spatialBoundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Bounding box of the neighbourhood boundaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := spatialEngine(cmd)
		if err != nil {
			return err
		}
		box, _ := e.Bounds()
		return render(cmd, box, report.BoundsTable(box))
	},
}

// spatialEngine loads the snapshot and requires geometry.
func spatialEngine(cmd *cobra.Command) (*analysis.Engine, error) {
	if cfg.Data.Geometry == "" {
		return nil, eris.New("spatial commands need --geometry or data.geometry")
	}
	e, err := loadEngine(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(e.Neighborhoods()) == 0 {
		return nil, eris.New("no neighbourhood boundaries matched the attribute table")
	}
	return e, nil
}

func init() {
	spatialZonesCmd.Flags().IntVar(&spatialYear, "year", 0, "year to average (default 2023)")
	spatialCompareCmd.Flags().Float64Var(&spatialNearKM, "near-km", 0, "near threshold in km (default from config)")

	spatialCmd.AddCommand(spatialZonesCmd, spatialCompareCmd, spatialDistancesCmd, spatialBoundsCmd)
	rootCmd.AddCommand(spatialCmd)
}

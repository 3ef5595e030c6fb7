package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every analysis into one XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if reportOut == "" {
			return eris.New("--out is required")
		}
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		tables, err := report.Build(e, report.Params{
			BaselineYear: cfg.Analysis.BaselineYear,
			DiD:          analysis.DiDOptions{CohortYear: cfg.Analysis.CohortYear},
			Compare:      analysis.CompareOptions{NearThresholdKM: cfg.Analysis.NearThresholdKM},
		})
		if err != nil {
			return err
		}
		if err := report.SaveXLSX(reportOut, tables); err != nil {
			return err
		}

		zap.L().Info("report written", zap.String("path", reportOut), zap.Int("sheets", len(tables)))
		fmt.Fprintf(out(cmd), "Wrote %d sheets to %s\n", len(tables), reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output workbook path (.xlsx)")
	rootCmd.AddCommand(reportCmd)
}

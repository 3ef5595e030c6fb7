package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/report"
)

var searchFilter string

var neighborhoodCmd = &cobra.Command{
	Use:   "neighborhood <name>",
	Short: "Yearly violent crime and classification for one neighbourhood",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		summary, ok := e.Neighborhood(args[0])
		if !ok {
			return eris.Errorf("unknown neighbourhood %q", args[0])
		}
		return render(cmd, summary, report.SummaryTable(summary))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find neighbourhoods by name and group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := analysis.ParseFilter(searchFilter)
		if err != nil {
			return err
		}
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		var query string
		if len(args) > 0 {
			query = args[0]
		}
		rows := report.NeighborhoodRows(e.Search(query, filter), e.Classifier())
		return render(cmd, rows, report.SearchTable(rows))
	},
}

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "List control candidates and the active selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		rows := report.ControlRows(e.ControlCandidates(), e.Classifier())
		return render(cmd, rows, report.ControlsTable(rows))
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchFilter, "filter", "all", "group filter: all, cts or control")

	rootCmd.AddCommand(neighborhoodCmd, searchCmd, controlsCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cts-trends/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cts-trends",
	Short: "Crime trends around supervised consumption sites",
	Long: "Loads neighbourhood crime counts and boundaries, then compares neighbourhoods hosting " +
		"supervised consumption sites with control neighbourhoods: baseline indexes, " +
		"difference-in-differences, trend residuals and distance-based comparisons.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		mode := "analyze"
		if cmd.Name() == "serve" {
			mode = "serve"
		}
		return cfg.Validate(mode)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyFlags overlays explicitly set persistent flags onto c.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("attributes") {
		c.Data.Attributes, _ = flags.GetString("attributes")
	}
	if flags.Changed("geometry") {
		c.Data.Geometry, _ = flags.GetString("geometry")
	}
	controlsSet = flags.Changed("control")
	if controlsSet {
		c.Analysis.Controls, _ = flags.GetStringArray("control")
	}
}

// controlsSet records that --control replaced the selection, so an empty
// list means "no controls" rather than "defaults".
var controlsSet bool

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("attributes", "", "attribute table path or URL (default from config)")
	pf.String("geometry", "", "neighbourhood boundaries path or URL; empty skips geometry (default from config)")
	pf.StringArray("control", nil, "control neighbourhood, repeatable; replaces the configured selection")
	pf.StringVar(&outputFormat, "format", "table", "output format: table, json or yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/dataset"
	"github.com/sells-group/cts-trends/internal/report"
	"github.com/sells-group/cts-trends/internal/sites"
)

var outputFormat string

// classifier builds the site classifier from the configured (or --control)
// selection. With neither, the default control sites apply.
func classifier() *sites.Classifier {
	if !controlsSet && len(cfg.Analysis.Controls) == 0 {
		return sites.Default()
	}
	return sites.NewClassifier(sites.WithControls(sites.NewSelection(cfg.Analysis.Controls...)))
}

func datasetOptions() dataset.Options {
	return dataset.Options{
		Attributes: cfg.Data.Attributes,
		Geometry:   cfg.Data.Geometry,
		TempDir:    cfg.Data.TempDir,
		HTTP: dataset.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    cfg.Fetch.Timeout(),
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		},
		FTP: dataset.FTPOptions{Timeout: cfg.Fetch.Timeout()},
	}
}

func loadSnapshot(ctx context.Context) (*dataset.Snapshot, error) {
	snap, err := dataset.Load(ctx, datasetOptions())
	if err != nil {
		return nil, eris.Wrap(err, "load datasets")
	}
	return snap, nil
}

func loadEngine(ctx context.Context) (*analysis.Engine, error) {
	snap, err := loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Engine(classifier()), nil
}

// render writes data in the --format encoding; table output uses t.
func render(cmd *cobra.Command, data any, t report.Table) error {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return report.Encode(out(cmd), format, data, t)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

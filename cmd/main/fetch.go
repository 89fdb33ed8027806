package main

import (
	"time"

	"spot-observer/src/models"

	"github.com/spf13/cobra"
)

var fetchVat string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh every source once and print the price summary as JSON",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchVat, "vat", "", "VAT regime: 24, 10 or 0 (default from config)")
}

type fetchReport struct {
	Sources      []models.MRefreshMetrics `json:"sources"`
	PriceSummary *models.MPriceSummary    `json:"price_summary,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	regime := cfg.DefaultRegime()
	if fetchVat != "" {
		if regime, err = models.ParseVatRegime(fetchVat); err != nil {
			return err
		}
	}

	a, err := setupApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.Scheduler.RefreshAll(ctx, true); err != nil {
		a.Logger.Warning("Some sources failed: %v", err)
	}

	report := fetchReport{Sources: a.Dashboard.Sources()}
	if _, err := a.Dashboard.Snapshot(ctx, models.SourceDayAheadPrice, false); err == nil {
		summary, err := a.Dashboard.PriceSummary(ctx, time.Now(), regime)
		if err != nil {
			report.Error = err.Error()
		} else {
			report.PriceSummary = &summary
		}
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

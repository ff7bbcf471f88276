package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablescout/enrich-cli/internal/engine"
	"github.com/tablescout/enrich-cli/internal/igprofile"
	"github.com/tablescout/enrich-cli/pkg/places"
	"github.com/tablescout/enrich-cli/pkg/textgen"
)

var (
	reconcileBatchSize     int
	reconcileOnce          bool
	reconcileForceRefresh  bool
	reconcileDelayMillis   int
	reconcileStatusOptions []string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the enrichment sweep over eligible records",
	Long:  "Fetches eligible venue records in batches, enriches each through place lookup, description generation, and profile-link discovery, and writes the results back. Resumable: interrupt at any point and rerun.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := newStore()
		if err != nil {
			return err
		}

		if cfg.Places.Key == "" {
			return fmt.Errorf("places key is required")
		}
		placesClient := places.NewClient(cfg.Places.Key,
			places.WithBaseURL(cfg.Places.BaseURL),
		)

		describe := textgen.NewGenerator(cfg.Anthropic.Key, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		finder := igprofile.NewFinder(time.Duration(cfg.Instagram.TimeoutSecs) * time.Second)

		links := newLinkCache()
		defer links.Close()

		batchSize := cfg.Reconcile.BatchSize
		if reconcileBatchSize > 0 {
			batchSize = reconcileBatchSize
		}
		delay := time.Duration(cfg.Reconcile.DelayMillis) * time.Millisecond
		if cmd.Flags().Changed("delay") {
			delay = time.Duration(reconcileDelayMillis) * time.Millisecond
		}

		eng := engine.New(store, placesClient, describe, finder, links, newResolver(reconcileStatusOptions), engine.Options{
			BatchSize:     batchSize,
			Delay:         delay,
			ForceRefresh:  reconcileForceRefresh || cfg.Reconcile.ForceRefresh,
			Once:          reconcileOnce || cfg.Reconcile.Once,
			Country:       cfg.Places.Country,
			PhotoMaxWidth: cfg.Places.PhotoMaxWidth,
			FindProfiles:  cfg.Instagram.Enabled,
		})

		stats, err := eng.Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("reconcile complete",
			zap.Int("processed", stats.Processed),
			zap.Int("enriched", stats.Enriched),
			zap.Int("not_found", stats.NotFound),
			zap.Int("errors", stats.Errors),
			zap.Int("skipped", stats.Skipped),
		)

		fmt.Printf("processed %d: %d enriched, %d not found, %d errors, %d skipped\n",
			stats.Processed, stats.Enriched, stats.NotFound, stats.Errors, stats.Skipped)

		return nil
	},
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileBatchSize, "batch-size", 0, "records per batch (default from config)")
	reconcileCmd.Flags().BoolVar(&reconcileOnce, "once", false, "stop after a single batch")
	reconcileCmd.Flags().BoolVar(&reconcileForceRefresh, "force-refresh", false, "re-enrich records that are already enriched")
	reconcileCmd.Flags().IntVar(&reconcileDelayMillis, "delay", 0, "inter-record delay in milliseconds (default from config)")
	reconcileCmd.Flags().StringSliceVar(&reconcileStatusOptions, "status-options", nil, "select labels available in the status column, in logical order")
	rootCmd.AddCommand(reconcileCmd)
}

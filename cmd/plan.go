package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogauthier/obsched/config"
	"github.com/ogauthier/obsched/core/planner"
	"github.com/ogauthier/obsched/infra/catalog"
	"github.com/ogauthier/obsched/infra/logger"
	"github.com/ogauthier/obsched/infra/metrics"
	"github.com/ogauthier/obsched/infra/publish"
	"github.com/ogauthier/obsched/pkg/export"
)

var (
	catalogPath string
	format      string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan one scheduling run over a request catalog",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&catalogPath, "catalog", "", "request and resource catalog file (json or yaml)")
	planCmd.Flags().StringVar(&format, "format", "text", "output format: text, json or csv")
	_ = planCmd.MarkFlagRequired("catalog")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("plan-command")

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	sink, err := metrics.FromConfig(cfg.Metrics, logg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}

	pl, err := planner.New(cfg.Planner.ToPlanner(), nil, nil, logg, sink)
	if err != nil {
		return err
	}
	out, err := pl.Plan(ctx, cat.Requests, cat.Resources)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		err = export.WriteJSON(os.Stdout, out)
	case "csv":
		err = export.WriteCSV(os.Stdout, out.Schedule)
	case "text":
		pcfg := cfg.Planner.ToPlanner()
		err = export.WriteReport(os.Stdout, out, cat.Resources, pcfg.HorizonStart, pcfg.HorizonEnd)
	default:
		err = fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if cfg.Publish.Enabled {
		pub, err := publish.New(cfg.Publish)
		if err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
		defer pub.Close()
		if err := pub.Publish(out); err != nil {
			return fmt.Errorf("publish outcome: %w", err)
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogauthier/obsched/config"
	"github.com/ogauthier/obsched/core/timegrid"
	"github.com/ogauthier/obsched/core/visibility"
	"github.com/ogauthier/obsched/infra/catalog"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate visibility without solving",
	Long:  "Loads the catalog, runs the visibility pass and prints the feasible start counts per request, without building or solving a model.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&catalogPath, "catalog", "", "request and resource catalog file (json or yaml)")
	_ = checkCmd.MarkFlagRequired("catalog")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	pcfg := cfg.Planner.ToPlanner()
	grid, err := timegrid.New(pcfg.HorizonStart, pcfg.HorizonEnd, pcfg.SlotWidth)
	if err != nil {
		return err
	}
	rep, err := visibility.Evaluate(grid, cat.Requests, cat.Resources, nil, pcfg.Workers)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "horizon: %d slots of %v, %d requests, %d resources\n",
		grid.Slots(), pcfg.SlotWidth, len(cat.Requests), len(cat.Resources))
	for _, req := range cat.Requests {
		fmt.Fprintf(os.Stdout, "  %s: %d feasible starts\n", req.ID, rep.FeasibleStartCount(req.ID))
	}
	if len(rep.Infeasible) > 0 {
		fmt.Fprintf(os.Stdout, "infeasible: %v\n", rep.Infeasible)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planwerk/planwerk/app"
	"github.com/planwerk/planwerk/config"
	engine "github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/model"
)

var (
	planFrom       string
	planTo         string
	planProduction bool
	planMontage    bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one AutoPlan pass and print the result",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFrom, "from", "", "start of the planning range (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planTo, "to", "", "end of the planning range (YYYY-MM-DD)")
	planCmd.Flags().BoolVar(&planProduction, "production", true, "plan production workloads")
	planCmd.Flags().BoolVar(&planMontage, "montage", true, "plan montage workloads")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	from, err := model.ParseDate(planFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := model.ParseDate(planTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("--to must not be before --from")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Planner.Run(cmd.Context(), engine.Params{
		StartDate:         from,
		EndDate:           to,
		IncludeProduction: planProduction,
		IncludeMontage:    planMontage,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

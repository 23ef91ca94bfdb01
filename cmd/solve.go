package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flightrecovery/app"
	"github.com/kilianp07/flightrecovery/core/instance"
	"github.com/kilianp07/flightrecovery/infra/logger"
	"github.com/kilianp07/flightrecovery/pkg/export"
)

var (
	solveInstance string
	solveOut      string
	solveCSV      string
	solveWarm     string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute first-stage reschedules with Benders decomposition",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveInstance, "instance", "i", "", "instance file (yaml or json)")
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "-", "result file, format picked by extension, - for stdout")
	solveCmd.Flags().StringVar(&solveCSV, "csv", "", "write per-leg reschedules as csv")
	solveCmd.Flags().StringVar(&solveWarm, "warm", "", "reschedules file used as warm start")
	_ = solveCmd.MarkFlagRequired("instance")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	inst, err := instance.Load(solveInstance)
	if err != nil {
		return err
	}
	var warm []int
	if solveWarm != "" {
		if warm, err = export.ReadReschedules(solveWarm, inst.Registry.Legs()); err != nil {
			return fmt.Errorf("warm start: %w", err)
		}
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Solve(ctx, inst, warm)
		if err != nil {
			return err
		}
		logger.New("main").Infow("solve done", map[string]any{
			"instance":   inst.Name,
			"run_id":     res.RunID,
			"objective":  res.UpperBound,
			"iterations": res.Iterations,
		})
		if err := export.WriteFile(solveOut, res); err != nil {
			return err
		}
		if solveCSV == "" {
			return nil
		}
		f, err := os.Create(solveCSV)
		if err != nil {
			return err
		}
		if err := export.WriteReschedulesCSV(f, inst.Registry.Legs(), res.Reschedules); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

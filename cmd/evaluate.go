package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flightrecovery/app"
	"github.com/kilianp07/flightrecovery/core/instance"
	"github.com/kilianp07/flightrecovery/pkg/export"
)

var (
	evalInstance    string
	evalReschedules string
	evalOut         string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compare the original schedule with a rescheduled one over the scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instance.Load(evalInstance)
		if err != nil {
			return err
		}
		resched, err := export.ReadReschedules(evalReschedules, inst.Registry.Legs())
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			cmp, err := svc.Evaluate(ctx, inst, resched)
			if err != nil {
				return err
			}
			return export.WriteFile(evalOut, cmp)
		})
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalInstance, "instance", "i", "", "instance file (yaml or json)")
	evaluateCmd.Flags().StringVarP(&evalReschedules, "reschedules", "r", "", "reschedules file (json, yaml or csv)")
	evaluateCmd.Flags().StringVarP(&evalOut, "out", "o", "-", "report file, format picked by extension, - for stdout")
	_ = evaluateCmd.MarkFlagRequired("instance")
	_ = evaluateCmd.MarkFlagRequired("reschedules")
	rootCmd.AddCommand(evaluateCmd)
}

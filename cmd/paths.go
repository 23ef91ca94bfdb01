package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kilianp07/flightrecovery/core/instance"
)

var pathsInstance string

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the number of feasible routes per tail",
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instance.Load(pathsInstance)
		if err != nil {
			return err
		}
		counts := inst.Registry.PathCounts()
		ids := make([]int, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		out := cmd.OutOrStdout()
		for _, id := range ids {
			fmt.Fprintf(out, "tail %d: %d paths\n", id, counts[id])
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().StringVarP(&pathsInstance, "instance", "i", "", "instance file (yaml or json)")
	_ = pathsCmd.MarkFlagRequired("instance")
	rootCmd.AddCommand(pathsCmd)
}

package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run agent training passes",
}

var trainRetrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Retrain active agents from accumulated feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		n, err := rt.trainer.RetrainAgents(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("%d agents retrained", n)
		return nil
	},
}

var trainMeasureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Measure agent performance over the last week",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		entryID, err := rt.trainer.MeasurePerformance(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("performance summary stored as entry %d", entryID)
		return nil
	},
}

func init() {
	trainCmd.AddCommand(trainRetrainCmd)
	trainCmd.AddCommand(trainMeasureCmd)
}

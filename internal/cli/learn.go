package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dialectiq/dialectiq/internal/aggregator"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Run cross-domain aggregation passes",
}

var learnAggregateCmd = &cobra.Command{
	Use:   "aggregate [domains...]",
	Short: "Compare domains pairwise and report connections (no persistence)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		domains, err := resolveDomains(rt, args)
		if err != nil {
			return err
		}
		report, err := rt.aggregator.AggregateAcrossDomains(cmd.Context(), domains)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var learnContinuousCmd = &cobra.Command{
	Use:   "continuous [domains...]",
	Short: "Full continuous-learning pass, persisting cross-domain insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		domains, err := resolveDomains(rt, args)
		if err != nil {
			return err
		}
		report, err := rt.aggregator.RunContinuousLearning(cmd.Context(), domains)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

func resolveDomains(rt *runtime, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	domains, err := rt.knowledge.Domains()
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("no knowledge domains yet")
	}
	return domains, nil
}

func printReport(report *aggregator.Report) {
	for _, c := range report.Connections {
		color.Yellow("%s <-> %s", c.Domain1, c.Domain2)
		fmt.Printf("common topics: %v\n%s\n\n", c.CommonTopics, c.Insights)
	}
	color.Cyan("strategic synthesis:")
	fmt.Println(report.StrategicSynthesis)
}

func init() {
	learnCmd.AddCommand(learnAggregateCmd)
	learnCmd.AddCommand(learnContinuousCmd)
}

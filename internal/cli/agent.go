package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage reasoning agents and pairs",
}

var agentCreatePairCmd = &cobra.Command{
	Use:   "create-pair <domain>",
	Short: "Create a primary/mirror agent pair for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		strategy, _ := cmd.Flags().GetString("strategy")
		pair, err := rt.registry.CreatePairedAgents(args[0], strategy)
		if err != nil {
			return err
		}
		color.Green("pair %d created: primary=%d mirror=%d domain=%s",
			pair.ID, pair.PrimaryAgentID, pair.MirrorAgentID, pair.Domain)
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents, optionally by domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		domain, _ := cmd.Flags().GetString("domain")
		agents, err := rt.registry.ListAgents(domain)
		if err != nil {
			return err
		}
		for _, a := range agents {
			fmt.Printf("%4d  %-24s %-12s %-8s %s\n", a.ID, a.Name, a.Domain, a.Role, a.Status)
		}
		pairs, err := rt.registry.ListPairs(domain)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			fmt.Printf("pair %d: %d/%d (%s, %s)\n", p.ID, p.PrimaryAgentID, p.MirrorAgentID, p.Domain, p.Strategy)
		}
		return nil
	},
}

var agentStatusCmd = &cobra.Command{
	Use:   "status <agent-id> <active|inactive|training>",
	Short: "Toggle an agent's lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid agent id %q", args[0])
		}
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		return rt.registry.SetStatus(id, args[1])
	},
}

var agentFeedbackCmd = &cobra.Command{
	Use:   "feedback <agent-id> <rating 0..1> <comment>",
	Short: "Record feedback for the next retraining pass",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid agent id %q", args[0])
		}
		rating, err := strconv.ParseFloat(args[1], 64)
		if err != nil || rating < 0 || rating > 1 {
			return fmt.Errorf("invalid rating %q (want 0..1)", args[1])
		}
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		comment := args[2]
		for _, extra := range args[3:] {
			comment += " " + extra
		}
		fb, err := rt.store.AddFeedback(id, rating, comment)
		if err != nil {
			return err
		}
		color.Green("feedback %d recorded for agent %d", fb.ID, id)
		return nil
	},
}

func init() {
	agentCreatePairCmd.Flags().String("strategy", "adversarial", "pairing strategy label")
	agentListCmd.Flags().String("domain", "", "filter by domain")
	agentCmd.AddCommand(agentCreatePairCmd)
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentStatusCmd)
	agentCmd.AddCommand(agentFeedbackCmd)
}

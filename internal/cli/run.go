package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dialectiq/dialectiq/internal/dialogue"
	"github.com/dialectiq/dialectiq/internal/events"
)

var debateCmd = &cobra.Command{
	Use:   "debate <pair-id> <topic>",
	Short: "Run a structured debate between a pair and store the synthesis",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid pair id %q", args[0])
		}
		rounds, _ := cmd.Flags().GetInt("rounds")

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()
		if rounds <= 0 {
			rounds = rt.cfg.Dialogue.DebateRounds
		}

		topic := strings.Join(args[1:], " ")
		result, err := rt.engine.RunDebate(cmd.Context(), pairID, topic, rounds)
		if err != nil {
			return err
		}
		publishRunEvents(rt, result)
		printResult(result)
		return nil
	},
}

var researchCmd = &cobra.Command{
	Use:   "research <pair-id> <question>",
	Short: "Run a research session between a pair and store the findings",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid pair id %q", args[0])
		}
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		question := strings.Join(args[1:], " ")
		result, err := rt.engine.RunResearch(cmd.Context(), pairID, question)
		if err != nil {
			return err
		}
		publishRunEvents(rt, result)
		printResult(result)
		return nil
	},
}

func publishRunEvents(rt *runtime, result *dialogue.Result) {
	ctx := context.Background()
	rt.publisher.Publish(ctx, events.TypeDialogueCompleted, map[string]any{
		"dialogue_id": result.Dialogue.ID,
		"kind":        result.Dialogue.Kind,
		"topic":       result.Dialogue.Topic,
		"messages":    len(result.Messages),
	})
	rt.publisher.Publish(ctx, events.TypeKnowledgeCreated, map[string]any{
		"entry_id":    result.KnowledgeID,
		"dialogue_id": result.Dialogue.ID,
	})
}

func printResult(result *dialogue.Result) {
	color.Cyan("dialogue %d (%s) %s", result.Dialogue.ID, result.Dialogue.Kind, result.Dialogue.Status)
	for _, m := range result.Messages {
		color.Yellow("[%s] agent %d", m.Tag, m.AgentID)
		fmt.Println(m.Content)
		fmt.Println()
	}
	color.Green("knowledge entry %d created", result.KnowledgeID)
}

func init() {
	debateCmd.Flags().Int("rounds", 0, "number of debate rounds (default from config)")
}

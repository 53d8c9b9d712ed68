package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dialectiq/dialectiq/internal/events"
	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Query and maintain the knowledge store",
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Case-insensitive substring search over topics and insights",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		entries, err := rt.knowledge.SearchByText(strings.Join(args, " "))
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

var knowledgeTopCmd = &cobra.Command{
	Use:   "top <domain>",
	Short: "Show top insights for a domain by confidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		entries, err := rt.knowledge.TopInsights(args[0], limit)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

var knowledgeLineageCmd = &cobra.Command{
	Use:   "lineage <entry-id>",
	Short: "Show the full version lineage containing an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		lineage, err := rt.knowledge.GetLineage(id)
		if err != nil {
			return err
		}
		for _, e := range lineage {
			marker := " "
			if e.ID == id {
				marker = "*"
			}
			fmt.Printf("%s v%d  #%-5d confidence %.0f  %s\n", marker, e.Version, e.ID, e.Confidence, e.Insight)
		}
		return nil
	},
}

var knowledgeSupersedeCmd = &cobra.Command{
	Use:   "supersede <entry-id> <new insight>",
	Short: "Insert a new version superseding an existing entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		newID, err := rt.knowledge.Supersede(id, strings.Join(args[1:], " "), confidence, nil, nil)
		if err != nil {
			return err
		}
		rt.publisher.Publish(cmd.Context(), events.TypeKnowledgeCreated, map[string]any{
			"entry_id":   newID,
			"supersedes": id,
		})
		color.Green("entry %d superseded by %d", id, newID)
		return nil
	},
}

var knowledgeSimilarCmd = &cobra.Command{
	Use:   "similar <query>",
	Short: "Rank embedded entries by semantic similarity to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		embedder, ok := rt.gateway.(gateway.Embedder)
		if !ok {
			return fmt.Errorf("configured gateway does not support embeddings")
		}
		vector, err := embedder.Embed(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		matches, err := rt.knowledge.SearchSimilar(vector, limit)
		if err != nil {
			return err
		}
		for _, m := range matches {
			color.Yellow("%.3f  #%d [%s] %s", m.Similarity, m.Entry.ID, m.Entry.Domain, m.Entry.Topic)
			fmt.Println(m.Entry.Insight)
			fmt.Println()
		}
		return nil
	},
}

var knowledgeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts and average confidence per domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		stats, err := rt.knowledge.StatsByDomain()
		if err != nil {
			return err
		}
		for _, st := range stats {
			fmt.Printf("%-20s %5d entries  avg confidence %.1f\n", st.Domain, st.Entries, st.AvgConfidence)
		}
		return nil
	},
}

func printEntries(entries []*knowledge.Entry) {
	for _, e := range entries {
		color.Yellow("#%d [%s] %s (v%d, confidence %.0f)", e.ID, e.Domain, e.Topic, e.Version, e.Confidence)
		fmt.Println(e.Insight)
		fmt.Println()
	}
}

func init() {
	knowledgeTopCmd.Flags().Int("limit", 10, "max entries")
	knowledgeSimilarCmd.Flags().Int("limit", 10, "max entries")
	knowledgeSupersedeCmd.Flags().Float64("confidence", 85, "confidence of the new version")
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeTopCmd)
	knowledgeCmd.AddCommand(knowledgeSimilarCmd)
	knowledgeCmd.AddCommand(knowledgeLineageCmd)
	knowledgeCmd.AddCommand(knowledgeSupersedeCmd)
	knowledgeCmd.AddCommand(knowledgeStatsCmd)
}

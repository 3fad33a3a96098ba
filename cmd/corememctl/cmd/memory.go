package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listLimit int

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Store a new memory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newClient().StoreMemory(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to store memory: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stored %s\n", m.ID)
		fmt.Fprintf(out, "  summary:   %s\n", m.Summary)
		fmt.Fprintf(out, "  sentiment: %s (%.2f)\n", m.Sentiment, m.SentimentScore)
		if len(m.Entities) > 0 {
			fmt.Fprintf(out, "  entities:  %s\n", strings.Join(m.Entities, ", "))
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent memories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		resp, err := newClient().ListMemories(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("failed to list memories: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(resp.Memories) == 0 {
			fmt.Fprintln(out, "No memories stored.")
			return nil
		}

		fmt.Fprintf(out, "%-36s %-20s %-9s %s\n", "ID", "CREATED", "SENTIMENT", "SUMMARY")
		for _, m := range resp.Memories {
			fmt.Fprintf(out, "%-36s %-20s %-9s %s\n",
				m.ID, m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.Sentiment, m.Summary)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteMemory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete memory: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newClient().Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total:    %d\n", stats.TotalMemories)
		fmt.Fprintf(out, "Positive: %d\n", stats.PositiveCount)
		fmt.Fprintf(out, "Negative: %d\n", stats.NegativeCount)
		fmt.Fprintf(out, "Neutral:  %d\n", stats.NeutralCount)
		if len(stats.TopEntities) > 0 {
			fmt.Fprintf(out, "Top:      %s\n", strings.Join(stats.TopEntities, ", "))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "maximum number of memories to list (0 for all)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
}

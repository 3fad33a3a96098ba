package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories and synthesize an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := newClient().Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if outcome.Response != nil {
			fmt.Fprintln(out, *outcome.Response)
		}
		if len(outcome.Results) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-6s %-36s %s\n", "SCORE", "ID", "REASON")
		for _, r := range outcome.Results {
			fmt.Fprintf(out, "%-6.2f %-36s %s\n", r.RelevanceScore, r.Memory.ID, r.RelevanceReason)
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the search interaction log",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().ListInteractions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list interactions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(resp.Interactions) == 0 {
			fmt.Fprintln(out, "No interactions logged.")
			return nil
		}
		for _, it := range resp.Interactions {
			fmt.Fprintf(out, "[%s] %s\n", it.Timestamp.Local().Format("2006-01-02 15:04:05"), it.Query)
			fmt.Fprintf(out, "  %s\n", it.Response)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all memories and interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			fmt.Fprint(cmd.OutOrStdout(), "This deletes every memory and interaction. Continue? [y/N] ")
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer := strings.ToLower(strings.TrimSpace(line))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := newClient().Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All memories and interactions deleted.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newClient().Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch status: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status:  %s (ready=%t, up %s)\n", st.Status, st.Ready, st.Uptime)
		fmt.Fprintf(out, "Version: %s\n", st.Version["version"])
		if st.Storage.Healthy {
			fmt.Fprintln(out, "Storage: healthy")
		} else {
			fmt.Fprintf(out, "Storage: unhealthy: %s\n", st.Storage.Error)
		}
		if st.Model != nil {
			fmt.Fprintf(out, "Model:   %s/%s", st.Model.Provider, st.Model.Model)
			if st.Model.Breaker != "" {
				fmt.Fprintf(out, " (breaker %s)", st.Model.Breaker)
			}
			fmt.Fprintln(out)
		}
		if st.Memories != nil && st.Interactions != nil {
			fmt.Fprintf(out, "Counts:  %d memories, %d interactions\n", *st.Memories, *st.Interactions)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
}

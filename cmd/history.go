package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/app"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		_, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.SessionRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		fmt.Printf("%-5s  %-8s  %-16s  %-8s  %-14s  %-8s  %7s  %s\n",
			"Seq", "ID", "Finished", "Policy", "Participant", "Correct", "Skipped", "Acc")
		fmt.Println(strings.Repeat("─", 90))
		for _, s := range sessions {
			var acc float64
			if s.TotalQuestions > 0 {
				acc = float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100
			}
			fmt.Printf("%-5d  %-8s  %-16s  %-8s  %-14s  %-8s  %7d  %.0f%%\n",
				s.Sequence,
				truncate(s.ID, 8),
				s.FinishedAt.Local().Format("2006-01-02 15:04"),
				s.Policy.Label(),
				truncate(s.Participant, 14),
				fmt.Sprintf("%d/%d", s.CorrectAnswers, s.TotalQuestions),
				s.Skipped,
				acc,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show every question of an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.SessionRepo().Get(cmd.Context(), args[0])
		if store.IsNotFound(err) {
			return fmt.Errorf("session %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		fmt.Printf("Session:   %s\n", rec.SessionID)
		fmt.Printf("Started:   %s\n\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
		printOutcomes(rec.Outcomes)
		fmt.Println()
		app.WriteSummary(cmd.OutOrStdout(), *rec, session.BuildSummary(*rec))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		err = st.SessionRepo().Delete(cmd.Context(), args[0])
		if store.IsNotFound(err) {
			return fmt.Errorf("session %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s.\n", args[0])
		return nil
	},
}

func printOutcomes(outcomes []session.Outcome) {
	fmt.Printf("%-3s  %-16s  %-6s  %-8s  %-7s  %-7s  %s\n",
		"#", "Item", "Level", "Mood", "Source", "Result", "Answer")
	fmt.Println(strings.Repeat("─", 80))
	for _, o := range outcomes {
		result := "✗"
		switch {
		case o.Skipped:
			result = "skipped"
		case o.Correct:
			result = "✓"
		}
		fmt.Printf("%-3d  %-16s  %-6s  %-8s  %-7s  %-7s  %s\n",
			o.Index, truncate(o.ItemID, 16), o.Difficulty,
			strings.ToLower(string(o.Emotion)), o.EmotionSource, result, o.Answer)
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.AddCommand(historyViewCmd, historyDeleteCmd)
}

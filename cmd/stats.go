package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		counts, err := st.PracticeRepo().Count(ctx)
		if err != nil {
			return fmt.Errorf("count practices: %w", err)
		}
		stats, err := st.SessionRepo().Stats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		fmt.Println("Catalog")
		fmt.Println(strings.Repeat("─", 48))
		for _, d := range practice.AllDifficulties {
			fmt.Printf("%-10s  %6d\n", d, counts[d])
		}

		fmt.Println()
		fmt.Println("Sessions by Policy")
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-10s  %8s  %9s  %7s  %7s\n", "Policy", "Sessions", "Questions", "Skipped", "Acc")
		for _, p := range []difficulty.Policy{difficulty.Adaptive, difficulty.Fixed} {
			ps := stats.ByPolicy[p]
			fmt.Printf("%-10s  %8d  %9d  %7d  %6.0f%%\n",
				p.Label(), ps.Sessions, ps.Questions, ps.Skipped, ps.Accuracy()*100)
		}

		fmt.Println()
		fmt.Println("Answers by Level")
		fmt.Println(strings.Repeat("─", 48))
		for _, d := range practice.AllDifficulties {
			t := stats.ByDifficulty[d]
			fmt.Printf("%-10s  %4d/%-4d correct\n", d, t.Correct, t.Attempted)
		}

		fmt.Println()
		fmt.Println("Mood")
		fmt.Println(strings.Repeat("─", 48))
		for _, e := range emotion.All {
			fmt.Printf("%-10s  %6d\n", strings.ToLower(string(e)), stats.Emotions[e])
		}
		return nil
	},
}

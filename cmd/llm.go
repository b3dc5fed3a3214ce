package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged LLM calls",
	Long:  "Every call made to pick the next practice or label a learner's tone is stored with its request and response.",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().UTC().Add(-since)
		}
		var filters []store.EventFilter
		if purpose != "" {
			filters = append(filters, store.ForPurpose(purpose))
		}
		if failed {
			filters = append(filters, store.FailedOnly())
		}

		_, s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts, filters...)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		const row = "%-5v  %-16s  %-14s  %-28s  %6v  %6v  %7v  %s\n"
		fmt.Fprintf(out, row, "ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		rule(out, 100)
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗ " + truncate(e.ErrorMessage, 40)
			}
			fmt.Fprintf(out, row, e.ID, e.Timestamp.Local().Format("01-02 15:04:05"), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		_, s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		status := "ok"
		if !e.Success {
			status = "failed: " + e.ErrorMessage
		}
		fmt.Fprintf(out, "Call %d  %s  %s\n", e.ID, e.Timestamp.Local().Format(time.DateTime), status)
		fmt.Fprintf(out, "%s/%s for %s, %d in / %d out tokens, %dms\n",
			e.Provider, e.Model, e.Purpose, e.InputTokens, e.OutputTokens, e.LatencyMs)

		for _, part := range []struct{ name, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Fprintln(out)
			fmt.Fprintln(out, part.name)
			rule(out, 60)
			fmt.Fprintln(out, indentJSON(part.body))
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		writeUsage(out, byPurpose)
		fmt.Fprintln(out)
		writeCost(out, byModel)
		return nil
	},
}

func writeUsage(out io.Writer, stats []store.UsageStat) {
	const row = "%-16s  %6v  %10v  %10v  %8v\n"
	fmt.Fprintln(out, "Usage by purpose")
	fmt.Fprintf(out, row, "Purpose", "Calls", "Input", "Output", "Avg Ms")
	rule(out, 60)
	var total store.UsageStat
	for _, st := range stats {
		fmt.Fprintf(out, row, st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
		total.Calls += st.Calls
		total.InputTokens += st.InputTokens
		total.OutputTokens += st.OutputTokens
	}
	rule(out, 60)
	fmt.Fprintf(out, row, "TOTAL", total.Calls, total.InputTokens, total.OutputTokens, "")
}

func writeCost(out io.Writer, stats []store.UsageStat) {
	const row = "%-32s  %6v  %10s\n"
	fmt.Fprintln(out, "Estimated cost (USD)")
	fmt.Fprintf(out, row, "Model", "Calls", "Cost")
	rule(out, 52)
	var total float64
	var unpriced []string
	for _, st := range stats {
		price := llm.LookupCost(st.Model)
		if price == nil {
			unpriced = append(unpriced, st.Model)
			fmt.Fprintf(out, row, truncate(st.Model, 32), st.Calls, "?")
			continue
		}
		c := price.Cost(st.InputTokens, st.OutputTokens)
		total += c
		fmt.Fprintf(out, row, truncate(st.Model, 32), st.Calls, formatCost(c))
	}
	rule(out, 52)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, row, label, "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func rule(out io.Writer, n int) {
	fmt.Fprintln(out, strings.Repeat("─", n))
}

// indentJSON pretty-prints body when it is JSON and returns it unchanged
// otherwise.
func indentJSON(body string) string {
	if body == "" {
		return "(not captured)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return body
	}
	return buf.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (next-practice or emotion-label)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")
	llmListCmd.Flags().Duration("since", 0, "Only show calls made within this long (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

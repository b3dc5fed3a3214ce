package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and the supported variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Database:        %s\n", dbPath)
		fmt.Fprintf(out, "Participant:     %s\n", orNone(cfg.Session.Participant))
		fmt.Fprintf(out, "Default policy:  %s\n", cfg.Session.DefaultPolicy)
		fmt.Fprintf(out, "Catalog:         %s\n", cfg.Catalog.Source)
		fmt.Fprintf(out, "Emotion service: %s\n", cfg.Session.EmotionService)
		fmt.Fprintf(out, "Advisor:         %s\n", cfg.Session.Advisor)
		fmt.Fprintf(out, "Speech service:  %s\n", orNone(cfg.Speech.BaseURL))
		llmCfg, err := cfg.ToLLM()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "LLM provider:    %s\n", orNone(llmCfg.Provider))

		if env, _ := cmd.Flags().GetBool("env"); env {
			fmt.Fprintln(out)
			fmt.Fprintln(out, config.Usage())
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	configCmd.Flags().Bool("env", false, "List every supported environment variable")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI. Logs
// go to a file while the TUI owns the terminal.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}

	logFile, err := app.OpenLogFile(cfg.Log.File, dbPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := app.NewLogger(cfg.Log, logFile)

	st, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	deps, err := app.Build(ctx, cfg, st, log)
	if err != nil {
		return err
	}
	if deps.Provider == nil && (cfg.Session.Advisor == "llm" || cfg.Session.EmotionService == "llm") {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; AI features will be unavailable.")
	}

	participant, _ := cmd.Flags().GetString("participant")
	return app.Run(ctx, deps, participant)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/app"
	"github.com/abhisek/fluentz/internal/config"
	"github.com/abhisek/fluentz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "fluentz",
	Short: "Adaptive spoken-English practice",
	Long: `Fluentz runs short guided practice sessions of everyday English phrases.
Each session serves ten questions; the adaptive policy moves between easy,
medium and hard based on your answers and your mood.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FLUENTZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides FLUENTZ_CONFIG env var)")
	rootCmd.Flags().StringP("participant", "u", "", "Who is practicing (skips the name prompt)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config (or the default
// locations) and applies the --db override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (FLUENTZ_DB or the config file), then the default
// XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.DB.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore loads the config, sets up stderr logging and opens the database.
func openStore(cmd *cobra.Command) (*config.Config, *store.Store, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	st, err := openDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, st, log, nil
}

func openDB(cfg *config.Config, log *slog.Logger) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

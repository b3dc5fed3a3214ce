package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/app"
	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/transcript"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a session on the terminal without the TUI",
	Long: `Runs one practice session line by line on stdin/stdout. Type an answer,
"/skip" to skip a question or "/quit" to leave. A line starting with "@"
names an audio recording that is transcribed by the speech service.
An unfinished session is saved and resumed the next time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, st, log, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		policyName, _ := cmd.Flags().GetString("policy")
		if policyName == "" {
			policyName = cfg.Session.DefaultPolicy
		}
		policy, err := difficulty.ParsePolicy(policyName)
		if err != nil {
			return err
		}

		deps, err := app.Build(ctx, cfg, st, log)
		if err != nil {
			return err
		}
		participant, _ := cmd.Flags().GetString("participant")
		ctrl := deps.NewController(participant)
		snap, err := deps.LatestSnapshot(ctx)
		if err != nil {
			log.Warn("loading session snapshot failed", "error", err)
		}
		switch {
		case snap == nil:
		case snap.Finished() && !snap.Archived:
			// The last session finished but never reached the archive.
			if err := ctrl.Restore(snap); err != nil {
				log.Warn("discarding unusable snapshot", "error", err)
				break
			}
			if err := archivePrevious(ctx, deps, ctrl); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your last session was added to the history.")
		case snap.Policy == policy && !snap.Finished():
			if err := ctrl.Restore(snap); err != nil {
				log.Warn("discarding unusable snapshot", "error", err)
			}
		}

		h := &app.Headless{
			Controller: ctrl,
			Source:     transcript.NewLineSource(cmd.InOrStdin(), deps.Transcriber),
			Out:        cmd.OutOrStdout(),
			Save:       deps.SaveSnapshot,
		}
		_, err = h.Run(ctx, policy)
		if errors.Is(err, app.ErrQuit) {
			fmt.Fprintln(cmd.OutOrStdout(), "\nSession saved. Run again to resume.")
			return nil
		}
		return err
	},
}

// archivePrevious archives the restored finished session and clears its
// snapshot only once that succeeded.
func archivePrevious(ctx context.Context, deps *app.Deps, ctrl *session.Controller) error {
	if err := ctrl.Archive(ctx); err != nil {
		return fmt.Errorf("%w; run again to retry", err)
	}
	return deps.SaveSnapshot(ctx, ctrl)
}

func init() {
	practiceCmd.Flags().StringP("policy", "p", "", "Difficulty policy: fixed or adaptive (default from config)")
	practiceCmd.Flags().StringP("participant", "u", "", "Who is practicing")
}

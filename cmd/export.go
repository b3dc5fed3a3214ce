package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/export"
	"github.com/abhisek/fluentz/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export archived sessions as CSV or JSON",
	Long: `Writes archived sessions to disk. With an id only that session is
exported. --out names a single combined file; otherwise one file per
session is written to --dir (default: export.dir from config).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.Export.Format
		}
		if format, err = export.ParseFormat(format); err != nil {
			return err
		}

		repo := st.SessionRepo()
		var recs []session.Record
		if len(args) == 1 {
			rec, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get session %q: %w", args[0], err)
			}
			recs = []session.Record{*rec}
		} else if recs, err = repo.All(cmd.Context()); err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions to export.")
			return nil
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := export.WriteFile(out, format, recs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(recs), out)
			return nil
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Export.Dir
		}
		if dir == "" {
			dir = "."
		}
		for _, rec := range recs {
			if err := export.WriteFile(filepath.Join(dir, export.FileName(rec, format)), format, rec); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(recs), dir)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "", "Export format: csv or json (default from config)")
	exportCmd.Flags().StringP("out", "o", "", "Write all sessions to this single file")
	exportCmd.Flags().String("dir", "", "Directory for per-session files")
}

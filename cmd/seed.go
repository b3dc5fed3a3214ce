package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/practice"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load practice items into the local catalog",
	Long: `Loads the built-in starter deck, or the items of a JSON file given with
--file. The file holds an array of objects with id, difficulty, question
and correct_answer. Existing items with the same id are replaced.

--remove deletes the given item ids instead of loading anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.PracticeRepo()
		if ids, _ := cmd.Flags().GetStringSlice("remove"); len(ids) > 0 {
			for _, id := range ids {
				if err := repo.Delete(cmd.Context(), id); err != nil {
					if errors.Is(err, practice.ErrNotFound) {
						return fmt.Errorf("practice %q not found", id)
					}
					return fmt.Errorf("delete practice: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d practices.\n", len(ids))
			return nil
		}

		items := practice.SeedItems()
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open practice file: %w", err)
			}
			defer f.Close()
			if items, err = practice.DecodeItems(f); err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
		}

		if err := repo.Upsert(cmd.Context(), items...); err != nil {
			return fmt.Errorf("store practices: %w", err)
		}

		counts, err := repo.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count practices: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d practices. Catalog: %d easy, %d medium, %d hard.\n",
			len(items), counts[practice.Easy], counts[practice.Medium], counts[practice.Hard])
		return nil
	},
}

func init() {
	seedCmd.Flags().StringP("file", "f", "", "JSON file with practice items (default: built-in deck)")
	seedCmd.Flags().StringSlice("remove", nil, "Item ids to delete from the catalog")
}

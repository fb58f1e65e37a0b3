package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gamerec/internal/dataset"
	"gamerec/pkg/database"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var gamesPath, simPath, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate the CSV dataset and store it in the sqlite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			gamesPath = firstNonEmpty(gamesPath, cfg.Data.GamesPath)
			simPath = firstNonEmpty(simPath, cfg.Data.SimilarityPath)
			dbPath = firstNonEmpty(dbPath, cfg.Database.Path)

			data, err := dataset.LoadFiles(gamesPath, simPath)
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), database.Config{Path: dbPath})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := dataset.SaveToDatabase(cmd.Context(), db, data); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d games and a %d-title similarity matrix into %s\n",
				data.Games.Len(), data.Similarity.Len(), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&gamesPath, "games", "", "Games CSV path (default data.games_path)")
	cmd.Flags().StringVar(&simPath, "similarity", "", "Similarity matrix CSV path (default data.similarity_path)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default database.path)")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outDir, dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset stored in sqlite back to CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dbPath = firstNonEmpty(dbPath, cfg.Database.Path)
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("database: %w", err)
			}

			db, err := database.Open(cmd.Context(), database.Config{Path: dbPath})
			if err != nil {
				return err
			}
			defer db.Close()

			data, err := dataset.LoadFromDatabase(cmd.Context(), db)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			gamesPath := filepath.Join(outDir, "Games_dataset.csv")
			simPath := filepath.Join(outDir, "sim_matrix.csv")
			if err := writeFile(gamesPath, func(f *os.File) error { return dataset.WriteGamesCSV(f, data.Games) }); err != nil {
				return err
			}
			if err := writeFile(simPath, func(f *os.File) error { return dataset.WriteSimilarityCSV(f, data.Similarity) }); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d games to %s and %s\n", data.Games.Len(), gamesPath, simPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "data/export", "Output directory")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default database.path)")
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

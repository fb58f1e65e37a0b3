package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gamerec/internal/games"
)

func newGamesCommand(ctx *commandContext) *cobra.Command {
	var q games.ListQuery

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List known game titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.backend(cmd.Context())
			if err != nil {
				return err
			}
			page, err := b.ListGames(cmd.Context(), q)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, page)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(page.Items))
			for i, c := range page.Items {
				rows = append(rows, []string{strconv.Itoa(page.Offset + i + 1), c.Title, c.Genre, c.Developer})
			}
			fmt.Fprintln(out, renderTable(out, []string{"#", "Title", "Genre", "Developer"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(out, "%d-%d of %d\n", min(page.Offset+1, page.Total), page.Offset+len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.Q, "search", "s", "", "Only titles containing this text")
	cmd.Flags().StringVarP(&q.Genre, "genre", "g", "", "Only games of this genre")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", games.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Number of games to skip")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres with their number of games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.backend(cmd.Context())
			if err != nil {
				return err
			}
			genres, err := b.Genres(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, genres)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{g.Name, strconv.Itoa(g.Count)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Genre", "Games"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

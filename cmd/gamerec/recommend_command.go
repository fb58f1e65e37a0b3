package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gamerec/internal/games"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [title or genre]",
		Short: "Recommend games similar to a title, or a sample of a genre",
		Long: "Recommend resolves the query against known titles first, then genres.\n" +
			"Without a query the configured default game is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.backend(cmd.Context())
			if err != nil {
				return err
			}
			res, err := b.Recommend(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, res)
			}
			printResult(cmd, res)
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, res *games.Result) {
	out := cmd.OutOrStdout()
	if res.Source != nil {
		fmt.Fprintf(out, "Recommended games for %s (%s)\n", res.Source.Title, res.Source.WikiLink)
	} else {
		fmt.Fprintf(out, "A selection of %s games\n", res.Genre)
	}

	headers := []string{"#", "Title", "Genre", "Developer", "Publisher", "North America", "Plot", "Link"}
	rows := make([][]string, 0, len(res.Items))
	for i, c := range res.Items {
		rank := c.Rank
		if rank == 0 {
			rank = i + 1
		}
		rows = append(rows, []string{
			strconv.Itoa(rank),
			c.Title,
			c.Genre,
			c.Developer,
			c.Publisher,
			c.Releases.NorthAmerica,
			c.PlotSnippet,
			c.WikiLink,
		})
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, []columnAlignment{alignRight}))
}

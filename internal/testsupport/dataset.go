// Package testsupport builds small synthetic datasets for tests.
package testsupport

import (
	"fmt"
	"math"
	"testing"

	"gamerec/internal/dataset"
	"gamerec/pkg/models"
)

// Build assembles a dataset from games and a distance function over game
// indices. Every game gets a similarity row and column.
func Build(tb testing.TB, games []models.Game, dist func(i, j int) float64) *dataset.Data {
	tb.Helper()

	titles := make([]string, len(games))
	for i, g := range games {
		titles[i] = g.Title
	}
	matrix := make([][]float64, len(games))
	for i := range games {
		matrix[i] = make([]float64, len(games))
		for j := range games {
			matrix[i][j] = dist(i, j)
		}
	}

	data, err := dataset.Build(games, titles, titles, matrix)
	if err != nil {
		tb.Fatalf("build dataset: %v", err)
	}
	return data
}

// AbsDistance places game i at position i on a line.
func AbsDistance(i, j int) float64 {
	return math.Abs(float64(i - j))
}

// ABC is the three-game Action dataset with d(A,B)=1, d(A,C)=2, d(A,A)=0.
func ABC(tb testing.TB) *dataset.Data {
	tb.Helper()
	games := []models.Game{
		{Title: "A", Genre: "Action", Developer: "Dev A", Publisher: "Pub", Plot: "Plot of A.", Link: "/wiki/A"},
		{Title: "B", Genre: "Action", Developer: "Dev B", Publisher: "Pub", Plot: "Plot of B.", Link: "/wiki/B"},
		{Title: "C", Genre: "Action", Developer: "Dev C", Publisher: "Pub"},
	}
	return Build(tb, games, AbsDistance)
}

// Catalog returns n games named "Game 01".. spread over genres round-robin.
func Catalog(tb testing.TB, n int, genres ...string) *dataset.Data {
	tb.Helper()
	if len(genres) == 0 {
		genres = []string{"Action"}
	}
	games := make([]models.Game, n)
	for i := range games {
		games[i] = models.Game{
			Title:     fmt.Sprintf("Game %02d", i+1),
			Genre:     genres[i%len(genres)],
			Developer: "Studio",
			Publisher: "Publisher",
			Plot:      fmt.Sprintf("The plot of game %d.", i+1),
			Link:      fmt.Sprintf("/wiki/Game_%02d", i+1),
		}
	}
	return Build(tb, games, AbsDistance)
}

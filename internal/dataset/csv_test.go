package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesCSV = `,Title,Genre,Developer,Publisher,Released in: Japan,North America,Rest of countries,Plots,Link
0,7 Billion Humans,Puzzle,Tomorrow Corporation,Tomorrow Corporation,,"August 23, 2018","August 23, 2018",Automate the office.,/wiki/7_Billion_Humans
1,Celeste,Platform,Maddy Makes Games,Maddy Makes Games,,"January 25, 2018","January 25, 2018",Climb the mountain.,/wiki/Celeste_(video_game)
2,Hollow Knight,Platform,Team Cherry,Team Cherry,,"June 12, 2018","June 12, 2018",,
`

const simCSV = `,7 Billion Humans,Celeste,Hollow Knight
7 Billion Humans,0,0.9,0.8
Celeste,0.9,0,0.2
Hollow Knight,0.8,0.2,0
`

func TestLoadCSV(t *testing.T) {
	data, err := LoadCSV(strings.NewReader(gamesCSV), strings.NewReader(simCSV))
	require.NoError(t, err)

	require.Equal(t, 3, data.Games.Len())
	assert.Equal(t, []string{"7 Billion Humans", "Celeste", "Hollow Knight"}, data.Games.Titles())

	g, ok := data.Games.Get("Celeste")
	require.True(t, ok)
	assert.Equal(t, "Platform", g.Genre)
	assert.Equal(t, "Maddy Makes Games", g.Developer)
	assert.Equal(t, "January 25, 2018", g.Releases.NorthAmerica)
	assert.Empty(t, g.Releases.Japan)
	assert.Equal(t, "Climb the mountain.", g.Plot)
	assert.Equal(t, "/wiki/Celeste_(video_game)", g.Link)

	hk, _ := data.Games.Get("Hollow Knight")
	assert.Empty(t, hk.Plot)
	assert.Empty(t, hk.Link)

	assert.Equal(t, []GenreCount{{Name: "Puzzle", Count: 1}, {Name: "Platform", Count: 2}}, data.Games.Genres())

	d, ok := data.Similarity.Distance("Celeste", "Hollow Knight")
	require.True(t, ok)
	assert.InDelta(t, 0.2, d, 1e-9)
	assert.True(t, data.Similarity.HasColumn("7 Billion Humans"))
}

func TestLoadCSVPlotColumnAlias(t *testing.T) {
	games := "Title,Genre,Plot\nA,Action,Some plot\n"
	sim := ",A\nA,0\n"

	data, err := LoadCSV(strings.NewReader(games), strings.NewReader(sim))
	require.NoError(t, err)

	g, _ := data.Games.Get("A")
	assert.Equal(t, "Some plot", g.Plot)
}

func TestLoadCSVMissingTitleColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Name,Genre\nA,Action\n"), strings.NewReader(simCSV))

	var le *DataLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, SourceGames, le.Source)
	assert.ErrorIs(t, err, ErrMissingTitleColumn)
}

func TestLoadCSVEmptySources(t *testing.T) {
	t.Run("games", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader(""), strings.NewReader(simCSV))
		assert.ErrorIs(t, err, ErrMissingTitleColumn)
	})
	t.Run("similarity", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader(gamesCSV), strings.NewReader(""))
		var le *DataLoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, SourceSimilarity, le.Source)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLoadCSVUnreadableSource(t *testing.T) {
	_, err := LoadCSV(failingReader{}, strings.NewReader(simCSV))

	var le *DataLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, SourceGames, le.Source)
	assert.NotErrorIs(t, err, ErrInvalidData)
}

func TestLoadCSVValidation(t *testing.T) {
	tests := []struct {
		name  string
		games string
		sim   string
		want  error
	}{
		{
			name:  "duplicate title",
			games: "Title,Genre\nA,Action\nA,Puzzle\n",
			sim:   ",A\nA,0\n",
			want:  ErrDuplicateTitle,
		},
		{
			name:  "similarity title without game",
			games: "Title,Genre\nA,Action\n",
			sim:   ",A,Z\nA,0,1\nZ,1,0\n",
			want:  ErrUnknownTitle,
		},
		{
			name:  "short row",
			games: "Title,Genre\nA,Action\nB,Action\n",
			sim:   ",A,B\nA,0\nB,1,0\n",
			want:  ErrNotSquare,
		},
		{
			name:  "more rows than columns",
			games: "Title,Genre\nA,Action\nB,Action\n",
			sim:   ",A\nA,0\nB,1\n",
			want:  ErrNotSquare,
		},
		{
			name:  "empty title",
			games: "Title,Genre\nA,Action\n,Puzzle\n",
			sim:   ",A\nA,0\n",
			want:  ErrEmptyTitle,
		},
		{
			name:  "non numeric distance",
			games: "Title,Genre\nA,Action\n",
			sim:   ",A\nA,zero\n",
			want:  ErrInvalidData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tc.games), strings.NewReader(tc.sim))
			var le *DataLoadError
			require.ErrorAs(t, err, &le)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadCSVEmptyCellIsMissingDistance(t *testing.T) {
	games := "Title,Genre\nA,Action\nB,Action\n"
	sim := ",A,B\nA,0,\nB,,0\n"

	data, err := LoadCSV(strings.NewReader(games), strings.NewReader(sim))
	require.NoError(t, err)

	_, ok := data.Similarity.Distance("A", "B")
	assert.False(t, ok)
	col, _ := data.Similarity.Column("A")
	assert.True(t, math.IsNaN(col[1].Distance))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	gp := filepath.Join(dir, "games.csv")
	sp := filepath.Join(dir, "sim.csv")
	require.NoError(t, os.WriteFile(gp, []byte(gamesCSV), 0o644))
	require.NoError(t, os.WriteFile(sp, []byte(simCSV), 0o644))

	data, err := LoadFiles(gp, sp)
	require.NoError(t, err)
	assert.Equal(t, 3, data.Games.Len())

	_, err = LoadFiles(filepath.Join(dir, "missing.csv"), sp)
	var le *DataLoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	data, err := LoadCSV(strings.NewReader(gamesCSV), strings.NewReader(simCSV))
	require.NoError(t, err)

	var games, sim bytes.Buffer
	require.NoError(t, WriteGamesCSV(&games, data.Games))
	require.NoError(t, WriteSimilarityCSV(&sim, data.Similarity))

	again, err := LoadCSV(&games, &sim)
	require.NoError(t, err)
	assert.Equal(t, data.Games.Titles(), again.Games.Titles())

	want, _ := data.Games.Get("Celeste")
	got, _ := again.Games.Get("Celeste")
	assert.Equal(t, want, got)

	d, ok := again.Similarity.Distance("7 Billion Humans", "Hollow Knight")
	require.True(t, ok)
	assert.InDelta(t, 0.8, d, 1e-9)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "zelda", Normalize("  Zelda "))
	assert.Equal(t, "zelda", Normalize("ZELDA"))
	assert.Equal(t, "", Normalize("   "))
}

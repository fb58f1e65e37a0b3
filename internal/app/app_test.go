package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerec/internal/dataset"
	"gamerec/internal/metrics"
	"gamerec/internal/testsupport"
	"gamerec/pkg/database"
	"gamerec/pkg/utils"
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

func testConfig(t *testing.T) *utils.Config {
	t.Helper()
	dir := t.TempDir()
	gp := filepath.Join(dir, "games.csv")
	sp := filepath.Join(dir, "sim.csv")
	require.NoError(t, os.WriteFile(gp, []byte(gamesCSV), 0o644))
	require.NoError(t, os.WriteFile(sp, []byte(simCSV), 0o644))

	cfg := &utils.Config{}
	cfg.Data.Source = "csv"
	cfg.Data.GamesPath = gp
	cfg.Data.SimilarityPath = sp
	cfg.Database.Path = filepath.Join(dir, "gamerec.db")
	cfg.Recommend.Limit = 5
	cfg.Recommend.MatchMode = "exact"
	cfg.Recommend.Sampling = "seeded"
	cfg.Recommend.DefaultGame = "7 Billion Humans"
	cfg.Recommend.WikiBaseURL = "https://en.wikipedia.org"
	return cfg
}

func TestNewFromCSV(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.DB)

	res, err := a.Service.Recommend(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "7 Billion Humans", res.Title)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Hollow Knight", res.Items[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/7_Billion_Humans", res.Source.WikiLink)
}

func TestNewFromSQLite(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, dataset.SaveToDatabase(ctx, db, testsupport.ABC(t)))
	require.NoError(t, db.Close())

	cfg.Data.Source = "sqlite"
	a, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.DB)

	res, err := a.Service.Recommend(ctx, "A")
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "B", res.Items[0].Title)
}

func TestNewFailsOnMissingFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.GamesPath = filepath.Join(t.TempDir(), "missing.csv")
	cfg.Data.LoadRetries = 0

	_, err := New(context.Background(), cfg, zerolog.Nop())
	var le *dataset.DataLoadError
	assert.ErrorAs(t, err, &le)
}

func TestLoaderRejectsUnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Source = "postgres"
	_, _, err := Loader(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRecordsInitialSnapshot(t *testing.T) {
	metrics.DatasetGames.Set(0)
	metrics.DatasetLoadedAt.Set(0)

	a, err := New(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	data := a.Store.Current()
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.DatasetGames))
	assert.Equal(t, float64(data.LoadedAt.Unix()), testutil.ToFloat64(metrics.DatasetLoadedAt))
}

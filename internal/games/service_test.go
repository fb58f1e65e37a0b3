package games

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/logging"
	"gamerec/internal/recommend"
	"gamerec/internal/resolver"
	"gamerec/internal/testsupport"
	"gamerec/pkg/models"
)

func newService(t *testing.T, data *dataset.Data, opts ...Option) *Service {
	t.Helper()
	store := dataset.NewStore(data)
	engine := recommend.NewEngine(store, recommend.WithSampler(recommend.SeededSampler{Seed: 1}))
	return NewService(store, engine, format.New(""), opts...)
}

func TestRecommendByGame(t *testing.T) {
	svc := newService(t, testsupport.ABC(t))
	ctx := logging.ContextWithRequestID(context.Background(), "req-42")

	res, err := svc.Recommend(ctx, "  a ")
	require.NoError(t, err)

	assert.Equal(t, "req-42", res.RequestID)
	assert.Equal(t, "game", res.Match)
	assert.Equal(t, "A", res.Title)
	require.NotNil(t, res.Source)
	assert.Equal(t, "A", res.Source.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/A", res.Source.WikiLink)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "B", res.Items[0].Title)
	assert.Equal(t, 1, res.Items[0].Rank)
	assert.Equal(t, "C", res.Items[1].Title)
	assert.Equal(t, format.NoPlotMarker, res.Items[1].PlotSnippet)
	assert.Equal(t, format.NoLinkMarker, res.Items[1].WikiLink)
}

func TestRecommendByGenre(t *testing.T) {
	svc := newService(t, testsupport.ABC(t))

	res, err := svc.Recommend(context.Background(), "ACTION")
	require.NoError(t, err)
	assert.Equal(t, "genre", res.Match)
	assert.Equal(t, "Action", res.Genre)
	assert.Nil(t, res.Source)
	assert.NotEmpty(t, res.RequestID)

	var titles []string
	for _, c := range res.Items {
		titles = append(titles, c.Title)
		assert.Zero(t, c.Rank)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, titles)
}

func TestRecommendDefaultGame(t *testing.T) {
	svc := newService(t, testsupport.ABC(t), WithDefaultGame("B"))

	res, err := svc.Recommend(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "B", res.Title)

	bare := newService(t, testsupport.ABC(t))
	_, err = bare.Recommend(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRecommendErrors(t *testing.T) {
	games := []models.Game{
		{Title: "A", Genre: "Action"},
		{Title: "B", Genre: "Action"},
		{Title: "Lonely", Genre: "Puzzle"},
	}
	titles := []string{"A", "B"}
	data, err := dataset.Build(games, titles, titles, [][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	svc := newService(t, data)
	ctx := context.Background()

	_, err = svc.Recommend(ctx, "nothing here")
	assert.Equal(t, CodeNoMatch, ErrorCode(err))

	_, err = svc.Recommend(ctx, "lonely")
	var noSim *recommend.NoSimilarityDataError
	require.ErrorAs(t, err, &noSim)
	assert.Equal(t, CodeNoSimilarityData, ErrorCode(err))

	_, err = svc.RecommendGame(ctx, "Zelda")
	assert.Equal(t, CodeUnknownGame, ErrorCode(err))

	_, err = svc.RecommendGenre(ctx, "Racing")
	assert.Equal(t, CodeEmptyGenre, ErrorCode(err))
}

func TestRecommendContainsMode(t *testing.T) {
	data := testsupport.Catalog(t, 12, "Action", "Puzzle")
	svc := newService(t, data, WithMatchMode(resolver.ModeContains))

	_, err := svc.Recommend(context.Background(), "game 1")
	var amb *resolver.AmbiguousQueryError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, CodeAmbiguousQuery, ErrorCode(err))
	assert.Equal(t, "ambiguous", Outcome(nil, err))

	res, err := svc.Recommend(context.Background(), "puzz")
	require.NoError(t, err)
	assert.Equal(t, "Puzzle", res.Genre)
	assert.Len(t, res.Items, recommend.DefaultLimit)
}

func TestListGames(t *testing.T) {
	svc := newService(t, testsupport.Catalog(t, 25, "Action", "Puzzle"))
	ctx := context.Background()

	page, err := svc.ListGames(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, DefaultPageSize, page.Limit)
	assert.Len(t, page.Items, DefaultPageSize)
	assert.Equal(t, "Game 01", page.Items[0].Title)

	page, err = svc.ListGames(ctx, ListQuery{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "Game 21", page.Items[0].Title)

	page, err = svc.ListGames(ctx, ListQuery{Genre: "puzzle", Q: "game 1"})
	require.NoError(t, err)
	// Game 10, 12, 14, 16, 18 are the even, Puzzle ones
	assert.Equal(t, 5, page.Total)

	page, err = svc.ListGames(ctx, ListQuery{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestGetGameAndGenres(t *testing.T) {
	svc := newService(t, testsupport.ABC(t))
	ctx := context.Background()

	card, err := svc.GetGame(ctx, " b ")
	require.NoError(t, err)
	assert.Equal(t, "B", card.Title)
	assert.Equal(t, "Dev B", card.Developer)

	_, err = svc.GetGame(ctx, "Action")
	assert.Equal(t, CodeUnknownGame, ErrorCode(err))

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dataset.GenreCount{{Name: "Action", Count: 3}}, genres)
}

func TestReloadRunsHooks(t *testing.T) {
	first := testsupport.ABC(t)
	second := testsupport.Catalog(t, 7)
	loads := 0
	loader := func(context.Context) (*dataset.Data, error) {
		loads++
		if loads == 1 {
			return first, nil
		}
		return second, nil
	}
	store, err := dataset.Open(context.Background(), loader, dataset.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)

	var seen *dataset.Data
	svc := NewService(store, recommend.NewEngine(store), format.New(""),
		WithReloadHook(func(d *dataset.Data) { seen = d }))

	data, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, data)
	assert.Same(t, second, seen)

	res, err := svc.Recommend(context.Background(), "Game 01")
	require.NoError(t, err)
	assert.Len(t, res.Items, recommend.DefaultLimit)
}

func TestReloadStaticStoreFails(t *testing.T) {
	var buf bytes.Buffer
	called := false
	svc := newService(t, testsupport.ABC(t),
		WithLogger(zerolog.New(&buf)),
		WithReloadHook(func(*dataset.Data) { called = true }))

	ctx := logging.ContextWithRequestID(context.Background(), "req-reload")
	_, err := svc.Reload(ctx)
	assert.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"request_id":"req-reload"`)
	assert.Contains(t, buf.String(), "dataset reload failed")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeDataUnavailable, ErrorCode(&dataset.DataLoadError{Source: dataset.SourceGames, Err: errors.New("x")}))
	assert.Equal(t, CodeDataUnavailable, ErrorCode(ErrNoData))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}

func TestNoSnapshot(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Recommend(context.Background(), "A")
	assert.ErrorIs(t, err, ErrNoData)
}

package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/games"
	"gamerec/internal/recommend"
	"gamerec/internal/resolver"
	"gamerec/internal/testsupport"
)

func startServer(t *testing.T, data *dataset.Data, opts ...games.Option) *Client {
	t.Helper()
	store := dataset.NewStore(data)
	engine := recommend.NewEngine(store, recommend.WithSampler(recommend.SeededSampler{Seed: 7}))
	svc := games.NewService(store, engine, format.New(""), opts...)

	lis := bufconn.Listen(1 << 20)
	gs := New(svc, zerolog.Nop())
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, conn, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return client
}

func TestRecommend(t *testing.T) {
	client := startServer(t, testsupport.ABC(t))

	res, err := client.Recommend(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "game", res.Match)
	require.NotNil(t, res.Source)
	assert.Equal(t, "A", res.Source.Title)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "B", res.Items[0].Title)
	assert.Equal(t, "C", res.Items[1].Title)
	assert.NotEmpty(t, res.RequestID)
}

func TestRecommendGenre(t *testing.T) {
	client := startServer(t, testsupport.Catalog(t, 20, "Action", "Puzzle"))

	res, err := client.Recommend(context.Background(), "puzzle")
	require.NoError(t, err)
	assert.Equal(t, "genre", res.Match)
	assert.Len(t, res.Items, recommend.DefaultLimit)
	for _, c := range res.Items {
		assert.Equal(t, "Puzzle", c.Genre)
	}
}

func TestStatusCodes(t *testing.T) {
	client := startServer(t, testsupport.Catalog(t, 12), games.WithMatchMode(resolver.ModeContains))
	ctx := context.Background()

	_, err := client.Recommend(ctx, "zelda")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.Recommend(ctx, "game 1")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "Game 10")

	_, err = client.GetGame(ctx, "  ")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetGame(ctx, "Zelda")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUnavailableWithoutData(t *testing.T) {
	client := startServer(t, nil)
	_, err := client.ListGenres(context.Background())
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGetGameAndGenres(t *testing.T) {
	client := startServer(t, testsupport.ABC(t))
	ctx := context.Background()

	card, err := client.GetGame(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "C", card.Title)
	assert.Equal(t, format.NoPlotMarker, card.PlotSnippet)

	genres, err := client.ListGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dataset.GenreCount{{Name: "Action", Count: 3}}, genres)
}

func TestToStatusNoSimilarity(t *testing.T) {
	err := toStatus(&recommend.NoSimilarityDataError{Title: "X"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

package grpcserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/games"
)

// Client calls a remote RecommendService.
type Client struct {
	conn grpc.ClientConnInterface
}

// Dial connects to addr without TLS.
func Dial(addr string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("grpc client %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Recommend(ctx context.Context, query string) (*games.Result, error) {
	out := new(games.Result)
	if err := c.conn.Invoke(ctx, fullMethod("Recommend"), &RecommendRequest{Query: query}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetGame(ctx context.Context, title string) (*format.Card, error) {
	out := new(GetGameResponse)
	if err := c.conn.Invoke(ctx, fullMethod("GetGame"), &GetGameRequest{Title: title}, out); err != nil {
		return nil, err
	}
	return out.Game, nil
}

func (c *Client) ListGenres(ctx context.Context) ([]dataset.GenreCount, error) {
	out := new(ListGenresResponse)
	if err := c.conn.Invoke(ctx, fullMethod("ListGenres"), &ListGenresRequest{}, out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

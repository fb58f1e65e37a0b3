package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/games"
)

const ServiceName = "gamerec.v1.RecommendService"

type RecommendRequest struct {
	Query string `json:"query"`
}

type GetGameRequest struct {
	Title string `json:"title"`
}

type GetGameResponse struct {
	Game *format.Card `json:"game"`
}

type ListGenresRequest struct{}

type ListGenresResponse struct {
	Genres []dataset.GenreCount `json:"genres"`
}

type RecommendServiceServer interface {
	Recommend(context.Context, *RecommendRequest) (*games.Result, error)
	GetGame(context.Context, *GetGameRequest) (*GetGameResponse, error)
	ListGenres(context.Context, *ListGenresRequest) (*ListGenresResponse, error)
}

func RegisterRecommendServiceServer(s grpc.ServiceRegistrar, srv RecommendServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecommendServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recommend", Handler: recommendHandler},
		{MethodName: "GetGame", Handler: getGameHandler},
		{MethodName: "ListGenres", Handler: listGenresHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamerec/v1/recommend",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func recommendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecommendRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendServiceServer).Recommend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Recommend")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecommendServiceServer).Recommend(ctx, req.(*RecommendRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getGameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetGameRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendServiceServer).GetGame(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetGame")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecommendServiceServer).GetGame(ctx, req.(*GetGameRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listGenresHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListGenresRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendServiceServer).ListGenres(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListGenres")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecommendServiceServer).ListGenres(ctx, req.(*ListGenresRequest))
	}
	return interceptor(ctx, in, info, handler)
}

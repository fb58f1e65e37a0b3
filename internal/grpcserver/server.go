// Package grpcserver exposes the games service over gRPC with a JSON codec.
package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamerec/internal/games"
	"gamerec/internal/logging"
	"gamerec/internal/metrics"
	"gamerec/internal/resolver"
)

type Server struct {
	Games *games.Service
}

func NewServer(svc *games.Service) *Server {
	return &Server{Games: svc}
}

func (s *Server) Recommend(ctx context.Context, req *RecommendRequest) (*games.Result, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	res, err := s.Games.Recommend(ctx, req.Query)
	metrics.RecordRecommendation(games.Outcome(res, err), "grpc")
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func (s *Server) GetGame(ctx context.Context, req *GetGameRequest) (*GetGameResponse, error) {
	if req == nil || strings.TrimSpace(req.Title) == "" {
		return nil, status.Error(codes.InvalidArgument, "title required")
	}
	card, err := s.Games.GetGame(ctx, req.Title)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetGameResponse{Game: card}, nil
}

func (s *Server) ListGenres(ctx context.Context, _ *ListGenresRequest) (*ListGenresResponse, error) {
	genres, err := s.Games.Genres(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListGenresResponse{Genres: genres}, nil
}

func toStatus(err error) error {
	switch games.ErrorCode(err) {
	case games.CodeNoMatch, games.CodeUnknownGame, games.CodeEmptyGenre:
		return status.Error(codes.NotFound, err.Error())
	case games.CodeNoSimilarityData:
		return status.Error(codes.FailedPrecondition, err.Error())
	case games.CodeAmbiguousQuery:
		var amb *resolver.AmbiguousQueryError
		if errors.As(err, &amb) {
			return status.Errorf(codes.InvalidArgument, "%s: %s", err, strings.Join(amb.Candidates, ", "))
		}
		return status.Error(codes.InvalidArgument, err.Error())
	case games.CodeDataUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// UnaryLogger assigns a request ID to each call and logs its outcome.
func UnaryLogger(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := uuid.NewString()
		ctx = logging.ContextWithRequestID(ctx, id)
		start := time.Now()

		resp, err := handler(ctx, req)

		ev := logger.Info()
		if err != nil {
			ev = logger.Warn().Err(err)
		}
		ev.Str("request_id", id).
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("latency", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}

// New returns a grpc.Server with the service registered.
func New(svc *games.Service, logger zerolog.Logger) *grpc.Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLogger(logger)))
	RegisterRecommendServiceServer(gs, NewServer(svc))
	return gs
}

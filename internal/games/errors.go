package games

import (
	"errors"

	"gamerec/internal/dataset"
	"gamerec/internal/recommend"
	"gamerec/internal/resolver"
)

// ErrNoMatch means a query matched neither a title nor a genre.
var ErrNoMatch = errors.New("no matching game or genre found")

// Error codes shared by the HTTP and gRPC transports.
const (
	CodeNoMatch          = "no_match"
	CodeUnknownGame      = "unknown_game"
	CodeNoSimilarityData = "no_similarity_data"
	CodeEmptyGenre       = "empty_genre"
	CodeAmbiguousQuery   = "ambiguous_query"
	CodeDataUnavailable  = "data_unavailable"
	CodeInternal         = "internal"
)

// ErrorCode classifies err into one of the Code* constants.
func ErrorCode(err error) string {
	var (
		unknown   *recommend.UnknownGameError
		noSim     *recommend.NoSimilarityDataError
		empty     *recommend.EmptyGenreError
		ambiguous *resolver.AmbiguousQueryError
		load      *dataset.DataLoadError
	)
	switch {
	case errors.Is(err, ErrNoMatch):
		return CodeNoMatch
	case errors.As(err, &unknown):
		return CodeUnknownGame
	case errors.As(err, &noSim):
		return CodeNoSimilarityData
	case errors.As(err, &empty):
		return CodeEmptyGenre
	case errors.As(err, &ambiguous):
		return CodeAmbiguousQuery
	case errors.As(err, &load), errors.Is(err, ErrNoData):
		return CodeDataUnavailable
	default:
		return CodeInternal
	}
}

// Outcome labels a Recommend call for metrics.
func Outcome(res *Result, err error) string {
	if err != nil {
		switch code := ErrorCode(err); code {
		case CodeNoMatch:
			return "none"
		case CodeAmbiguousQuery:
			return "ambiguous"
		default:
			return "error"
		}
	}
	return res.Match
}

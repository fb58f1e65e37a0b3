// Package recommend ranks similar games from the similarity table and picks
// genre samples from the game table.
package recommend

import (
	"cmp"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"gamerec/internal/dataset"
	"gamerec/pkg/models"
)

// DefaultLimit is the number of recommendations returned per query.
const DefaultLimit = 5

// Engine is stateless between calls; every call works on one snapshot of
// the store and is safe for concurrent use.
type Engine struct {
	store   *dataset.Store
	sampler Sampler
	limit   int
	logger  zerolog.Logger
}

type Option func(*Engine)

// WithSampler sets the genre sampling strategy. The default draws a new
// random seed on every call.
func WithSampler(s Sampler) Option {
	return func(e *Engine) { e.sampler = s }
}

// WithLimit overrides DefaultLimit. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l.With().Str("component", "recommend").Logger() }
}

func NewEngine(store *dataset.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		sampler: RandomSampler{},
		limit:   DefaultLimit,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Limit returns the maximum number of records per result.
func (e *Engine) Limit() int { return e.limit }

// ByGame ranks the games most similar to title against the current snapshot.
func (e *Engine) ByGame(title string) ([]models.RecommendationRecord, error) {
	return e.ByGameIn(e.store.Current(), title)
}

// ByGameIn ranks the games most similar to title by ascending distance.
// The self pair and empty cells are skipped; equal distances keep table
// order.
func (e *Engine) ByGameIn(data *dataset.Data, title string) ([]models.RecommendationRecord, error) {
	if _, ok := data.Games.Get(title); !ok {
		return nil, &UnknownGameError{Title: title}
	}
	column, ok := data.Similarity.Column(title)
	if !ok {
		return nil, &NoSimilarityDataError{Title: title}
	}

	candidates := make([]dataset.Neighbor, 0, len(column))
	for _, n := range column {
		if n.Title == title || math.IsNaN(n.Distance) {
			continue
		}
		candidates = append(candidates, n)
	}
	slices.SortStableFunc(candidates, func(a, b dataset.Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}

	out := make([]models.RecommendationRecord, 0, len(candidates))
	for i, n := range candidates {
		g, _ := data.Games.Get(n.Title)
		d := n.Distance
		out = append(out, models.RecommendationRecord{Rank: i + 1, Distance: &d, Game: g})
	}

	e.logger.Debug().
		Str("title", title).
		Int("returned", len(out)).
		Msg("recommended by game")
	return out, nil
}

// ByGenre picks games of genre from the current snapshot.
func (e *Engine) ByGenre(genre string) ([]models.RecommendationRecord, error) {
	return e.ByGenreIn(e.store.Current(), genre)
}

// ByGenreIn returns every game of genre when there are at most Limit of
// them, otherwise a sample of Limit games drawn by the engine's Sampler.
func (e *Engine) ByGenreIn(data *dataset.Data, genre string) ([]models.RecommendationRecord, error) {
	key := dataset.Normalize(genre)
	members := data.Games.InGenre(key)
	if len(members) == 0 {
		return nil, &EmptyGenreError{Genre: genre}
	}

	picked := members
	if len(members) > e.limit {
		idx := e.sampler.Sample(key, len(members), e.limit)
		picked = make([]models.Game, 0, len(idx))
		for _, i := range idx {
			picked = append(picked, members[i])
		}
	}

	out := make([]models.RecommendationRecord, 0, len(picked))
	for _, g := range picked {
		out = append(out, models.RecommendationRecord{Game: g})
	}

	e.logger.Debug().
		Str("genre", genre).
		Int("members", len(members)).
		Int("returned", len(out)).
		Msg("recommended by genre")
	return out, nil
}

// Package games ties the resolver, engine and formatter together for one
// query, and serves catalog browsing over the active dataset snapshot.
package games

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gamerec/internal/dataset"
	"gamerec/internal/format"
	"gamerec/internal/logging"
	"gamerec/internal/metrics"
	"gamerec/internal/recommend"
	"gamerec/internal/resolver"
)

// ErrNoData means the store holds no snapshot yet.
var ErrNoData = errors.New("dataset not loaded")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Result is one resolved and formatted recommendation query.
type Result struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`
	// Match is "game" or "genre".
	Match  string        `json:"match"`
	Title  string        `json:"title,omitempty"`
	Genre  string        `json:"genre,omitempty"`
	Source *format.Card  `json:"source,omitempty"` // the selected game, by-game only
	Items  []format.Card `json:"items"`
}

type ListQuery struct {
	Q      string // substring of the title, case-insensitive
	Genre  string
	Limit  int
	Offset int
}

type Page struct {
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Items  []format.Card `json:"items"`
}

type Service struct {
	store       *dataset.Store
	engine      *recommend.Engine
	formatter   format.Formatter
	mode        resolver.Mode
	defaultGame string
	logger      zerolog.Logger
	onReload    []func(*dataset.Data)
}

type Option func(*Service)

func WithMatchMode(m resolver.Mode) Option {
	return func(s *Service) { s.mode = m }
}

// WithDefaultGame sets the title used when a caller sends no query.
func WithDefaultGame(title string) Option {
	return func(s *Service) { s.defaultGame = title }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l.With().Str("component", "games").Logger() }
}

// WithReloadHook registers fn to run after every successful Reload.
func WithReloadHook(fn func(*dataset.Data)) Option {
	return func(s *Service) { s.onReload = append(s.onReload, fn) }
}

func NewService(store *dataset.Store, engine *recommend.Engine, formatter format.Formatter, opts ...Option) *Service {
	s := &Service{
		store:     store,
		engine:    engine,
		formatter: formatter,
		mode:      resolver.ModeExact,
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) DefaultGame() string { return s.defaultGame }

func (s *Service) snapshot() (*dataset.Data, error) {
	data := s.store.Current()
	if data == nil {
		return nil, ErrNoData
	}
	return data, nil
}

// Recommend resolves query and returns formatted recommendations. A blank
// query falls back to the default game when one is configured.
func (s *Service) Recommend(ctx context.Context, query string) (*Result, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" && s.defaultGame != "" {
		query = s.defaultGame
	}

	res, err := resolver.New(data.Games, s.mode).Match(query)
	if err != nil {
		return nil, err
	}
	log := logging.Ctx(ctx, s.logger)
	log.Debug().Str("query", query).Stringer("kind", res.Kind).Msg("query resolved")

	switch res.Kind {
	case resolver.GameMatch:
		return s.byGame(ctx, data, query, res.Title)
	case resolver.GenreMatch:
		return s.byGenre(ctx, data, query, res.Genre)
	default:
		return nil, ErrNoMatch
	}
}

// RecommendGame ranks games similar to title, matched exactly after
// normalization.
func (s *Service) RecommendGame(ctx context.Context, title string) (*Result, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	res := resolver.New(data.Games, resolver.ModeExact).Resolve(title)
	if res.Kind != resolver.GameMatch {
		return nil, &recommend.UnknownGameError{Title: title}
	}
	return s.byGame(ctx, data, title, res.Title)
}

func (s *Service) RecommendGenre(ctx context.Context, genre string) (*Result, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.byGenre(ctx, data, genre, genre)
}

func (s *Service) byGame(ctx context.Context, data *dataset.Data, query, title string) (*Result, error) {
	records, err := s.engine.ByGameIn(data, title)
	if err != nil {
		return nil, err
	}
	g, _ := data.Games.Get(title)
	src := s.formatter.Card(g, 0)
	return &Result{
		RequestID: requestID(ctx),
		Query:     query,
		Match:     resolver.GameMatch.String(),
		Title:     title,
		Source:    &src,
		Items:     s.formatter.Format(records),
	}, nil
}

func (s *Service) byGenre(ctx context.Context, data *dataset.Data, query, genre string) (*Result, error) {
	records, err := s.engine.ByGenreIn(data, genre)
	if err != nil {
		return nil, err
	}
	if label, ok := data.Games.Genre(dataset.Normalize(genre)); ok {
		genre = label
	}
	return &Result{
		RequestID: requestID(ctx),
		Query:     query,
		Match:     resolver.GenreMatch.String(),
		Genre:     genre,
		Items:     s.formatter.Format(records),
	}, nil
}

func requestID(ctx context.Context) string {
	if id := logging.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// ListGames pages through the game table in table order.
func (s *Service) ListGames(_ context.Context, q ListQuery) (*Page, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	needle := dataset.Normalize(q.Q)
	genre := dataset.Normalize(q.Genre)

	var matched []int
	for i := 0; i < data.Games.Len(); i++ {
		if needle != "" && !strings.Contains(data.Games.TitleKey(i), needle) {
			continue
		}
		if genre != "" && dataset.Normalize(data.Games.At(i).Genre) != genre {
			continue
		}
		matched = append(matched, i)
	}

	page := &Page{Total: len(matched), Limit: q.Limit, Offset: q.Offset, Items: []format.Card{}}
	if q.Offset >= len(matched) {
		return page, nil
	}
	end := min(q.Offset+q.Limit, len(matched))
	for _, i := range matched[q.Offset:end] {
		page.Items = append(page.Items, s.formatter.Card(data.Games.At(i), 0))
	}
	return page, nil
}

// GetGame returns the card of the game whose title normalizes to title.
func (s *Service) GetGame(_ context.Context, title string) (*format.Card, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	res := resolver.New(data.Games, resolver.ModeExact).Resolve(title)
	if res.Kind != resolver.GameMatch {
		return nil, &recommend.UnknownGameError{Title: title}
	}
	g, _ := data.Games.Get(res.Title)
	card := s.formatter.Card(g, 0)
	return &card, nil
}

// Genres lists genres in first-seen order with member counts.
func (s *Service) Genres(_ context.Context) ([]dataset.GenreCount, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return data.Games.Genres(), nil
}

// Reload swaps in a fresh dataset and runs the reload hooks. A failed
// reload leaves the previous snapshot active.
func (s *Service) Reload(ctx context.Context) (*dataset.Data, error) {
	data, err := s.store.Reload(ctx)
	if err != nil {
		metrics.RecordReload(false, 0, 0)
		log := logging.Ctx(ctx, s.logger)
		log.Error().Err(err).Msg("dataset reload failed")
		return nil, err
	}
	metrics.RecordReload(true, data.Games.Len(), float64(data.LoadedAt.Unix()))
	for _, fn := range s.onReload {
		fn(data)
	}
	return data, nil
}

// Package resolver matches free-form queries against the titles and genres
// of a dataset snapshot.
package resolver

import (
	"fmt"
	"strings"

	"gamerec/internal/dataset"
)

// Kind tags a ResolvedQuery.
type Kind int

const (
	NoMatch Kind = iota
	GameMatch
	GenreMatch
)

func (k Kind) String() string {
	switch k {
	case GameMatch:
		return "game"
	case GenreMatch:
		return "genre"
	default:
		return "none"
	}
}

// ResolvedQuery is the outcome of matching a query. Title is set for
// GameMatch, Genre for GenreMatch.
type ResolvedQuery struct {
	Kind  Kind
	Title string
	Genre string
}

// Mode selects how queries are compared with titles and genres.
type Mode string

const (
	// ModeExact compares the normalized query for equality.
	ModeExact Mode = "exact"
	// ModeContains falls back to substring matching when no exact match
	// exists. Several hits yield an AmbiguousQueryError.
	ModeContains Mode = "contains"
)

// maxCandidates caps the candidate list carried by AmbiguousQueryError.
const maxCandidates = 10

// AmbiguousQueryError is returned in contains mode when a query is a
// substring of more than one title, or of no title and several genres.
type AmbiguousQueryError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousQueryError) Error() string {
	return fmt.Sprintf("query %q matches %d candidates", e.Query, len(e.Candidates))
}

// Resolver resolves queries against one GameTable.
type Resolver struct {
	games *dataset.GameTable
	mode  Mode
}

func New(games *dataset.GameTable, mode Mode) *Resolver {
	if mode == "" {
		mode = ModeExact
	}
	return &Resolver{games: games, mode: mode}
}

// Resolve performs exact-normalized matching. A title match wins over a
// genre match of the same string.
func (r *Resolver) Resolve(query string) ResolvedQuery {
	key := dataset.Normalize(query)
	if key == "" {
		return ResolvedQuery{Kind: NoMatch}
	}

	if titles := r.games.TitlesForKey(key); len(titles) > 0 {
		return ResolvedQuery{Kind: GameMatch, Title: pickTitle(titles, query)}
	}
	if label, ok := r.games.Genre(key); ok {
		return ResolvedQuery{Kind: GenreMatch, Genre: label}
	}
	return ResolvedQuery{Kind: NoMatch}
}

// pickTitle chooses among titles sharing one normalized form: the one
// spelled exactly like the query, else the first in table order.
func pickTitle(titles []string, query string) string {
	q := strings.TrimSpace(query)
	for _, t := range titles {
		if t == q {
			return t
		}
	}
	return titles[0]
}

// Match resolves query in the resolver's mode.
func (r *Resolver) Match(query string) (ResolvedQuery, error) {
	res := r.Resolve(query)
	if res.Kind != NoMatch || r.mode != ModeContains {
		return res, nil
	}
	return r.contains(query)
}

func (r *Resolver) contains(query string) (ResolvedQuery, error) {
	key := dataset.Normalize(query)
	if key == "" {
		return ResolvedQuery{Kind: NoMatch}, nil
	}

	var titles []string
	for i := 0; i < r.games.Len(); i++ {
		if strings.Contains(r.games.TitleKey(i), key) {
			titles = append(titles, r.games.At(i).Title)
		}
	}
	switch {
	case len(titles) == 1:
		return ResolvedQuery{Kind: GameMatch, Title: titles[0]}, nil
	case len(titles) > 1:
		return ResolvedQuery{}, ambiguous(query, titles)
	}

	var genres []string
	for _, gk := range r.games.GenreKeys() {
		if strings.Contains(gk, key) {
			label, _ := r.games.Genre(gk)
			genres = append(genres, label)
		}
	}
	switch {
	case len(genres) == 1:
		return ResolvedQuery{Kind: GenreMatch, Genre: genres[0]}, nil
	case len(genres) > 1:
		return ResolvedQuery{}, ambiguous(query, genres)
	}
	return ResolvedQuery{Kind: NoMatch}, nil
}

func ambiguous(query string, candidates []string) error {
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return &AmbiguousQueryError{Query: query, Candidates: candidates}
}

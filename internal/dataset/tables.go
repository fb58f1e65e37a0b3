// Package dataset loads the game metadata and similarity tables and keeps
// them as immutable in-memory snapshots.
package dataset

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"gamerec/pkg/models"
)

// Normalize is the lookup form of titles and genres: surrounding whitespace
// trimmed and Unicode case folded.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// GenreCount is a genre label with the number of games carrying it.
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GameTable is the game metadata table indexed by Title.
type GameTable struct {
	games     []models.Game
	titleKeys []string         // derived: normalized title per row
	byTitle   map[string]int   // exact title -> row
	byKey     map[string][]int // normalized title -> rows, table order

	genreKeys  []string // normalized genres, first-seen order
	genreLabel map[string]string
	byGenre    map[string][]int
}

func newGameTable(games []models.Game) (*GameTable, error) {
	t := &GameTable{
		games:      make([]models.Game, 0, len(games)),
		titleKeys:  make([]string, 0, len(games)),
		byTitle:    make(map[string]int, len(games)),
		byKey:      make(map[string][]int, len(games)),
		genreLabel: make(map[string]string),
		byGenre:    make(map[string][]int),
	}

	for _, g := range games {
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" {
			return nil, ErrEmptyTitle
		}
		if _, dup := t.byTitle[g.Title]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateTitle, g.Title)
		}

		idx := len(t.games)
		key := Normalize(g.Title)
		t.games = append(t.games, g)
		t.titleKeys = append(t.titleKeys, key)
		t.byTitle[g.Title] = idx
		t.byKey[key] = append(t.byKey[key], idx)

		gk := Normalize(g.Genre)
		if gk == "" {
			continue
		}
		if _, seen := t.genreLabel[gk]; !seen {
			t.genreLabel[gk] = strings.TrimSpace(g.Genre)
			t.genreKeys = append(t.genreKeys, gk)
		}
		t.byGenre[gk] = append(t.byGenre[gk], idx)
	}
	return t, nil
}

// Len returns the number of games.
func (t *GameTable) Len() int { return len(t.games) }

// At returns the game at row i in table order.
func (t *GameTable) At(i int) models.Game { return t.games[i] }

// TitleKey returns the normalized title of row i.
func (t *GameTable) TitleKey(i int) string { return t.titleKeys[i] }

// Get looks a game up by its exact Title.
func (t *GameTable) Get(title string) (models.Game, bool) {
	idx, ok := t.byTitle[title]
	if !ok {
		return models.Game{}, false
	}
	return t.games[idx], true
}

// TitlesForKey returns the titles whose normalized form equals key, in
// table order.
func (t *GameTable) TitlesForKey(key string) []string {
	rows := t.byKey[key]
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, t.games[r].Title)
	}
	return out
}

// Titles returns every title in table order.
func (t *GameTable) Titles() []string {
	out := make([]string, len(t.games))
	for i, g := range t.games {
		out[i] = g.Title
	}
	return out
}

// Genre returns the display label of a normalized genre key.
func (t *GameTable) Genre(key string) (string, bool) {
	label, ok := t.genreLabel[key]
	return label, ok
}

// GenreKeys returns the normalized genres in first-seen order.
func (t *GameTable) GenreKeys() []string { return slices.Clone(t.genreKeys) }

// Genres lists every genre with its member count in first-seen order.
func (t *GameTable) Genres() []GenreCount {
	out := make([]GenreCount, 0, len(t.genreKeys))
	for _, k := range t.genreKeys {
		out = append(out, GenreCount{Name: t.genreLabel[k], Count: len(t.byGenre[k])})
	}
	return out
}

// InGenre returns the games whose normalized genre equals key, in table order.
func (t *GameTable) InGenre(key string) []models.Game {
	rows := t.byGenre[key]
	out := make([]models.Game, 0, len(rows))
	for _, r := range rows {
		out = append(out, t.games[r])
	}
	return out
}

// Neighbor is one cell of a similarity column.
type Neighbor struct {
	Title    string
	Distance float64
}

// SimilarityTable is the square (Title, Title) -> distance table. Lower
// distances mean more similar games. Missing cells hold NaN.
type SimilarityTable struct {
	rowTitles []string
	colTitles []string
	rows      map[string]int
	cols      map[string]int
	dist      [][]float64 // dist[row][col]
}

func newSimilarityTable(rowTitles, colTitles []string, matrix [][]float64) (*SimilarityTable, error) {
	if len(matrix) != len(rowTitles) {
		return nil, fmt.Errorf("%w: %d row titles for %d rows", ErrNotSquare, len(rowTitles), len(matrix))
	}
	if len(rowTitles) != len(colTitles) {
		return nil, fmt.Errorf("%w: %d rows, %d columns", ErrNotSquare, len(rowTitles), len(colTitles))
	}

	s := &SimilarityTable{
		rowTitles: make([]string, len(rowTitles)),
		colTitles: make([]string, len(colTitles)),
		rows:      make(map[string]int, len(rowTitles)),
		cols:      make(map[string]int, len(colTitles)),
		dist:      make([][]float64, len(matrix)),
	}
	for i, title := range rowTitles {
		title = strings.TrimSpace(title)
		if _, dup := s.rows[title]; dup {
			return nil, fmt.Errorf("%w %q in similarity rows", ErrDuplicateTitle, title)
		}
		s.rowTitles[i] = title
		s.rows[title] = i
	}
	for i, title := range colTitles {
		title = strings.TrimSpace(title)
		if _, dup := s.cols[title]; dup {
			return nil, fmt.Errorf("%w %q in similarity columns", ErrDuplicateTitle, title)
		}
		if _, ok := s.rows[title]; !ok {
			return nil, fmt.Errorf("%w: column %q has no matching row", ErrNotSquare, title)
		}
		s.colTitles[i] = title
		s.cols[title] = i
	}
	for i, row := range matrix {
		if len(row) != len(colTitles) {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrNotSquare, s.rowTitles[i], len(row), len(colTitles))
		}
		s.dist[i] = slices.Clone(row)
	}
	return s, nil
}

// Len returns the number of titles on each axis.
func (s *SimilarityTable) Len() int { return len(s.rowTitles) }

// RowTitles returns the row titles in table order.
func (s *SimilarityTable) RowTitles() []string { return slices.Clone(s.rowTitles) }

// ColumnTitles returns the column titles in table order.
func (s *SimilarityTable) ColumnTitles() []string { return slices.Clone(s.colTitles) }

// HasColumn reports whether title is a column of the table.
func (s *SimilarityTable) HasColumn(title string) bool {
	_, ok := s.cols[title]
	return ok
}

// Distance returns the cell (row, col). ok is false if either title is
// absent or the cell is empty.
func (s *SimilarityTable) Distance(row, col string) (float64, bool) {
	r, ok := s.rows[row]
	if !ok {
		return 0, false
	}
	c, ok := s.cols[col]
	if !ok {
		return 0, false
	}
	d := s.dist[r][c]
	return d, !math.IsNaN(d)
}

// Column returns the similarity column of title in row order.
func (s *SimilarityTable) Column(title string) ([]Neighbor, bool) {
	c, ok := s.cols[title]
	if !ok {
		return nil, false
	}
	out := make([]Neighbor, len(s.rowTitles))
	for r, rowTitle := range s.rowTitles {
		out[r] = Neighbor{Title: rowTitle, Distance: s.dist[r][c]}
	}
	return out, true
}

// Data is one immutable snapshot of both tables.
type Data struct {
	Games      *GameTable
	Similarity *SimilarityTable
	LoadedAt   time.Time
}

// Build validates raw table contents and assembles a Data snapshot. Every
// similarity title must correspond to exactly one game record.
func Build(games []models.Game, simRows, simCols []string, matrix [][]float64) (*Data, error) {
	gt, err := newGameTable(games)
	if err != nil {
		return nil, loadErr(SourceGames, err)
	}
	st, err := newSimilarityTable(simRows, simCols, matrix)
	if err != nil {
		return nil, loadErr(SourceSimilarity, err)
	}
	for _, title := range st.rowTitles {
		if _, ok := gt.byTitle[title]; !ok {
			return nil, loadErr(SourceSimilarity, fmt.Errorf("%w: %q", ErrUnknownTitle, title))
		}
	}
	return &Data{Games: gt, Similarity: st, LoadedAt: time.Now()}, nil
}

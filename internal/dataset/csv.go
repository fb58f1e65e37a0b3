package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gamerec/pkg/models"
)

// Header aliases of the games table. The first alias is the one written by
// WriteGamesCSV.
var (
	colTitle     = []string{"title"}
	colGenre     = []string{"genre"}
	colDeveloper = []string{"developer"}
	colPublisher = []string{"publisher"}
	colJapan     = []string{"released in: japan", "japan"}
	colNA        = []string{"north america"}
	colRest      = []string{"rest of countries", "rest of world"}
	colPlot      = []string{"plots", "plot"}
	colLink      = []string{"link"}
)

var gamesHeader = []string{
	"Title", "Genre", "Developer", "Publisher",
	"Released in: Japan", "North America", "Rest of countries",
	"Plots", "Link",
}

// LoadFiles opens both CSV files and loads them with LoadCSV.
func LoadFiles(gamesPath, similarityPath string) (*Data, error) {
	gf, err := os.Open(gamesPath)
	if err != nil {
		return nil, loadErr(SourceGames, err)
	}
	defer gf.Close()

	sf, err := os.Open(similarityPath)
	if err != nil {
		return nil, loadErr(SourceSimilarity, err)
	}
	defer sf.Close()

	return LoadCSV(gf, sf)
}

// LoadCSV reads the games table and the similarity matrix.
//
// The games table needs a Title column; other columns are optional and an
// unnamed leading index column is ignored. The similarity matrix carries
// titles in its header row and in its first column.
func LoadCSV(games, similarity io.Reader) (*Data, error) {
	gs, err := readGames(games)
	if err != nil {
		return nil, loadErr(SourceGames, err)
	}
	rows, cols, matrix, err := readSimilarity(similarity)
	if err != nil {
		return nil, loadErr(SourceSimilarity, err)
	}
	return Build(gs, rows, cols, matrix)
}

func readGames(src io.Reader) ([]models.Game, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if _, ok := lookup(header, colTitle); !ok {
		return nil, ErrMissingTitleColumn
	}

	var out []models.Game
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		title := valueAt(header, row, colTitle)
		if title == "" {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w on line %d", ErrEmptyTitle, line)
		}
		out = append(out, models.Game{
			Title:     title,
			Genre:     valueAt(header, row, colGenre),
			Developer: valueAt(header, row, colDeveloper),
			Publisher: valueAt(header, row, colPublisher),
			Releases: models.Releases{
				Japan:        valueAt(header, row, colJapan),
				NorthAmerica: valueAt(header, row, colNA),
				RestOfWorld:  valueAt(header, row, colRest),
			},
			Plot: valueAt(header, row, colPlot),
			Link: valueAt(header, row, colLink),
		})
	}
	return out, nil
}

func readSimilarity(src io.Reader) (rows, cols []string, matrix [][]float64, err error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil, ErrMissingTitleColumn
		}
		return nil, nil, nil, err
	}
	if len(head) < 2 {
		return nil, nil, nil, ErrMissingTitleColumn
	}
	cols = make([]string, 0, len(head)-1)
	for _, c := range head[1:] {
		cols = append(cols, strings.TrimSpace(c))
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		key := strings.TrimSpace(rec[0])
		if key == "" {
			return nil, nil, nil, fmt.Errorf("%w: row %d", ErrMissingTitleColumn, len(rows)+1)
		}
		vals := make([]float64, 0, len(rec)-1)
		for _, cell := range rec[1:] {
			v, err := parseDistance(cell)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%w: row %q: %v", ErrInvalidData, key, err)
			}
			vals = append(vals, v)
		}
		rows = append(rows, key)
		matrix = append(matrix, vals)
	}
	return rows, cols, matrix, nil
}

func parseDistance(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(raw, 64)
}

func formatDistance(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingTitleColumn
		}
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		key := strings.TrimSpace(strings.ToLower(name))
		if key == "" {
			continue
		}
		if _, seen := header[key]; !seen {
			header[key] = idx
		}
	}
	return header, nil
}

func lookup(header map[string]int, aliases []string) (int, bool) {
	for _, a := range aliases {
		if idx, ok := header[a]; ok {
			return idx, true
		}
	}
	return 0, false
}

func valueAt(header map[string]int, row []string, aliases []string) string {
	idx, ok := lookup(header, aliases)
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// WriteGamesCSV writes the games table in the column layout LoadCSV reads.
func WriteGamesCSV(dst io.Writer, t *GameTable) error {
	w := csv.NewWriter(dst)
	if err := w.Write(gamesHeader); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		g := t.At(i)
		if err := w.Write([]string{
			g.Title,
			g.Genre,
			g.Developer,
			g.Publisher,
			g.Releases.Japan,
			g.Releases.NorthAmerica,
			g.Releases.RestOfWorld,
			g.Plot,
			g.Link,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSimilarityCSV writes the similarity matrix with an unnamed key column.
func WriteSimilarityCSV(dst io.Writer, s *SimilarityTable) error {
	w := csv.NewWriter(dst)
	if err := w.Write(append([]string{""}, s.colTitles...)); err != nil {
		return err
	}
	for r, title := range s.rowTitles {
		rec := make([]string, 0, len(s.colTitles)+1)
		rec = append(rec, title)
		for _, v := range s.dist[r] {
			rec = append(rec, formatDistance(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

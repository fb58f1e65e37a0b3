package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"gamerec/pkg/models"
)

// SaveToDatabase replaces the stored dataset with data in one transaction.
// Table order is kept in the pos columns so a reload sees the same order.
func SaveToDatabase(ctx context.Context, db *sql.DB, data *Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM similarity`,
		`DELETE FROM similarity_rows`,
		`DELETE FROM similarity_cols`,
		`DELETE FROM games`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	if err := saveGames(ctx, tx, data.Games); err != nil {
		return err
	}
	if err := saveSimilarity(ctx, tx, data.Similarity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func saveGames(ctx context.Context, tx *sql.Tx, t *GameTable) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (pos, title, genre, developer, publisher,
		                   released_japan, released_north_america, released_rest, plot, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare games: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		g := t.At(i)
		if _, err := stmt.ExecContext(
			ctx,
			i,
			g.Title,
			nullString(g.Genre),
			nullString(g.Developer),
			nullString(g.Publisher),
			nullString(g.Releases.Japan),
			nullString(g.Releases.NorthAmerica),
			nullString(g.Releases.RestOfWorld),
			nullString(g.Plot),
			nullString(g.Link),
		); err != nil {
			return fmt.Errorf("insert game %q: %w", g.Title, err)
		}
	}
	return nil
}

func saveSimilarity(ctx context.Context, tx *sql.Tx, s *SimilarityTable) error {
	for _, axis := range []struct {
		table  string
		titles []string
	}{
		{"similarity_rows", s.rowTitles},
		{"similarity_cols", s.colTitles},
	} {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+axis.table+` (pos, title) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", axis.table, err)
		}
		for pos, title := range axis.titles {
			if _, err := stmt.ExecContext(ctx, pos, title); err != nil {
				stmt.Close()
				return fmt.Errorf("insert %s %q: %w", axis.table, title, err)
			}
		}
		stmt.Close()
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO similarity (row_pos, col_pos, distance) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare similarity: %w", err)
	}
	defer stmt.Close()

	for r, row := range s.dist {
		for c, d := range row {
			var v sql.NullFloat64
			if !math.IsNaN(d) {
				v = sql.NullFloat64{Float64: d, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, r, c, v); err != nil {
				return fmt.Errorf("insert similarity (%d,%d): %w", r, c, err)
			}
		}
	}
	return nil
}

// LoadFromDatabase reads a dataset previously written by SaveToDatabase.
func LoadFromDatabase(ctx context.Context, db *sql.DB) (*Data, error) {
	games, err := loadGames(ctx, db)
	if err != nil {
		return nil, loadErr(SourceDatabase, err)
	}
	rowTitles, err := loadAxis(ctx, db, "similarity_rows")
	if err != nil {
		return nil, loadErr(SourceDatabase, err)
	}
	colTitles, err := loadAxis(ctx, db, "similarity_cols")
	if err != nil {
		return nil, loadErr(SourceDatabase, err)
	}

	matrix := make([][]float64, len(rowTitles))
	for i := range matrix {
		matrix[i] = make([]float64, len(colTitles))
		for j := range matrix[i] {
			matrix[i][j] = math.NaN()
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT row_pos, col_pos, distance FROM similarity`)
	if err != nil {
		return nil, loadErr(SourceDatabase, fmt.Errorf("query similarity: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r, c int
			d    sql.NullFloat64
		)
		if err := rows.Scan(&r, &c, &d); err != nil {
			return nil, loadErr(SourceDatabase, fmt.Errorf("scan similarity: %w", err))
		}
		if r < 0 || r >= len(matrix) || c < 0 || c >= len(colTitles) {
			return nil, loadErr(SourceDatabase, fmt.Errorf("%w: cell (%d,%d) out of range", ErrNotSquare, r, c))
		}
		if d.Valid {
			matrix[r][c] = d.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(SourceDatabase, fmt.Errorf("rows err: %w", err))
	}

	return Build(games, rowTitles, colTitles, matrix)
}

func loadGames(ctx context.Context, db *sql.DB) ([]models.Game, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT title, genre, developer, publisher,
		       released_japan, released_north_america, released_rest, plot, link
		FROM games
		ORDER BY pos
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []models.Game
	for rows.Next() {
		var (
			g                           models.Game
			genre, developer, publisher sql.NullString
			japan, northAmerica, rest   sql.NullString
			plot, link                  sql.NullString
		)
		if err := rows.Scan(&g.Title, &genre, &developer, &publisher,
			&japan, &northAmerica, &rest, &plot, &link); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Genre = genre.String
		g.Developer = developer.String
		g.Publisher = publisher.String
		g.Releases = models.Releases{
			Japan:        japan.String,
			NorthAmerica: northAmerica.String,
			RestOfWorld:  rest.String,
		}
		g.Plot = plot.String
		g.Link = link.String
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func loadAxis(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT title FROM `+table+` ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

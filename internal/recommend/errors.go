package recommend

import "fmt"

// UnknownGameError means the title is not in the game table.
type UnknownGameError struct {
	Title string
}

func (e *UnknownGameError) Error() string {
	return fmt.Sprintf("game %q not found", e.Title)
}

// NoSimilarityDataError means the game exists but has no similarity column,
// so no recommendations can be ranked for it.
type NoSimilarityDataError struct {
	Title string
}

func (e *NoSimilarityDataError) Error() string {
	return fmt.Sprintf("game %q has no similarity data", e.Title)
}

// EmptyGenreError means no game carries the genre.
type EmptyGenreError struct {
	Genre string
}

func (e *EmptyGenreError) Error() string {
	return fmt.Sprintf("no games found for genre %q", e.Genre)
}

package models

// Releases holds the free-form regional release strings of a game.
// Any of them may be empty when the source has no value.
type Releases struct {
	Japan        string `json:"japan,omitempty"`
	NorthAmerica string `json:"north_america,omitempty"`
	RestOfWorld  string `json:"rest_of_world,omitempty"`
}

// Game is one row of the game metadata table.
//
// Title is the primary key of the dataset. Optional columns are kept as
// empty strings when absent.
type Game struct {
	Title     string   `json:"title"`               // unique, non-empty
	Genre     string   `json:"genre"`               // single genre label
	Developer string   `json:"developer,omitempty"` // studio
	Publisher string   `json:"publisher,omitempty"` // publisher
	Releases  Releases `json:"releases"`            // regional release dates
	Plot      string   `json:"plot,omitempty"`      // full plot text, may be empty
	Link      string   `json:"link,omitempty"`      // relative wiki path, e.g. /wiki/Celeste_(video_game)
}

// RecommendationRecord is one entry produced by the recommendation engine.
//
// Rank and Distance are only set on the by-game path; genre results are not
// ranked against a source game and carry Rank 0.
type RecommendationRecord struct {
	Rank     int      `json:"rank,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Game     Game     `json:"game"`
}

package sync

import (
	"time"

	"github.com/google/uuid"

	"gamerec/internal/dataset"
)

const (
	EventWelcome         = "welcome"
	EventDatasetReloaded = "dataset.reloaded"
)

// Event is pushed to every connected client as one JSON line.
type Event struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Transport string     `json:"transport,omitempty"` // welcome only
	Games     int        `json:"games,omitempty"`
	Genres    int        `json:"genres,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	At        time.Time  `json:"at"`
}

func DatasetReloaded(data *dataset.Data) Event {
	loadedAt := data.LoadedAt
	return Event{
		ID:       uuid.NewString(),
		Type:     EventDatasetReloaded,
		Games:    data.Games.Len(),
		Genres:   len(data.Games.GenreKeys()),
		LoadedAt: &loadedAt,
		At:       time.Now().UTC(),
	}
}

func welcome(transport string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventWelcome,
		Transport: transport,
		At:        time.Now().UTC(),
	}
}

// Package format turns recommendation records into display-ready cards.
// It owns plot truncation and the fallbacks for missing plot and link.
package format

import (
	"strings"
	"unicode/utf8"

	"gamerec/pkg/models"
)

const (
	NoPlotMarker = "No plot information available."
	NoLinkMarker = "No link available."

	DefaultWikiBaseURL  = "https://en.wikipedia.org"
	DefaultSnippetWidth = 600
)

// Card is the presentation-agnostic projection of one game.
type Card struct {
	Rank        int             `json:"rank,omitempty"`
	Title       string          `json:"title"`
	Genre       string          `json:"genre"`
	Developer   string          `json:"developer"`
	Publisher   string          `json:"publisher"`
	Releases    models.Releases `json:"releases"`
	PlotSnippet string          `json:"plot_snippet"`
	WikiLink    string          `json:"wiki_link"`
}

type Formatter struct {
	WikiBaseURL  string
	SnippetWidth int
}

func New(wikiBaseURL string) Formatter {
	if wikiBaseURL == "" {
		wikiBaseURL = DefaultWikiBaseURL
	}
	return Formatter{WikiBaseURL: wikiBaseURL, SnippetWidth: DefaultSnippetWidth}
}

// Format maps records to cards, keeping their order.
func (f Formatter) Format(records []models.RecommendationRecord) []Card {
	out := make([]Card, 0, len(records))
	for _, r := range records {
		out = append(out, f.Card(r.Game, r.Rank))
	}
	return out
}

func (f Formatter) Card(g models.Game, rank int) Card {
	return Card{
		Rank:        rank,
		Title:       g.Title,
		Genre:       g.Genre,
		Developer:   g.Developer,
		Publisher:   g.Publisher,
		Releases:    g.Releases,
		PlotSnippet: f.Snippet(g.Plot),
		WikiLink:    f.WikiLink(g.Link),
	}
}

// Snippet returns the first word-wrapped line of plot no longer than the
// snippet width. A first word longer than the width is cut at the width.
func (f Formatter) Snippet(plot string) string {
	width := f.SnippetWidth
	if width <= 0 {
		width = DefaultSnippetWidth
	}

	words := strings.Fields(plot)
	if len(words) == 0 {
		return NoPlotMarker
	}
	if utf8.RuneCountInString(words[0]) > width {
		return string([]rune(words[0])[:width])
	}

	var b strings.Builder
	b.WriteString(words[0])
	n := utf8.RuneCountInString(words[0])
	for _, w := range words[1:] {
		wn := utf8.RuneCountInString(w)
		if n+1+wn > width {
			break
		}
		b.WriteByte(' ')
		b.WriteString(w)
		n += 1 + wn
	}
	return b.String()
}

// WikiLink resolves a relative wiki path against the base URL. Absolute
// links are returned unchanged.
func (f Formatter) WikiLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return NoLinkMarker
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base := f.WikiBaseURL
	if base == "" {
		base = DefaultWikiBaseURL
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return strings.TrimRight(base, "/") + link
}

package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerec/pkg/models"
)

func TestSnippetMissingPlot(t *testing.T) {
	f := New("")
	assert.Equal(t, NoPlotMarker, f.Snippet(""))
	assert.Equal(t, NoPlotMarker, f.Snippet(" \n\t "))
}

func TestSnippetShortPlotCollapsesWhitespace(t *testing.T) {
	f := New("")
	assert.Equal(t, "A hero rises. Again.", f.Snippet("  A hero\nrises.   Again. "))
}

func TestSnippetLongPlotEndsAtWordBoundary(t *testing.T) {
	f := New("")
	words := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		words = append(words, "word"+strings.Repeat("x", i%7))
	}
	plot := strings.Join(words, " ")
	require.Greater(t, len(plot), DefaultSnippetWidth)

	got := f.Snippet(plot)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultSnippetWidth)
	assert.True(t, strings.HasPrefix(plot, got))
	// the next character of the plot is the separator, so the cut is between words
	assert.Equal(t, byte(' '), plot[len(got)])
}

func TestSnippetOversizedWord(t *testing.T) {
	f := Formatter{SnippetWidth: 10}
	assert.Equal(t, "abcdefghij", f.Snippet("abcdefghijklmnop rest"))
	assert.Equal(t, "ab cd", f.Snippet("ab cd efghijkl"))
}

func TestSnippetCountsRunes(t *testing.T) {
	f := Formatter{SnippetWidth: 5}
	assert.Equal(t, "ééé é", f.Snippet("ééé é ééé"))
}

func TestWikiLink(t *testing.T) {
	f := New("https://en.wikipedia.org/")
	assert.Equal(t, "https://en.wikipedia.org/wiki/Celeste", f.WikiLink("/wiki/Celeste"))
	assert.Equal(t, "https://en.wikipedia.org/wiki/Celeste", f.WikiLink("wiki/Celeste"))
	assert.Equal(t, "https://example.com/x", f.WikiLink("https://example.com/x"))
	assert.Equal(t, NoLinkMarker, f.WikiLink(""))
	assert.Equal(t, NoLinkMarker, f.WikiLink("  "))
}

func TestFormat(t *testing.T) {
	d := 0.5
	records := []models.RecommendationRecord{
		{Rank: 1, Distance: &d, Game: models.Game{
			Title: "Celeste", Genre: "Platform", Developer: "MMG", Publisher: "MMG",
			Releases: models.Releases{NorthAmerica: "2018"},
			Plot:     "Climb.", Link: "/wiki/Celeste",
		}},
		{Game: models.Game{Title: "Unknown", Genre: "Platform"}},
	}

	cards := New("").Format(records)
	require.Len(t, cards, 2)
	assert.Equal(t, Card{
		Rank: 1, Title: "Celeste", Genre: "Platform", Developer: "MMG", Publisher: "MMG",
		Releases:    models.Releases{NorthAmerica: "2018"},
		PlotSnippet: "Climb.", WikiLink: "https://en.wikipedia.org/wiki/Celeste",
	}, cards[0])
	assert.Equal(t, NoPlotMarker, cards[1].PlotSnippet)
	assert.Equal(t, NoLinkMarker, cards[1].WikiLink)
	assert.Zero(t, cards[1].Rank)
}

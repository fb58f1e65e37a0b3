package games

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gamerec/internal/metrics"
	"gamerec/internal/resolver"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/games", h.listGames)                             // GET /games?q=&genre=&limit=&offset=
	rg.GET("/games/*title", h.getGame)                        // GET /games/:title
	rg.GET("/genres", h.listGenres)                           // GET /genres
	rg.GET("/recommendations", h.recommend)                   // GET /recommendations?q= | ?game=
	rg.GET("/recommendations/game/*title", h.recommendGame)   // GET /recommendations/game/:title
	rg.GET("/recommendations/genre/*genre", h.recommendGenre) // GET /recommendations/genre/:genre
}

func (h *Handler) listGames(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Genre:  c.Query("genre"),
		Limit:  parseInt(c.Query("limit"), DefaultPageSize),
		Offset: parseInt(c.Query("offset"), 0),
	}
	page, err := h.Service.ListGames(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getGame(c *gin.Context) {
	title := wildcard(c, "title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required", "code": "bad_request"})
		return
	}
	card, err := h.Service.GetGame(c.Request.Context(), title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *Handler) listGenres(c *gin.Context) {
	genres, err := h.Service.Genres(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(genres), "items": genres})
}

// recommend accepts the query as q, or as game for links of the form
// /?game=<title>. With neither present the default game is used.
func (h *Handler) recommend(c *gin.Context) {
	query, ok := c.GetQuery("q")
	if !ok {
		query = c.Query("game")
	}
	res, err := h.Service.Recommend(c.Request.Context(), query)
	metrics.RecordRecommendation(Outcome(res, err), "http")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) recommendGame(c *gin.Context) {
	title := wildcard(c, "title")
	res, err := h.Service.RecommendGame(c.Request.Context(), title)
	metrics.RecordRecommendation(Outcome(res, err), "http")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) recommendGenre(c *gin.Context) {
	res, err := h.Service.RecommendGenre(c.Request.Context(), wildcard(c, "genre"))
	metrics.RecordRecommendation(Outcome(res, err), "http")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// wildcard returns a catch-all path parameter without its leading slash,
// so names like "Fate/stay night" survive routing.
func wildcard(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}

func writeError(c *gin.Context, err error) {
	code := ErrorCode(err)
	body := gin.H{"error": err.Error(), "code": code}

	status := http.StatusInternalServerError
	switch code {
	case CodeNoMatch, CodeUnknownGame, CodeNoSimilarityData, CodeEmptyGenre:
		status = http.StatusNotFound
	case CodeAmbiguousQuery:
		status = http.StatusConflict
		var amb *resolver.AmbiguousQueryError
		if errors.As(err, &amb) {
			body["candidates"] = amb.Candidates
		}
	case CodeDataUnavailable:
		status = http.StatusServiceUnavailable
	default:
		body["error"] = "internal error"
	}
	c.JSON(status, body)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

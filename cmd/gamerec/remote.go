package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"gamerec/internal/dataset"
	"gamerec/internal/games"
)

// httpBackend talks to cmd/api-server.
type httpBackend struct {
	baseURL string
	client  *http.Client
}

func newHTTPBackend(baseURL string) *httpBackend {
	return &httpBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type apiError struct {
	Message    string   `json:"error"`
	Code       string   `json:"code"`
	Candidates []string `json:"candidates"`
}

func (e *apiError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%s (candidates: %s)", e.Message, strings.Join(e.Candidates, ", "))
	}
	return e.Message
}

func (b *httpBackend) Recommend(ctx context.Context, query string) (*games.Result, error) {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	var out games.Result
	if err := b.get(ctx, "/recommendations", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) ListGames(ctx context.Context, q games.ListQuery) (*games.Page, error) {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	var out games.Page
	if err := b.get(ctx, "/games", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) Genres(ctx context.Context) ([]dataset.GenreCount, error) {
	var out struct {
		Items []dataset.GenreCount `json:"items"`
	}
	if err := b.get(ctx, "/genres", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *httpBackend) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := b.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		apiErr := &apiError{}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			return fmt.Errorf("%s: %s", path, resp.Status)
		}
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// websocketURL maps an http(s) base URL to the ws(s) URL of path.
func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

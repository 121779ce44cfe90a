// Package ingest fetches a season's league game logs from the stats provider
// and loads them into storage, skipping rows that already exist.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is the stats-API client for league game logs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a stats-API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GameLogRow is one team's box score row as the provider returns it.
type GameLogRow struct {
	GameID    string  `json:"GAME_ID"`
	TeamID    int     `json:"TEAM_ID"`
	GameDate  string  `json:"GAME_DATE"` // YYYY-MM-DD
	Matchup   string  `json:"MATCHUP"`
	WL        string  `json:"WL"`
	Pts       int     `json:"PTS"`
	FGM       int     `json:"FGM"`
	FGA       int     `json:"FGA"`
	FGPct     float64 `json:"FG_PCT"`
	FG3M      int     `json:"FG3M"`
	FG3A      int     `json:"FG3A"`
	FG3Pct    float64 `json:"FG3_PCT"`
	FTM       int     `json:"FTM"`
	FTA       int     `json:"FTA"`
	FTPct     float64 `json:"FT_PCT"`
	OReb      int     `json:"OREB"`
	DReb      int     `json:"DREB"`
	Reb       int     `json:"REB"`
	Ast       int     `json:"AST"`
	Stl       int     `json:"STL"`
	Blk       int     `json:"BLK"`
	Tov       int     `json:"TOV"`
	PF        int     `json:"PF"`
	PlusMinus float64 `json:"PLUS_MINUS"`
}

// FetchLeagueGameLogs fetches every team's game log rows for a season.
func (c *Client) FetchLeagueGameLogs(ctx context.Context, season string) ([]GameLogRow, error) {
	body, err := c.get(ctx, "leaguegamelog", map[string]string{"season": season})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league game logs: %w", err)
	}

	var rows []GameLogRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode league game logs: %w", err)
	}

	return rows, nil
}

// get performs a GET request with retry and exponential backoff.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying stats API request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()

		if c.apiKey != "" {
			req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("stats API returned status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("stats API returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, fmt.Errorf("stats API request failed after %d retries: %w", c.maxRetries, lastErr)
}

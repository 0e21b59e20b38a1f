package steamapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/samuel/internal/model"
)

// DefaultBaseURL is the public Steam Web API host
const DefaultBaseURL = "https://api.steampowered.com"

const ownedGamesEndpoint = "/IPlayerService/GetOwnedGames/v0001/"

// maxBodySize caps how much of a response is read; large libraries are a few MB
const maxBodySize = 32 << 20

// Client is an HTTP client for the Steam Web API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Web API client. A zero timeout disables the
// client-side deadline; the caller's context still applies.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type ownedGamesResponse struct {
	Response *ownedGamesData `json:"response"`
}

type ownedGamesData struct {
	GameCount int          `json:"game_count"`
	Games     []model.Game `json:"games"`
}

// GetOwnedGames fetches the complete owned-games list of the account,
// including names and total playtime.
func (c *Client) GetOwnedGames(ctx context.Context, creds model.Credentials) ([]model.Game, error) {
	query := url.Values{}
	query.Set("key", creds.APIKey)
	query.Set("steamid", creds.AccountID)
	query.Set("include_appinfo", "true")
	query.Set("include_played_free_games", "true")
	query.Set("format", "json")

	var result ownedGamesResponse
	if err := c.get(ctx, ownedGamesEndpoint, query, &result); err != nil {
		return nil, err
	}

	if result.Response == nil {
		return nil, fmt.Errorf("%w: missing response object", model.ErrProtocol)
	}

	// A private profile also yields "response":{}, which can't be told apart
	// from an empty library.
	games := result.Response.Games
	if games == nil {
		games = []model.Game{}
	}

	snapshot := model.Snapshot{Games: games}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	return games, nil
}

// get performs a GET request and decodes the JSON body into result
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	u := c.baseURL + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", model.ErrTransientFetch, redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("web api request",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", model.ErrTransientFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		hint := ""
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			hint = " (check API_KEY)"
		}
		return fmt.Errorf("%w: HTTP %d%s", model.ErrTransientFetch, resp.StatusCode, hint)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", model.ErrProtocol, err)
	}
	return nil
}

// redact strips the query string, which carries the API key, from URL errors
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			u.RawQuery = ""
			return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
		}
	}
	return err
}

// Package api is the HTTP client for the game server's account endpoints:
// login, registration, leaderboard, and player stats.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Entry is one leaderboard row.
type Entry struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
}

// Stats is the authenticated player's progress summary.
type Stats struct {
	Level       int `json:"level"`
	XP          int `json:"xp"`
	GamesPlayed int `json:"gamesPlayed"`
	GamesWon    int `json:"gamesWon"`
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Client talks to the server's /auth endpoints. Token is optional and only
// needed for PlayerStats.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// WithToken returns a copy of the client that authenticates its requests.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Login exchanges credentials for an access token.
func (c *Client) Login(username, password string) (string, error) {
	var resp loginResponse
	err := c.post("/auth/login", credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login: server returned no token")
	}
	return resp.AccessToken, nil
}

// Register creates an account and returns the server's confirmation text.
func (c *Client) Register(username, email, password string) (string, error) {
	var resp messageResponse
	err := c.post("/auth/register", credentials{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Leaderboard fetches the public ranking.
func (c *Client) Leaderboard() ([]Entry, error) {
	var entries []Entry
	if err := c.get("/auth/leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PlayerStats fetches the authenticated player's progress.
func (c *Client) PlayerStats() (*Stats, error) {
	var stats Stats
	if err := c.get("/auth/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LeaderboardURL is the shareable address of the ranking page.
func (c *Client) LeaderboardURL() string {
	return c.base + "/leaderboard"
}

func (c *Client) post(path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var serverErr messageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &serverErr) == nil && serverErr.Message != "" {
			return fmt.Errorf("%s: %s", req.URL.Path, serverErr.Message)
		}
		return fmt.Errorf("%s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

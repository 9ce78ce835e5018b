package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	ErrNotConfigured = errors.New("gemini api key is not configured")
	ErrUpstream      = errors.New("gemini request failed")
	ErrEmptyReply    = errors.New("gemini returned no candidates")
)

// Client is a minimal generateContent client for the Gemini REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	const op = "clients.gemini.GenerateContent"

	if c.apiKey == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s: %w: status %d: %s", op, ErrUpstream, resp.StatusCode, msg)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyReply)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

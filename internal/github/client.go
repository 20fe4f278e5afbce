// Package github is a minimal client for the GitHub repository
// contents API, used as a versioned blob store: each file is an opaque
// base64 blob and its SHA acts as an optimistic-concurrency token.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the requested file does not exist
	// on the configured branch.
	ErrNotFound = errors.New("file not found")

	// ErrVersionConflict is returned when a write carried a stale SHA:
	// another writer updated the file after the SHA was issued.
	ErrVersionConflict = errors.New("version conflict")
)

// StatusError reports an unexpected HTTP status from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	Token   string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	branch     string
	token      string
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		token:      cfg.Token,
		logger:     logger,
	}
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, url.PathEscape(path))
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
}

// Get fetches a file and returns its decoded content together with the
// SHA version token. Returns ErrNotFound if the file is absent.
func (c *Client) Get(ctx context.Context, path string) ([]byte, string, error) {
	reqURL := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var payload struct {
		SHA     string `json:"sha"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	// The API wraps base64 content at 60 columns.
	raw := strings.ReplaceAll(payload.Content, "\n", "")
	content, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}

	return content, payload.SHA, nil
}

// Put creates or updates a file. When version is non-empty it is sent
// as the expected SHA precondition; a stale value yields
// ErrVersionConflict. Returns the SHA of the new blob.
func (c *Client) Put(ctx context.Context, path string, content []byte, version, message string) (string, error) {
	reqBody := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     version,
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to put %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 409 for SHA mismatch, 422 when the file already exists and
		// no SHA was supplied.
		c.logger.Debug("write precondition failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return "", ErrVersionConflict
	case http.StatusNotFound:
		return "", ErrNotFound
	default:
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var payload struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	return payload.Content.SHA, nil
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

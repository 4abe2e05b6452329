package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/commentbank/internal/entities"
	"github.com/mrlokans/commentbank/internal/importers"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client talks to the REST API of a remote commentbank server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewClient creates a client for baseURL, e.g. "https://comments.school.example".
// An empty token sends no Authorization header, which suits servers running
// with AUTH_MODE=none.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryDelay: initialRetryDelay,
	}
}

// WithHTTPClient swaps the underlying transport.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// ValidateToken checks the configured token against GET /api/auth/me.
func (c *Client) ValidateToken(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ListComments fetches a subject's comments; an empty kind returns all.
// Reads are retried on rate limits and server errors.
func (c *Client) ListComments(ctx context.Context, subjectID uint, kind entities.CommentKind) ([]entities.Comment, error) {
	path := fmt.Sprintf("/api/subjects/%d/comments", subjectID)
	if kind != "" {
		path += "?" + url.Values{"kind": {string(kind)}}.Encode()
	}

	var comments []entities.Comment
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		comments, lastErr = c.listOnce(ctx, path)
		if lastErr == nil {
			return comments, nil
		}
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) listOnce(ctx context.Context, path string) ([]entities.Comment, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidToken
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, decodeRejection(resp)
	}

	var comments []entities.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return comments, nil
}

// CreateComment posts one comment to the subject named by req.OwnerID. Any
// non-2xx answer comes back as *importers.RejectionError carrying the
// server's error body. Creates are never retried so a comment is stored at
// most once.
func (c *Client) CreateComment(ctx context.Context, req importers.CreateCommentRequest) error {
	body, err := json.Marshal(map[string]any{
		"comment": req.Comment,
		"rating":  req.Rating,
	})
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/subjects/"+url.PathEscape(req.OwnerID)+"/comments", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeRejection(resp)
}

// SaveFunc plugs the client into the bulk import pipeline.
func (c *Client) SaveFunc() importers.SaveFunc {
	return c.CreateComment
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// decodeRejection reads the {"error","details","message"} body. Bodies
// that are not JSON end up in Message so the reason is never lost.
func decodeRejection(resp *http.Response) *importers.RejectionError {
	rejection := &importers.RejectionError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return rejection
	}

	var body struct {
		Error   string `json:"error"`
		Details any    `json:"details"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		rejection.Message = strings.TrimSpace(string(raw))
		return rejection
	}

	rejection.Err = body.Error
	rejection.Message = body.Message
	switch details := body.Details.(type) {
	case nil:
	case string:
		rejection.Details = details
	default:
		if encoded, err := json.Marshal(details); err == nil {
			rejection.Details = string(encoded)
		}
	}
	return rejection
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

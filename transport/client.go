// Package transport is the REST/JSON boundary towards the backend.
// It maps HTTP failures onto the error taxonomy so callers never see
// status codes, only sentinels.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"teamchat/domain"
	errs "teamchat/errors"
)

// Client talks to the chat backend. Every call carries a bounded
// timeout through its context and the underlying http.Client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// pageResponse is the paginated history envelope. NextCursor is server
// provided because the cursor is a composite token, not the message id.
type pageResponse struct {
	Messages   []domain.Message `json:"messages"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

type feedResponse struct {
	Items []domain.NotificationItem `json:"items"`
}

// errorResponse is the backend's error envelope. Code is the machine
// readable part; Message is for humans only.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetMessages fetches one page of history, newest first.
func (c *Client) GetMessages(ctx context.Context, chatID string, cursor *string, limit int) ([]domain.Message, *string, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != nil {
		query.Set("cursor", *cursor)
	}
	endpoint := fmt.Sprintf("%s/messages/%s?%s", c.baseURL, url.PathEscape(chatID), query.Encode())

	var page pageResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, nil, err
	}
	return page.Messages, page.NextCursor, nil
}

// RetryMessage asks the backend to re-attempt delivery and returns the
// updated message. Concurrent retries for the same message surface as
// ErrRetryInProgress.
func (c *Client) RetryMessage(ctx context.Context, cmd domain.RetryCommand) (domain.Message, error) {
	body, err := json.Marshal(map[string]string{
		"messageId": cmd.MessageID,
		"chatId":    cmd.ChatID,
		"userId":    cmd.UserID,
	})
	if err != nil {
		return domain.Message{}, err
	}
	endpoint := fmt.Sprintf("%s/messages/%s/retry", c.baseURL, url.PathEscape(cmd.MessageID))

	var updated domain.Message
	if err = c.do(ctx, http.MethodPost, endpoint, body, &updated); err != nil {
		return domain.Message{}, err
	}
	return updated, nil
}

// ListChats returns the caller's accessible chats.
func (c *Client) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/groups", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetFeed returns recent notifications in whatever order the backend
// chose. Sorting is the consumer's job.
func (c *Client) GetFeed(ctx context.Context, unreadOnly bool) ([]domain.NotificationItem, error) {
	endpoint := fmt.Sprintf("%s/notifications/feed?unreadOnly=%t", c.baseURL, unreadOnly)
	var feed feedResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &feed); err != nil {
		return nil, err
	}
	return feed.Items, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
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
		// Timeouts and connection failures are all the same to callers.
		c.log.Warn("Request failed", "method", method, "endpoint", endpoint, "error", err)
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mapError turns an HTTP failure into a taxonomy sentinel, preferring
// the envelope's code over the raw status.
func (c *Client) mapError(resp *http.Response) error {
	var envelope errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	switch envelope.Code {
	case "not_found":
		return errs.ErrNotFound
	case "forbidden":
		return errs.ErrForbidden
	case "invalid_cursor":
		return errs.ErrInvalidCursor
	case "retry_in_progress":
		return errs.ErrRetryInProgress
	case "retry_limit_exceeded":
		return errs.ErrRetryLimitExceeded
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return errs.ErrForbidden
	case http.StatusGone:
		return errs.ErrInvalidCursor
	case http.StatusConflict:
		return errs.ErrRetryInProgress
	case http.StatusUnprocessableEntity:
		return errs.ErrRetryLimitExceeded
	}
	return fmt.Errorf("%w: status %d", errs.ErrUnavailable, resp.StatusCode)
}

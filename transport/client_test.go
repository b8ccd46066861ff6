package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"teamchat/domain"
	errs "teamchat/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token", 2*time.Second, logs.GetLoggerFromLevel(slog.LevelError))
}

func TestClient_GetMessages(t *testing.T) {
	req := require.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/c1", r.URL.Path)
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		require.Equal(t, "0000000000000000042:abc", r.URL.Query().Get("cursor"))
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(pageResponse{
			Messages:   []domain.Message{{ID: "m1", ChatID: "c1", Text: "hello"}},
			NextCursor: lo.ToPtr("0000000000000000041:def"),
		})
	})

	messages, cursor, err := client.GetMessages(context.Background(), "c1", lo.ToPtr("0000000000000000042:abc"), 20)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("hello", messages[0].Text)
	req.NotNil(cursor)
	req.Equal("0000000000000000041:def", *cursor)
}

func TestClient_RetryMessage(t *testing.T) {
	req := require.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/messages/m10/retry", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "m10", body["messageId"])
		require.Equal(t, "c1", body["chatId"])
		require.Equal(t, "u1", body["userId"])

		_ = json.NewEncoder(w).Encode(domain.Message{ID: "m10", ChatID: "c1", RetryCount: 3})
	})

	updated, err := client.RetryMessage(context.Background(), domain.RetryCommand{
		MessageID: "m10", ChatID: "c1", UserID: "u1",
	})
	req.NoError(err)
	req.Equal(3, updated.RetryCount)
	req.Equal(domain.SentOK, updated.State())
}

func TestClient_GetFeed(t *testing.T) {
	req := require.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications/feed", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("unreadOnly"))
		_ = json.NewEncoder(w).Encode(feedResponse{
			Items: []domain.NotificationItem{{ID: "n1", Title: "Practice moved"}},
		})
	})

	items, err := client.GetFeed(context.Background(), true)
	req.NoError(err)
	req.Len(items, 1)
	req.Equal("n1", items[0].ID)
}

func TestClient_MapsErrorEnvelopes(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		code     string
		expected error
	}{
		{"not found", http.StatusNotFound, "not_found", errs.ErrNotFound},
		{"forbidden", http.StatusForbidden, "forbidden", errs.ErrForbidden},
		{"invalid cursor", http.StatusGone, "invalid_cursor", errs.ErrInvalidCursor},
		{"retry in progress", http.StatusConflict, "retry_in_progress", errs.ErrRetryInProgress},
		{"retry limit", http.StatusUnprocessableEntity, "retry_limit_exceeded", errs.ErrRetryLimitExceeded},
		{"server failure", http.StatusInternalServerError, "", errs.ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(errorResponse{Code: tc.code, Message: "boom"})
			})

			_, _, err := client.GetMessages(context.Background(), "c1", nil, 20)
			req.ErrorIs(err, tc.expected)
		})
	}
}

func TestClient_MapsStatusWithoutEnvelope(t *testing.T) {
	req := require.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plain text not found", http.StatusNotFound)
	})

	_, err := client.ListChats(context.Background())
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestClient_TimeoutIsUnavailable(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "", 20*time.Millisecond, logs.GetLoggerFromLevel(slog.LevelError))

	_, err := client.GetFeed(context.Background(), false)
	req.ErrorIs(err, errs.ErrUnavailable)
}

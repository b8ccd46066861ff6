package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"teamchat/domain"
	errs "teamchat/errors"
)

type pageBody struct {
	Messages   []domain.Message `json:"messages"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

type feedBody struct {
	Items []domain.NotificationItem `json:"items"`
}

// handleMessages serves one page of history, newest first.
// A chat outside the caller's accessible set is indistinguishable from
// a chat that does not exist.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chatId")
	userID := callerID(r)

	if !s.accessible(userID, chatID) {
		respondWithError(w, http.StatusNotFound, "not_found", "chat not found")
		return
	}

	limit := s.pageLimitMax
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		// Clamp, never reject: callers asking for too much get the max.
		if parsed < limit {
			limit = parsed
		}
	}

	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}

	messages, nextCursor, err := s.messages.Page(chatID, cursor, limit)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCursor) {
			respondWithError(w, http.StatusGone, "invalid_cursor", "cursor is stale or malformed")
			return
		}
		s.log.Error("Page read failed", "chat", chatID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "unavailable", "storage failure")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	respondWithJSON(w, http.StatusOK, pageBody{Messages: messages, NextCursor: nextCursor})
}

type retryRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	ChatID    string `json:"chatId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
}

// handleRetry re-attempts delivery of a failed message.
// Guarantees: at most one retry in flight per message, retryCount
// incremented exactly once per accepted retry regardless of outcome,
// and the message always lands back in SENT_OK or FAILED.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	messageID := r.PathValue("messageId")

	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.MessageID != messageID {
		respondWithError(w, http.StatusBadRequest, "bad_request", "message id mismatch")
		return
	}

	userID := callerID(r)
	if req.UserID != userID {
		respondWithError(w, http.StatusForbidden, "forbidden", "cannot retry on behalf of another user")
		return
	}
	if !s.accessible(userID, req.ChatID) {
		respondWithError(w, http.StatusNotFound, "not_found", "chat not found")
		return
	}

	// The guard comes before the read. A competing retry must never see
	// the stored message until the winner's write has landed, otherwise
	// its increment would start from a stale count.
	s.mu.Lock()
	if _, inFlight := s.retrying[messageID]; inFlight {
		s.mu.Unlock()
		respondWithError(w, http.StatusConflict, "retry_in_progress", "a retry is already in flight")
		return
	}
	s.retrying[messageID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.retrying, messageID)
		s.mu.Unlock()
	}()

	message, err := s.messages.Get(req.ChatID, messageID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "not_found", "message not found")
			return
		}
		s.log.Error("Message read failed", "message", messageID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "unavailable", "storage failure")
		return
	}

	if message.SenderID == nil || *message.SenderID != userID {
		respondWithError(w, http.StatusForbidden, "forbidden", "caller is not the sender")
		return
	}
	if !message.FailedToSend {
		// Retrying a delivered message is a no-op, not an error.
		respondWithJSON(w, http.StatusOK, message)
		return
	}
	if message.RetryCount >= s.maxRetries {
		respondWithError(w, http.StatusUnprocessableEntity, "retry_limit_exceeded", "too many delivery attempts")
		return
	}

	message.RetryCount++
	deliveryErr := s.deliverer.Deliver(r.Context(), message)
	message.FailedToSend = deliveryErr != nil

	if err = s.messages.Update(message); err != nil {
		s.log.Error("Retry state write failed", "message", messageID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "unavailable", "storage failure")
		return
	}

	s.log.Info("Retry resolved",
		"message", messageID, "attempts", message.RetryCount, "delivered", !message.FailedToSend)
	respondWithJSON(w, http.StatusOK, message)
}

// handleGroups lists the chats accessible to the caller.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	chats := s.roster.ChatsFor(callerID(r))
	if chats == nil {
		chats = []domain.Chat{}
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// handleFeed serves the notification feed. Order is insertion order,
// clients are expected to sort by SentAt themselves.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
	items := s.notifications.Recent(unreadOnly)
	if items == nil {
		items = []domain.NotificationItem{}
	}
	respondWithJSON(w, http.StatusOK, feedBody{Items: items})
}

func (s *Server) accessible(userID, chatID string) bool {
	for _, chat := range s.roster.ChatsFor(userID) {
		if chat.ID == chatID {
			return true
		}
	}
	return false
}

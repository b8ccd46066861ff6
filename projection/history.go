// Package projection builds local views from backend reads.
// Handles ordering, deduplication, and completeness tracking.
// Does not perform network calls or interact with UI directly.
package projection

import (
	"fmt"

	"github.com/samber/lo"

	"teamchat/domain"
)

// History is the assembled timeline of one chat, oldest first.
// Pages must be applied in cursor order, one at a time; History is not
// safe for concurrent use. Applying a later page before an earlier one
// is rejected instead of silently creating a gap.
type History struct {
	ChatID   string
	messages []domain.Message
	seen     map[string]struct{}
	complete bool
}

func NewHistory(chatID string) *History {
	return &History{
		ChatID: chatID,
		seen:   make(map[string]struct{}),
	}
}

// Apply prepends one page as returned by the backend (newest first).
// An empty page marks the history as complete. A page containing an id
// already applied means the caller broke cursor ordering.
func (h *History) Apply(page []domain.Message) error {
	if h.complete {
		return fmt.Errorf("history for chat %s is already complete", h.ChatID)
	}
	if len(page) == 0 {
		h.complete = true
		return nil
	}
	for _, m := range page {
		if _, ok := h.seen[m.ID]; ok {
			return fmt.Errorf("message %s applied twice, pages out of order", m.ID)
		}
	}
	for _, m := range page {
		h.seen[m.ID] = struct{}{}
	}
	// Pages arrive newest first, the timeline is kept oldest first.
	h.messages = append(lo.Reverse(append([]domain.Message{}, page...)), h.messages...)
	return nil
}

// Messages returns the timeline oldest first.
func (h *History) Messages() []domain.Message {
	return h.messages
}

// Complete reports whether the oldest page has been reached.
func (h *History) Complete() bool {
	return h.complete
}

func (h *History) Len() int {
	return len(h.messages)
}

package repositories

import (
	"sync"

	"teamchat/domain"
)

type INotificationRepository interface {
	Add(item domain.NotificationItem)
	MarkRead(id string)
	Recent(unreadOnly bool) []domain.NotificationItem
}

// NotificationRepository is the in-memory source of the feed endpoint.
// Read state lives server-side; the delivery subsystem never mutates it.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []domain.NotificationItem
	read  map[string]struct{}
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{read: make(map[string]struct{})}
}

func (r *NotificationRepository) Add(item domain.NotificationItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

// MarkRead belongs to the read-receipt collaborator, not to the feed
// consumers. Exposed here so operators and tests can exercise the
// unreadOnly filter.
func (r *NotificationRepository) MarkRead(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read[id] = struct{}{}
}

// Recent returns the feed in insertion order. Sorting by SentAt is a
// client-side post-condition, the server makes no ordering promise.
func (r *NotificationRepository) Recent(unreadOnly bool) []domain.NotificationItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.NotificationItem, 0, len(r.items))
	for _, item := range r.items {
		if unreadOnly {
			if _, ok := r.read[item.ID]; ok {
				continue
			}
		}
		result = append(result, item)
	}
	return result
}

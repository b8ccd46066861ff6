package projection

import (
	"sort"
	"sync"
	"time"

	"teamchat/domain"
)

// Feed is the merged notification view fed by the poller.
// Merging is last-write-wins per id, rendering order is SentAt
// descending. Dismissal is local only and survives later polls.
type Feed struct {
	mu         sync.Mutex
	items      map[string]domain.NotificationItem
	dismissed  map[string]struct{}
	fetchedAt  time.Time
	unreadOnly bool
	staleness  time.Duration
}

func NewFeed(staleness time.Duration) *Feed {
	return &Feed{
		items:     make(map[string]domain.NotificationItem),
		dismissed: make(map[string]struct{}),
		staleness: staleness,
	}
}

// Merge folds one poll result into the view. A notification seen in an
// earlier poll is replaced by the later copy. Changing the unreadOnly
// filter rebuilds the view from scratch, otherwise items excluded by
// the new filter would linger from the previous merge. Dismissals are
// kept across the rebuild.
func (f *Feed) Merge(now time.Time, unreadOnly bool, items []domain.NotificationItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if unreadOnly != f.unreadOnly {
		f.items = make(map[string]domain.NotificationItem)
		f.unreadOnly = unreadOnly
	}
	for _, item := range items {
		f.items[item.ID] = item
	}
	f.fetchedAt = now
}

// Items returns the non-dismissed notifications, most recent first.
// Ties on SentAt are broken by id so the order is stable across calls.
func (f *Feed) Items() []domain.NotificationItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.NotificationItem, 0, len(f.items))
	for id, item := range f.items {
		if _, ok := f.dismissed[id]; ok {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SentAt.Equal(result[j].SentAt) {
			return result[i].SentAt.After(result[j].SentAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// Dismiss hides a notification locally. The backend is never told.
func (f *Feed) Dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed[id] = struct{}{}
}

// Fresh reports whether the last merge is still within the staleness
// window and was fetched with the same unreadOnly filter, in which case
// a re-render must not trigger a new fetch. A view built under a
// different filter is never fresh, whatever its age.
func (f *Feed) Fresh(now time.Time, unreadOnly bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchedAt.IsZero() || unreadOnly != f.unreadOnly {
		return false
	}
	return now.Sub(f.fetchedAt) < f.staleness
}

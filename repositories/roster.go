package repositories

import (
	"sort"
	"sync"

	"teamchat/domain"
)

type IRosterRepository interface {
	ChatsFor(userID string) []domain.Chat
	AddChat(chat domain.Chat)
}

// RosterRepository holds chat metadata in memory.
// The accessible set of a user is exactly the chats they participate in;
// handlers must never serve a chat outside that set.
type RosterRepository struct {
	mu    sync.RWMutex
	chats map[string]domain.Chat
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{chats: make(map[string]domain.Chat)}
}

func (r *RosterRepository) AddChat(chat domain.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chat.ID] = chat
}

// ChatsFor returns the chats the user is a participant of, in a stable
// order (sorted by id) so repeated listings render identically.
func (r *RosterRepository) ChatsFor(userID string) []domain.Chat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var accessible []domain.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			accessible = append(accessible, chat)
		}
	}
	sort.Slice(accessible, func(i, j int) bool {
		return accessible[i].ID < accessible[j].ID
	})
	return accessible
}

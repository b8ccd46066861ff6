package services

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"teamchat/contract"
	"teamchat/domain"
	errs "teamchat/errors"
)

type IChatService interface {
	FetchPage(ctx context.Context, cmd domain.FetchPageCommand) ([]domain.Message, *string, error)
	Retry(ctx context.Context, cmd domain.RetryCommand) (domain.Message, error)
	ResolveChat(ctx context.Context, chatID string) (domain.Chat, error)
}

// ChatService enforces the concurrency discipline the backend expects:
// at most one page fetch in flight per (chat, cursor) and at most one
// retry in flight per message. Fetches are coalesced, retries rejected.
type ChatService struct {
	log          *slog.Logger
	api          contract.IChatAPI
	pageLimitMax int

	fetches singleflight.Group

	mu       sync.Mutex
	retrying map[string]struct{}
}

func NewChatService(log *slog.Logger, api contract.IChatAPI, pageLimitMax int) *ChatService {
	return &ChatService{
		log:          log,
		api:          api,
		pageLimitMax: pageLimitMax,
		retrying:     make(map[string]struct{}),
	}
}

type page struct {
	messages   []domain.Message
	nextCursor *string
}

// FetchPage returns one page of history, newest first. The limit is
// clamped to the configured maximum. Rapid duplicate requests for the
// same position share a single network call; page application order is
// the caller's responsibility (see projection.History).
func (s *ChatService) FetchPage(ctx context.Context, cmd domain.FetchPageCommand) ([]domain.Message, *string, error) {
	limit := cmd.Limit
	if limit <= 0 || limit > s.pageLimitMax {
		limit = s.pageLimitMax
	}

	key := cmd.ChatID
	if cmd.Cursor != nil {
		key += ":" + *cmd.Cursor
	}
	result, err, shared := s.fetches.Do(key, func() (any, error) {
		messages, nextCursor, err := s.api.GetMessages(ctx, cmd.ChatID, cmd.Cursor, limit)
		if err != nil {
			return nil, err
		}
		return page{messages: messages, nextCursor: nextCursor}, nil
	})
	if shared {
		s.log.Debug("Coalesced duplicate page fetch", "chat", cmd.ChatID)
	}
	if err != nil {
		return nil, nil, err
	}
	p := result.(page)
	return p.messages, p.nextCursor, nil
}

// Retry re-attempts delivery of a failed message. A second call for the
// same message while the first is outstanding fails immediately with
// ErrRetryInProgress and never reaches the network.
func (s *ChatService) Retry(ctx context.Context, cmd domain.RetryCommand) (domain.Message, error) {
	s.mu.Lock()
	if _, inFlight := s.retrying[cmd.MessageID]; inFlight {
		s.mu.Unlock()
		return domain.Message{}, errs.ErrRetryInProgress
	}
	s.retrying[cmd.MessageID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.retrying, cmd.MessageID)
		s.mu.Unlock()
	}()

	updated, err := s.api.RetryMessage(ctx, cmd)
	if err != nil {
		return domain.Message{}, err
	}
	return updated, nil
}

// ResolveChat produces the metadata of one chat by scanning the
// caller's accessible chat list. A chat outside that list, whether it
// exists globally or not, is ErrNotFound. Linear on purpose: a caller's
// list is tens of chats, not millions.
func (s *ChatService) ResolveChat(ctx context.Context, chatID string) (domain.Chat, error) {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return domain.Chat{}, err
	}
	for _, chat := range chats {
		if chat.ID == chatID {
			return chat, nil
		}
	}
	return domain.Chat{}, errs.ErrNotFound
}

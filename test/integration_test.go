package test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"teamchat/auth"
	"teamchat/domain"
	errs "teamchat/errors"
	"teamchat/infrastructure/rest"
	"teamchat/projection"
	"teamchat/repositories"
	"teamchat/runtime/workers"
	"teamchat/services"
	"teamchat/transport"
)

type config struct {
	PageLimit       int           `envconfig:"PAGE_LIMIT" default:"20"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" default:"5"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"2s"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"15ms"`
	PollTimeout     time.Duration `envconfig:"POLL_TIMEOUT" default:"500ms"`
	StalenessWindow time.Duration `envconfig:"STALENESS_WINDOW" default:"30s"`
}

type stack struct {
	cfg           config
	service       *services.ChatService
	client        *transport.Client
	messages      repositories.MessageRepository
	notifications *repositories.NotificationRepository
	feed          *projection.Feed
	poller        *workers.FeedPollerWorker
}

var secret = []byte("integration_test_secret")

// newStack boots the whole subsystem against a real badger store and a
// real HTTP server, authenticated as the given user.
func newStack(t *testing.T, userID string, deliver rest.Deliverer) *stack {
	t.Helper()
	req := require.New(t)

	var cfg config
	req.NoError(envconfig.Process("teamchat", &cfg))

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelError)
	messages := repositories.NewMessageRepository(db, log)
	roster := repositories.NewRosterRepository()
	notifications := repositories.NewNotificationRepository()

	roster.AddChat(domain.Chat{
		ID:           "c1",
		Title:        "General",
		Participants: []string{"u-alice", "u-bob"},
	})

	server := rest.NewServer(log, messages, roster, notifications, deliver,
		secret, cfg.PageLimit, cfg.MaxRetries)
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	token, err := auth.GenerateToken(userID, secret, time.Hour)
	req.NoError(err)

	client := transport.NewClient(httpServer.URL, token, cfg.RequestTimeout, log)
	feed := projection.NewFeed(cfg.StalenessWindow)

	return &stack{
		cfg:           cfg,
		service:       services.NewChatService(log, client, cfg.PageLimit),
		client:        client,
		messages:      messages,
		notifications: notifications,
		feed:          feed,
		poller: workers.NewFeedPollerWorker(log, client, feed, nil,
			cfg.PollInterval, cfg.PollTimeout, false),
	}
}

func alwaysDeliver() rest.Deliverer {
	return rest.DelivererFunc(func(context.Context, domain.Message) error { return nil })
}

func seedMessages(t *testing.T, messages repositories.MessageRepository, n int) []domain.Message {
	t.Helper()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stored := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		message := domain.Message{
			ID:        uuid.NewString(),
			ChatID:    "c1",
			SenderID:  lo.ToPtr("u-alice"),
			Sender:    "Alice",
			Text:      fmt.Sprintf("message %d", i+1),
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, messages.Store(message))
		stored = append(stored, message)
	}
	return stored
}

// Walking the whole history through the service rebuilds the exact
// insertion order with no duplicates and no gaps.
func TestIntegration_HistoryCrawl(t *testing.T) {
	req := require.New(t)
	s := newStack(t, "u-alice", alwaysDeliver())
	stored := seedMessages(t, s.messages, 25)

	history := projection.NewHistory("c1")
	var cursor *string
	for !history.Complete() {
		page, next, err := s.service.FetchPage(context.Background(), domain.FetchPageCommand{
			ChatID: "c1",
			Cursor: cursor,
			Limit:  s.cfg.PageLimit,
		})
		req.NoError(err)
		req.NoError(history.Apply(page))
		cursor = next
	}

	req.Equal(len(stored), history.Len())
	for i, message := range history.Messages() {
		req.Equal(stored[i].ID, message.ID)
	}
}

func TestIntegration_ResolveChatAccessControl(t *testing.T) {
	req := require.New(t)
	s := newStack(t, "u-alice", alwaysDeliver())

	chat, err := s.service.ResolveChat(context.Background(), "c1")
	req.NoError(err)
	req.Equal("General", chat.Title)

	_, err = s.service.ResolveChat(context.Background(), "c99")
	req.ErrorIs(err, errs.ErrNotFound)
}

// A double-tap on retry: the second call is rejected locally while the
// first is in flight, and retryCount moves exactly once.
func TestIntegration_RetryDoubleTap(t *testing.T) {
	req := require.New(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	deliver := rest.DelivererFunc(func(context.Context, domain.Message) error {
		close(entered)
		<-release
		return nil
	})

	s := newStack(t, "u-alice", deliver)
	stored := seedMessages(t, s.messages, 3)

	failed := stored[2]
	failed.FailedToSend = true
	failed.RetryCount = 2
	req.NoError(s.messages.Update(failed))

	cmd := domain.RetryCommand{MessageID: failed.ID, ChatID: "c1", UserID: "u-alice"}

	var wg sync.WaitGroup
	wg.Add(1)
	var updated domain.Message
	var firstErr error
	go func() {
		defer wg.Done()
		updated, firstErr = s.service.Retry(context.Background(), cmd)
	}()

	<-entered
	_, err := s.service.Retry(context.Background(), cmd)
	req.ErrorIs(err, errs.ErrRetryInProgress)

	close(release)
	wg.Wait()
	req.NoError(firstErr)
	req.Equal(3, updated.RetryCount)
	req.Equal(domain.SentOK, updated.State())
}

// Two overlapping polls merge without duplicates, most recent first.
func TestIntegration_FeedMerge(t *testing.T) {
	req := require.New(t)
	s := newStack(t, "u-alice", alwaysDeliver())
	now := time.Now().UTC()

	s.notifications.Add(domain.NotificationItem{ID: "n1", Title: "Practice moved", SentAt: now.Add(-time.Hour)})
	items := s.poller.Poll(context.Background(), false)
	req.Len(items, 1)

	s.notifications.Add(domain.NotificationItem{ID: "n2", Title: "New signup", SentAt: now})

	// Outside the staleness window a fresh poll picks up n2 as well.
	stale := projection.NewFeed(time.Nanosecond)
	poller := workers.NewFeedPollerWorker(
		logs.GetLoggerFromLevel(slog.LevelError), s.client, stale, nil,
		s.cfg.PollInterval, s.cfg.PollTimeout, false)
	merged := poller.Poll(context.Background(), false)
	merged = poller.Poll(context.Background(), false)

	req.Len(merged, 2)
	req.Equal("n2", merged[0].ID)
	req.Equal("n1", merged[1].ID)
}

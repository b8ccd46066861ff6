package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"teamchat/contract"
	"teamchat/domain"
	"teamchat/projection"
	"teamchat/runtime/workers"
	"teamchat/services"
	"teamchat/transport"
)

// Exit codes for the viewer application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the viewer-side environment variables.
type Config struct {
	ServerURL       string        `env:"TEAMCHAT_SERVER_URL,default=http://localhost:8080"`
	Token           string        `env:"TEAMCHAT_TOKEN,required=true"`
	ChatID          string        `env:"TEAMCHAT_CHAT_ID,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	PageLimit       int           `env:"PAGE_LIMIT,default=20"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,default=15s"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT,default=5s"`
	StalenessWindow time.Duration `env:"STALENESS_WINDOW,default=30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	UnreadOnly      bool          `env:"UNREAD_ONLY,default=true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Viewer error: %v\n", err)
	}
	os.Exit(code)
}

// run loads the configuration, renders the chat history once, then
// keeps a notification banner loop alive until Ctrl+C.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := transport.NewClient(config.ServerURL, config.Token, config.RequestTimeout, log)
	service := services.NewChatService(log, client, config.PageLimit)

	// 1. Conversation header
	chat, err := service.ResolveChat(ctx, config.ChatID)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not resolve chat %s: %w", config.ChatID, err)
	}
	color.Bold.Printf("# %s\n", chat.Title)
	color.Gray.Printf("participants: %s\n\n", strings.Join(chat.Participants, ", "))

	// 2. Full history, one page at a time, oldest page last
	history := projection.NewHistory(chat.ID)
	var cursor *string
	for !history.Complete() {
		page, next, err := service.FetchPage(ctx, domain.FetchPageCommand{
			ChatID: chat.ID,
			Cursor: cursor,
			Limit:  config.PageLimit,
		})
		if err != nil {
			return exitRuntime, fmt.Errorf("history fetch failed: %w", err)
		}
		if err = history.Apply(page); err != nil {
			return exitRuntime, err
		}
		if next == nil {
			break
		}
		cursor = next
	}
	renderHistory(history)

	// 3. Notification banners until shutdown
	feed := projection.NewFeed(config.StalenessWindow)
	poller := workers.NewFeedPollerWorker(
		log, client, feed, newBannerSink(),
		config.PollInterval, config.PollTimeout, config.UnreadOnly,
	)
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(poller)

	color.Gray.Println("watching notifications (Ctrl+C to quit)...")
	supervisor.Run(ctx)
	return exitOK, nil
}

func renderHistory(history *projection.History) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "State", "Message"})
	for _, message := range history.Messages() {
		sender := message.Sender
		if message.System() {
			sender = "(system)"
		}
		table.Append([]string{
			message.CreatedAt.Format(time.TimeOnly),
			sender,
			string(message.State()),
			message.Text,
		})
	}
	table.Render()
}

// bannerSink prints each notification once. The "already shown" set is
// process-local and never persisted.
type bannerSink struct {
	shown map[string]struct{}
}

func newBannerSink() *bannerSink {
	return &bannerSink{shown: make(map[string]struct{})}
}

var _ contract.IFeedSink = (*bannerSink)(nil)

func (b *bannerSink) Consume(_ context.Context, items []domain.NotificationItem) error {
	for _, item := range items {
		if _, ok := b.shown[item.ID]; ok {
			continue
		}
		b.shown[item.ID] = struct{}{}
		color.Info.Printf("[%s] %s: %s\n",
			item.SentAt.Format(time.TimeOnly), item.Title, item.Body)
	}
	return nil
}

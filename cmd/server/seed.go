package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"teamchat/auth"
	"teamchat/domain"
	"teamchat/internal"
	"teamchat/repositories"
)

// seedDemo loads a small dataset on a fresh database and logs a dev
// token so the viewer can connect immediately.
func seedDemo(
	log *slog.Logger,
	config internal.Config,
	messages repositories.IMessageRepository,
	roster repositories.IRosterRepository,
	notifications repositories.INotificationRepository,
) error {
	chat := domain.Chat{
		ID:           "c-general",
		Title:        "General",
		Participants: []string{"u-alice", "u-bob", "u-clara"},
	}
	roster.AddChat(chat)

	start := time.Now().Add(-1 * time.Hour).UTC()
	for i := 0; i < 25; i++ {
		sender := chat.Participants[i%len(chat.Participants)]
		message := domain.Message{
			ID:        uuid.NewString(),
			ChatID:    chat.ID,
			SenderID:  lo.ToPtr(sender),
			Sender:    sender,
			Text:      fmt.Sprintf("Seeded message %d", i+1),
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
			// Keep one failed message around so retry can be exercised.
			FailedToSend: i == 20,
		}
		if err := messages.Store(message); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	notifications.Add(domain.NotificationItem{
		ID:     uuid.NewString(),
		Title:  "Practice moved",
		Body:   "Tuesday practice now starts at 19:00",
		SentAt: now.Add(-10 * time.Minute),
	})
	notifications.Add(domain.NotificationItem{
		ID:     uuid.NewString(),
		Title:  "New signup",
		Body:   "Clara joined the Saturday roster",
		SentAt: now.Add(-2 * time.Minute),
	})

	for _, user := range chat.Participants {
		token, err := auth.GenerateToken(user, []byte(config.JWTSecret), 24*time.Hour)
		if err != nil {
			return err
		}
		log.Info("Dev token", "user", user, "token", token)
	}
	return nil
}

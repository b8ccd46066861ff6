// Package rest implements the backend's HTTP surface consumed by the
// delivery subsystem: paginated history, delivery retry, the accessible
// chat list, and the notification feed.
package rest

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"teamchat/repositories"
)

// Server wires the four endpoints onto their repositories.
type Server struct {
	log           *slog.Logger
	messages      repositories.IMessageRepository
	roster        repositories.IRosterRepository
	notifications repositories.INotificationRepository
	deliverer     Deliverer
	validate      *validator.Validate
	jwtSecret     []byte
	pageLimitMax  int
	maxRetries    int

	mu       sync.Mutex
	retrying map[string]struct{}
}

func NewServer(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	roster repositories.IRosterRepository,
	notifications repositories.INotificationRepository,
	deliverer Deliverer,
	jwtSecret []byte,
	pageLimitMax int,
	maxRetries int,
) *Server {
	return &Server{
		log:           log,
		messages:      messages,
		roster:        roster,
		notifications: notifications,
		deliverer:     deliverer,
		validate:      validator.New(),
		jwtSecret:     jwtSecret,
		pageLimitMax:  pageLimitMax,
		maxRetries:    maxRetries,
		retrying:      make(map[string]struct{}),
	}
}

// Handler builds the route table. All routes sit behind the bearer
// token middleware; token issuance is someone else's job.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /messages/{chatId}", s.withAuth(s.handleMessages))
	mux.HandleFunc("POST /messages/{messageId}/retry", s.withAuth(s.handleRetry))
	mux.HandleFunc("GET /groups", s.withAuth(s.handleGroups))
	mux.HandleFunc("GET /notifications/feed", s.withAuth(s.handleFeed))
	return mux
}

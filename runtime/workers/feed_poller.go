package workers

import (
	"context"
	"log/slog"
	"time"

	"teamchat/contract"
	"teamchat/domain"
	"teamchat/projection"
)

// FeedPollerWorker refreshes the notification feed on a fixed interval
// while its context is alive. A failed cycle is logged and skipped, the
// next tick self-heals. A response landing after cancellation is
// discarded, never merged into the view.
type FeedPollerWorker struct {
	log         *slog.Logger
	api         contract.IChatAPI
	feed        *projection.Feed
	sink        contract.IFeedSink
	interval    time.Duration
	pollTimeout time.Duration
	unreadOnly  bool
}

func NewFeedPollerWorker(
	log *slog.Logger,
	api contract.IChatAPI,
	feed *projection.Feed,
	sink contract.IFeedSink,
	interval time.Duration,
	pollTimeout time.Duration,
	unreadOnly bool,
) *FeedPollerWorker {
	return &FeedPollerWorker{
		log:         log,
		api:         api,
		feed:        feed,
		sink:        sink,
		interval:    interval,
		pollTimeout: pollTimeout,
		unreadOnly:  unreadOnly,
	}
}

// Run executes the polling loop. One cycle is attempted immediately so
// an observer never stares at an empty feed for a full interval.
func (w *FeedPollerWorker) Run(ctx context.Context) error {
	w.log.Info("Starting feed poller", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// Poll serves an on-demand refresh, typically a surface re-render.
// Within the staleness window a view fetched under the same unreadOnly
// filter is returned without any network traffic. On a failed fetch the
// cached view is served as-is: reads degrade, they never crash.
func (w *FeedPollerWorker) Poll(ctx context.Context, unreadOnly bool) []domain.NotificationItem {
	if w.feed.Fresh(time.Now(), unreadOnly) {
		return w.feed.Items()
	}
	w.fetch(ctx, unreadOnly)
	return w.feed.Items()
}

func (w *FeedPollerWorker) cycle(ctx context.Context) {
	w.fetch(ctx, w.unreadOnly)
	if w.sink == nil {
		return
	}
	if err := w.sink.Consume(ctx, w.feed.Items()); err != nil {
		w.log.Warn("Feed sink rejected items", "error", err)
	}
}

func (w *FeedPollerWorker) fetch(ctx context.Context, unreadOnly bool) {
	pollCtx, cancel := context.WithTimeout(ctx, w.pollTimeout)
	defer cancel()

	items, err := w.api.GetFeed(pollCtx, unreadOnly)
	if err != nil {
		// Missed cycle, not an error surface. Next tick will catch up.
		w.log.Warn("Poll cycle missed", "error", err)
		return
	}
	if ctx.Err() != nil {
		// The observing surface is gone, this response is stray.
		w.log.Debug("Discarding poll response after cancellation")
		return
	}
	w.feed.Merge(time.Now(), unreadOnly, items)
}

// Package notify fans plain-text messages out to chat recipients.
//
// Delivery is fire-and-forget per recipient: one failed send is logged and
// counted, never allowed to cancel the remaining attempts.
package notify

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Sender

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"davomat/internal/platform/metrics"
)

// Sender delivers one message to one chat. The telegram client implements it.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Notifier broadcasts messages through a Sender.
type Notifier struct {
	log         *slog.Logger
	sender      Sender
	metrics     *metrics.Metrics
	concurrency int
}

func New(log *slog.Logger, sender Sender, m *metrics.Metrics) *Notifier {
	return &Notifier{log: log, sender: sender, metrics: m, concurrency: 4}
}

// Send delivers to a single chat.
func (n *Notifier) Send(ctx context.Context, chatID int64, text string) error {
	if err := n.sender.Send(ctx, chatID, text); err != nil {
		n.metrics.IncNotificationsFailed()
		n.log.ErrorContext(ctx, "notification failed", "chat_id", chatID, "error", err)
		return err
	}
	n.metrics.IncNotificationsSent()
	return nil
}

// Broadcast delivers text to every chat ID, a few at a time. Returns the
// number of successful deliveries; individual failures are swallowed after
// logging so the rest of the fan-out proceeds.
func (n *Notifier) Broadcast(ctx context.Context, chatIDs []int64, text string) int {
	if len(chatIDs) == 0 || text == "" {
		return 0
	}

	results := make([]bool, len(chatIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, chatID := range chatIDs {
		g.Go(func() error {
			if err := n.sender.Send(ctx, chatID, text); err != nil {
				n.metrics.IncNotificationsFailed()
				n.log.ErrorContext(ctx, "broadcast delivery failed", "chat_id", chatID, "error", err)
				return nil
			}
			n.metrics.IncNotificationsSent()
			results[i] = true
			return nil
		})
	}
	// Goroutines only ever return nil; Wait is for completion, not errors.
	_ = g.Wait()

	delivered := 0
	for _, ok := range results {
		if ok {
			delivered++
		}
	}
	return delivered
}

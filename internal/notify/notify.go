// Package notify tells the other agent in a dispute that something changed.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/natsbus"
	"github.com/google/uuid"
)

// Notification is a message for one agent about one dispute. To is zero when
// the recipient has not joined the dispute yet.
type Notification struct {
	ID        string    `json:"id"`
	DisputeID string    `json:"dispute_id"`
	From      int64     `json:"from"`
	To        int64     `json:"to"`
	Message   string    `json:"message"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is published on the dispute's event topic for live views.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// New fills in the id and timestamp of a notification.
func New(disputeID string, from, to int64, message, url string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		DisputeID: disputeID,
		From:      from,
		To:        to,
		Message:   message,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
}

// Publisher delivers notifications over NATS: to the recipient's topic and,
// as an event, to the dispute's topic.
type Publisher struct {
	client *natsbus.Client
}

func NewPublisher(client *natsbus.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.To != 0 {
		if err := p.client.PublishJSON(natsbus.TopicAgentNotify(n.To), n); err != nil {
			return fmt.Errorf("publish notification: %w", err)
		}
	}
	event := Event{Type: "notification", Payload: n}
	if err := p.client.PublishJSON(natsbus.TopicDisputeEvents(n.DisputeID), event); err != nil {
		return fmt.Errorf("publish dispute event: %w", err)
	}
	return nil
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) error { return nil }

const sendTimeout = 10 * time.Second

// Send dispatches n in the background. Failures are logged, never returned.
func Send(notifier Notifier, n Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := notifier.Notify(ctx, n); err != nil {
			slog.Warn("notification failed", "dispute", n.DisputeID, "to", n.To, "error", err)
		}
	}()
}

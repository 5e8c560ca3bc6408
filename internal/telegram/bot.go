// Package telegram delivers agent notifications to Telegram chats.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/natsbus"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/notify"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nats-io/nats.go"
)

type Bot struct {
	bot     *telego.Bot
	handler *th.BotHandler
	client  *natsbus.Client
	sub     *nats.Subscription
	chats   chatMap
	cancel  context.CancelFunc
}

func NewBot(cfg config.TelegramConfig, client *natsbus.Client) (*Bot, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{
		bot:    bot,
		client: client,
		chats:  chatMap(cfg.Chats),
	}, nil
}

// Start forwards agent notifications to their chats and answers /start with
// the chat id to put in the config. It blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	sub, err := b.client.Subscribe(natsbus.TopicNotifyAll, func(msg *nats.Msg) {
		b.deliver(ctx, msg.Data)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	b.sub = sub

	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		cancel()
		return fmt.Errorf("create handler: %w", err)
	}
	b.handler = handler

	handler.HandleMessage(func(hctx *th.Context, message telego.Message) error {
		return b.SendMessage(ctx, message.Chat.ID, fmt.Sprintf("This chat's id is %d.", message.Chat.ID))
	}, th.CommandEqual("start"))

	go handler.Start()

	<-ctx.Done()
	_ = handler.Stop()
	_ = sub.Unsubscribe()
	return nil
}

func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.handler != nil {
		_ = b.handler.Stop()
	}
}

func (b *Bot) deliver(ctx context.Context, data []byte) {
	var n notify.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		slog.Warn("invalid notification payload", "error", err)
		return
	}

	chatID, ok := b.chats.lookup(n.To)
	if !ok {
		slog.Debug("no telegram chat for agent", "agent", n.To, "dispute", n.DisputeID)
		return
	}

	if err := b.SendMessage(ctx, chatID, formatNotification(n)); err != nil {
		slog.Error("failed to send telegram message", "chat", chatID, "agent", n.To, "error", err)
	}
}

func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	chunks := chunkMessage(text, 4096)
	for _, chunk := range chunks {
		msg := tu.Message(tu.ID(chatID), chunk)
		_, err := b.bot.SendMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

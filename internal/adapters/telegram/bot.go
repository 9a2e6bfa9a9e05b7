// Package telegram implements the notification port and the chat command
// front-end using the Telegram Bot API. It supports both webhook delivery
// (for always-on deployments behind a public URL) and long polling.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/ports"
)

// Config holds configuration specific to the Telegram adapter.
type Config struct {
	Token      string
	ChatID     int64  // destination chat for outbound notifications
	WebhookURL string // public base URL; empty selects long polling
	ListenAddr string // local address for the webhook listener (e.g., ":8000")
	Logger     ports.Logger
}

// Bot implements ports.Notifier and serves the /start and /status commands.
type Bot struct {
	api        *tgbotapi.BotAPI
	chatID     int64
	webhookURL string
	listenAddr string
	logger     ports.Logger
}

// New creates a Telegram adapter and verifies the token by fetching the bot
// identity.
func New(cfg Config) (*Bot, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram bot")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required: %w", ports.ErrConfigurationError)
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat ID is required: %w", ports.ErrConfigurationError)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize Telegram bot: %w", err)
	}
	cfg.Logger.Info(context.Background(), "Telegram bot authorized", map[string]interface{}{"account": api.Self.UserName})

	return &Bot{
		api:        api,
		chatID:     cfg.ChatID,
		webhookURL: cfg.WebhookURL,
		listenAddr: cfg.ListenAddr,
		logger:     cfg.Logger,
	}, nil
}

// Send delivers a Markdown-formatted message to the configured chat.
func (b *Bot) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrNotificationFailed, err)
	}
	return nil
}

// ListenCommands receives chat updates until ctx is cancelled and invokes
// handle for every bot command. When handle returns ok the reply is sent back
// to the originating chat. Reply failures are logged and never interrupt the
// update loop.
func (b *Bot) ListenCommands(ctx context.Context, handle func(ctx context.Context, command string) (string, bool)) error {
	updates, err := b.updates(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			command := update.Message.Command()
			b.logger.Debug(ctx, "Received command", map[string]interface{}{
				"command": command,
				"chatID":  update.Message.Chat.ID,
			})

			reply, handled := handle(ctx, command)
			if !handled {
				continue
			}
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := b.api.Send(msg); err != nil {
				b.logger.Error(ctx, err, "Failed to send command reply", map[string]interface{}{"command": command})
			}
		}
	}
}

// updates selects the delivery mode: webhook when a public URL is configured,
// long polling otherwise.
func (b *Bot) updates(ctx context.Context) (tgbotapi.UpdatesChannel, error) {
	if b.webhookURL == "" {
		b.logger.Warn(ctx, "WEBHOOK_URL not set, receiving updates via long polling")
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		return b.api.GetUpdatesChan(u), nil
	}

	endpoint := fmt.Sprintf("%s/%s", b.webhookURL, b.api.Token)
	wh, err := tgbotapi.NewWebhook(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return nil, fmt.Errorf("failed to register webhook: %w", err)
	}
	b.logger.Info(ctx, "Webhook registered", map[string]interface{}{"listenAddr": b.listenAddr})

	updates := b.api.ListenForWebhook("/" + b.api.Token)

	srv := &http.Server{Addr: b.listenAddr}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.logger.Error(ctx, err, "Webhook listener stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return updates, nil
}

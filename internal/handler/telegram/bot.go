// Package telegram is the chat front-end: it long-polls for commands and
// replies with watchlist, headline and sentiment text.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"stockpulse/internal/handler/http/respond"
	"stockpulse/internal/utils/text"
)

// maxMessageRunes keeps replies under Telegram's 4096 character limit.
const maxMessageRunes = 4000

// API is the subset of *tgbotapi.BotAPI the bot needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Config controls polling and concurrency.
type Config struct {
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
	// MaxConcurrent bounds commands handled at once.
	MaxConcurrent int
	// CommandTimeout bounds one command, including the replies.
	CommandTimeout time.Duration
}

// DefaultConfig returns the polling defaults.
func DefaultConfig() Config {
	return Config{PollTimeout: 60, MaxConcurrent: 8, CommandTimeout: 90 * time.Second}
}

type Bot struct {
	api    API
	cmds   *Commands
	cfg    Config
	logger *slog.Logger
}

// New creates a Bot. Zero Config fields take their defaults.
func New(api API, cmds *Commands, cfg Config, logger *slog.Logger) *Bot {
	def := DefaultConfig()
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = def.CommandTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, cmds: cmds, cfg: cfg, logger: logger}
}

// NewAPI connects to Telegram with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		// the library error can carry the token in the request URL
		return nil, fmt.Errorf("create telegram bot: authorization failed")
	}
	return api, nil
}

// Run polls for updates until ctx is done, then waits for in-flight commands.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot started, listening for commands")

	var g errgroup.Group
	g.SetLimit(b.cfg.MaxConcurrent)
	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				_ = g.Wait()
				return nil
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() {
				continue
			}
			g.Go(func() error {
				b.handle(ctx, msg)
				return nil
			})
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout)
	defer cancel()

	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}
	command := msg.Command()
	start := time.Now()

	reply := b.cmds.Handle(ctx, userID, command, msg.CommandArguments())
	for _, chunk := range text.Chunk(reply, maxMessageRunes) {
		if err := b.send(msg.Chat.ID, chunk); err != nil {
			b.logger.Error("failed to send telegram reply",
				slog.String("command", command),
				slog.Int64("chat_id", msg.Chat.ID),
				slog.String("error", respond.SanitizeError(err)))
			return
		}
	}
	b.logger.Info("telegram command handled",
		slog.String("command", command),
		slog.Int64("user_id", userID),
		slog.Duration("duration", time.Since(start)))
}

func (b *Bot) send(chatID int64, body string) error {
	m := tgbotapi.NewMessage(chatID, body)
	m.DisableWebPagePreview = true
	if _, err := b.api.Send(m); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"time"

	"bilitool/constant"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// Nop is used when no chat is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Report) error { return nil }

// Sender is satisfied by *bot.Bot.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type Telegram struct {
	sender     Sender
	chatID     int64
	location   *time.Location
	logger     *zap.Logger
	maxRetries int
	retryWait  time.Duration
}

func NewTelegram(token string, chatID int64, timezone string, logger *zap.Logger) (*Telegram, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error("Failed to load report timezone, using local time",
			zap.String("timezone", timezone),
			zap.Error(err))
		loc = time.Local
	}

	return newTelegram(b, chatID, loc, logger), nil
}

func newTelegram(sender Sender, chatID int64, loc *time.Location, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender:     sender,
		chatID:     chatID,
		location:   loc,
		logger:     logger,
		maxRetries: constant.NotifyMaxRetries,
		retryWait:  constant.NotifyRetryWait,
	}
}

func (t *Telegram) Notify(ctx context.Context, report Report) error {
	message := report.Format(t.location)

	var err error
	for attempt := 1; attempt <= t.maxRetries; attempt++ {
		_, err = t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    t.chatID,
			Text:      message,
			ParseMode: models.ParseModeHTML,
		})
		if err == nil {
			t.logger.Info("Telegram report sent", zap.Int64("chatID", t.chatID))
			return nil
		}

		if attempt == t.maxRetries {
			break
		}

		t.logger.Warn("Failed to send telegram message, retrying...",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.retryWait * time.Duration(attempt)):
		}
	}

	t.logger.Error("Failed to send telegram message after retries",
		zap.Int("attempts", t.maxRetries),
		zap.Error(err))
	return fmt.Errorf("send telegram report: %w", err)
}

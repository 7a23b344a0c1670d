package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"artemius/internal/model"
	"artemius/internal/service"
)

const (
	sendMaxRetries     = 3
	sendBackoffInitial = time.Second
	sendBackoffMax     = 10 * time.Second
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot long-polls Telegram and handles each update in its own goroutine.
type Bot struct {
	api         BotAPI
	conv        service.ConversationService
	renderer    *Renderer
	pollTimeout int
	logger      zerolog.Logger
	wg          sync.WaitGroup
}

func NewBot(api BotAPI, conv service.ConversationService, renderer *Renderer, pollTimeoutSec int, logger zerolog.Logger) *Bot {
	return &Bot{
		api:         api,
		conv:        conv,
		renderer:    renderer,
		pollTimeout: pollTimeoutSec,
		logger:      logger.With().Str("component", "telegram").Logger(),
	}
}

// Run polls until ctx is done, then waits for in-flight updates.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info().Int("poll_timeout_sec", b.pollTimeout).Msg("Starting update loop")

	// In-flight work outlives the shutdown signal.
	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Shutting down update loop")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case upd, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(handlerCtx, upd)
			}()
		}
	}
}

// HandleUpdate processes a single update end to end.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Int("update_id", upd.UpdateID).Msg("Recovered from panic in update handler")
		}
	}()

	ev, err := EventFromUpdate(upd)
	if err != nil {
		b.logger.Debug().Err(err).Int("update_id", upd.UpdateID).Msg("Skipping update")
		return
	}

	if upd.CallbackQuery != nil {
		b.answerCallback(upd.CallbackQuery, ev.Kind)
	}

	resp := b.conv.Handle(ctx, ev)
	for _, c := range b.renderer.Render(int64(ev.UserID), resp) {
		if err := b.send(ctx, c); err != nil {
			b.logger.Error().Err(err).Str("event_id", ev.ID).Int64("user_id", int64(ev.UserID)).Msg("Failed to send reply")
		}
	}
}

func (b *Bot) answerCallback(q *tgbotapi.CallbackQuery, kind model.EventKind) {
	text := ""
	if kind == model.EventCheckSubscriptions {
		text = "🔄 Проверяю подписки..."
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		b.logger.Warn().Err(err).Str("callback_id", q.ID).Msg("Failed to answer callback")
	}
}

// send retries on flood control and falls back to plain text when
// Telegram rejects the Markdown.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	backoff := sendBackoffInitial
	var err error
	for attempt := 1; attempt <= sendMaxRetries; attempt++ {
		if _, err = b.api.Send(c); err == nil {
			return nil
		}

		var tgErr *tgbotapi.Error
		if !errors.As(err, &tgErr) {
			return err
		}
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ParseMode != "" && strings.Contains(tgErr.Message, "can't parse entities") {
			msg.ParseMode = ""
			c = msg
			continue
		}
		if tgErr.RetryAfter <= 0 {
			return err
		}

		wait := time.Duration(tgErr.RetryAfter) * time.Second
		if wait < backoff {
			wait = backoff
		}
		b.logger.Warn().Int("attempt", attempt).Dur("wait", wait).Msg("Telegram flood control, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
		if backoff > sendBackoffMax {
			backoff = sendBackoffMax
		}
	}
	return err
}

package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"artemius/internal/model"
	"artemius/internal/service"
)

type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type indicator struct {
	action string
	text   string
}

var indicators = map[model.Feature]indicator{
	model.FeatureChat:     {tgbotapi.ChatTyping, "🏛️ Artemius думает..."},
	model.FeatureImage:    {tgbotapi.ChatUploadPhoto, "🎨 Artemius создаёт..."},
	model.FeatureMusic:    {tgbotapi.ChatUploadDocument, "🎵 Artemius компонует..."},
	model.FeatureVideo:    {tgbotapi.ChatUploadVideo, "🎬 Artemius создаёт видео..."},
	model.FeatureDocument: {tgbotapi.ChatTyping, "📄 Artemius сканирует..."},
}

// ProgressDispatcher shows a chat action and a temporary "working" message
// while the wrapped dispatcher runs. Private chat IDs equal user IDs.
type ProgressDispatcher struct {
	next   service.FeatureDispatcher
	api    messenger
	logger zerolog.Logger
}

func NewProgressDispatcher(next service.FeatureDispatcher, api messenger, logger zerolog.Logger) *ProgressDispatcher {
	return &ProgressDispatcher{next: next, api: api, logger: logger}
}

func (d *ProgressDispatcher) Invoke(ctx context.Context, f model.Feature, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	chatID := int64(userID)
	ind, ok := indicators[f]
	if !ok {
		return d.next.Invoke(ctx, f, userID, payload)
	}

	if _, err := d.api.Request(tgbotapi.NewChatAction(chatID, ind.action)); err != nil {
		d.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send chat action")
	}
	msg, err := d.api.Send(tgbotapi.NewMessage(chatID, ind.text))
	if err != nil {
		d.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send progress message")
	} else {
		defer func() {
			if _, err := d.api.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
				d.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to delete progress message")
			}
		}()
	}

	return d.next.Invoke(ctx, f, userID, payload)
}

package telegram

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"artemius/internal/model"
)

var ErrUnsupportedUpdate = errors.New("unsupported update")

// Reply keyboard labels. Incoming text equal to a label is a button press.
const (
	btnChat     = "💬 Чат с Artemius"
	btnImage    = "🎨 Создать картинку"
	btnMusic    = "🎵 Создать песню"
	btnVideo    = "🎬 Создать видео"
	btnDocument = "📄 Документ"
	btnProfile  = "👤 Мой профиль"
	btnTierVIP  = "⭐ VIP режим"
	btnTierFree = "🔒 Базовый доступ"
	btnGetVIP   = "📢 Получить VIP"
	btnMainMenu = "🏠 Главное меню"
)

// Inline keyboard callback data.
const (
	cbCheckSubscriptions = "check_subscriptions"
	cbSkipSubscriptions  = "skip_subscriptions"
	cbSeparator          = "separator"
)

var featureButtons = map[string]model.Feature{
	btnChat:     model.FeatureChat,
	btnImage:    model.FeatureImage,
	btnMusic:    model.FeatureMusic,
	btnVideo:    model.FeatureVideo,
	btnDocument: model.FeatureDocument,
}

var commandButtons = map[string]model.EventKind{
	btnProfile:  model.EventShowProfile,
	btnTierVIP:  model.EventShowVIPInfo,
	btnTierFree: model.EventShowVIPInfo,
	btnGetVIP:   model.EventShowVIPInfo,
	btnMainMenu: model.EventReturnToMenu,
}

var callbackEvents = map[string]model.EventKind{
	cbCheckSubscriptions: model.EventCheckSubscriptions,
	cbSkipSubscriptions:  model.EventSkipSubscriptions,
	cbSeparator:          model.EventSeparator,
}

// EventFromUpdate maps a Telegram update to a conversation event. Only
// private chats are served.
func EventFromUpdate(u tgbotapi.Update) (model.Event, error) {
	switch {
	case u.Message != nil:
		return eventFromMessage(u.Message)
	case u.CallbackQuery != nil:
		return eventFromCallback(u.CallbackQuery)
	}
	return model.Event{}, ErrUnsupportedUpdate
}

func eventFromMessage(m *tgbotapi.Message) (model.Event, error) {
	if m.From == nil || m.Chat == nil || !m.Chat.IsPrivate() {
		return model.Event{}, ErrUnsupportedUpdate
	}
	ev := model.Event{ID: uuid.NewString(), UserID: model.UserID(m.From.ID)}

	switch {
	case m.IsCommand():
		if m.Command() == "start" {
			ev.Kind = model.EventStart
		}
	case len(m.Photo) > 0:
		// Telegram lists sizes ascending; the last one is the original.
		ev.Kind = model.EventImage
		ev.Payload = model.Payload{FileID: m.Photo[len(m.Photo)-1].FileID, Text: m.Caption}
	case m.Text != "":
		if f, ok := featureButtons[m.Text]; ok {
			ev.Kind = model.EventSelectFeature
			ev.Feature = f
		} else if kind, ok := commandButtons[m.Text]; ok {
			ev.Kind = kind
		} else {
			ev.Kind = model.EventText
			ev.Payload = model.Payload{Text: m.Text}
		}
	}
	return ev, nil
}

func eventFromCallback(q *tgbotapi.CallbackQuery) (model.Event, error) {
	if q.From == nil {
		return model.Event{}, ErrUnsupportedUpdate
	}
	if q.Message != nil && q.Message.Chat != nil && !q.Message.Chat.IsPrivate() {
		return model.Event{}, ErrUnsupportedUpdate
	}
	return model.Event{
		ID:     uuid.NewString(),
		Kind:   callbackEvents[q.Data],
		UserID: model.UserID(q.From.ID),
	}, nil
}

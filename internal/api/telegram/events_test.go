package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artemius/internal/model"
)

func TestEventFromTextMessages(t *testing.T) {
	cases := []struct {
		text    string
		kind    model.EventKind
		feature model.Feature
	}{
		{btnChat, model.EventSelectFeature, model.FeatureChat},
		{btnImage, model.EventSelectFeature, model.FeatureImage},
		{btnMusic, model.EventSelectFeature, model.FeatureMusic},
		{btnVideo, model.EventSelectFeature, model.FeatureVideo},
		{btnDocument, model.EventSelectFeature, model.FeatureDocument},
		{btnProfile, model.EventShowProfile, ""},
		{btnTierVIP, model.EventShowVIPInfo, ""},
		{btnTierFree, model.EventShowVIPInfo, ""},
		{btnGetVIP, model.EventShowVIPInfo, ""},
		{btnMainMenu, model.EventReturnToMenu, ""},
		{"как дела?", model.EventText, ""},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			ev, err := EventFromUpdate(privateMessage(5, tc.text))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, ev.Kind)
			assert.Equal(t, tc.feature, ev.Feature)
			assert.Equal(t, model.UserID(5), ev.UserID)
			assert.NotEmpty(t, ev.ID)
		})
	}
}

func TestEventFromStartCommand(t *testing.T) {
	upd := privateMessage(5, "/start")
	upd.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	ev, err := EventFromUpdate(upd)
	require.NoError(t, err)
	assert.Equal(t, model.EventStart, ev.Kind)

	upd = privateMessage(5, "/help")
	upd.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}}
	ev, err = EventFromUpdate(upd)
	require.NoError(t, err)
	assert.Equal(t, model.EventUnknown, ev.Kind)
}

func TestEventFromPhoto(t *testing.T) {
	upd := privateMessage(5, "")
	upd.Message.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	upd.Message.Caption = "переведи"

	ev, err := EventFromUpdate(upd)
	require.NoError(t, err)
	assert.Equal(t, model.EventImage, ev.Kind)
	assert.Equal(t, "large", ev.Payload.FileID)
	assert.Equal(t, "переведи", ev.Payload.Text)
}

func TestEventFromStickerIsUnknown(t *testing.T) {
	upd := privateMessage(5, "")
	upd.Message.Sticker = &tgbotapi.Sticker{FileID: "s"}
	ev, err := EventFromUpdate(upd)
	require.NoError(t, err)
	assert.Equal(t, model.EventUnknown, ev.Kind)
}

func TestEventFromCallback(t *testing.T) {
	cases := map[string]model.EventKind{
		cbCheckSubscriptions: model.EventCheckSubscriptions,
		cbSkipSubscriptions:  model.EventSkipSubscriptions,
		cbSeparator:          model.EventSeparator,
		"something-else":     model.EventUnknown,
	}
	for data, want := range cases {
		upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 9},
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9, Type: "private"}},
		}}
		ev, err := EventFromUpdate(upd)
		require.NoError(t, err)
		assert.Equal(t, want, ev.Kind, data)
		assert.Equal(t, model.UserID(9), ev.UserID)
	}
}

func TestUnsupportedUpdates(t *testing.T) {
	group := privateMessage(5, "hi")
	group.Message.Chat.Type = "group"

	for _, upd := range []tgbotapi.Update{
		{},
		group,
		{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "private"}, Text: "x"}},
		{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x"}},
	} {
		_, err := EventFromUpdate(upd)
		assert.ErrorIs(t, err, ErrUnsupportedUpdate)
	}
}

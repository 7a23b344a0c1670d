package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artemius/internal/model"
)

var renderChannels = []model.ChannelStatus{
	{Channel: model.Channel{ID: "@a", Name: "Канал A", URL: "https://t.me/a"}, Subscribed: true},
	{Channel: model.Channel{ID: "@b", Name: "Канал B", URL: "https://t.me/b"}},
}

func renderOne(t *testing.T, resp model.Response) tgbotapi.MessageConfig {
	t.Helper()
	out := NewRenderer(model.DefaultLimits()).Render(10, resp)
	require.Len(t, out, 1)
	msg, ok := out[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(10), msg.ChatID)
	return msg
}

func inlineData(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
			if b.URL != nil {
				out = append(out, *b.URL)
			}
		}
	}
	return out
}

func TestRenderFreeWelcomeShowsSubscriptionMenu(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponseWelcome, Tier: model.TierFree, Channels: renderChannels})

	assert.Contains(t, msg.Text, "💬 3 диалогов в день")
	assert.Contains(t, msg.Text, "💬 25 диалогов (+22)")
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, []string{"https://t.me/a", "https://t.me/b", cbSeparator, cbCheckSubscriptions, cbSkipSubscriptions}, inlineData(kb))
	assert.Contains(t, kb.InlineKeyboard[0][0].Text, "✅ Канал A")
	assert.Contains(t, kb.InlineKeyboard[1][0].Text, "📢 Канал B")
}

func TestRenderMainMenuTierButton(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponseMenu, Tier: model.TierVIP})
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.Keyboard, 4)
	assert.Equal(t, btnTierVIP, kb.Keyboard[3][0].Text)
	assert.True(t, kb.ResizeKeyboard)

	msg = renderOne(t, model.Response{Kind: model.ResponseUnrecognized, Tier: model.TierFree})
	kb = msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, btnTierFree, kb.Keyboard[3][0].Text)
	assert.Contains(t, msg.Text, "не понял")
}

func TestRenderPermittedShowsRemainingAndBackButton(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponsePermitted, Tier: model.TierFree, Feature: model.FeatureImage, Remaining: 1})
	assert.Contains(t, msg.Text, "Осталось сегодня: *1*")
	kb := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, btnMainMenu, kb.Keyboard[0][0].Text)
}

func TestRenderDenied(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponseDenied, Tier: model.TierFree, Feature: model.FeatureChat, Channels: renderChannels})
	assert.Contains(t, msg.Text, "Текущий лимит: 3 в день")
	assert.Contains(t, msg.Text, "VIP лимит: 25 в день (+22)")
	_, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.True(t, ok)

	msg = renderOne(t, model.Response{Kind: model.ResponseDenied, Tier: model.TierVIP, Feature: model.FeatureVideo})
	assert.Contains(t, msg.Text, "VIP лимит: 3 в день")
	assert.Nil(t, msg.ReplyMarkup)
}

func TestRenderResult(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponseResult, Feature: model.FeatureChat, Remaining: 2, Result: &model.GenerationResult{Text: "ответ"}})
	assert.Contains(t, msg.Text, "ответ")
	assert.Contains(t, msg.Text, "Осталось сегодня: 2")

	out := NewRenderer(model.DefaultLimits()).Render(10, model.Response{
		Kind:   model.ResponseResult,
		Result: &model.GenerationResult{JobID: "j1", Text: "кот", Image: []byte{0x89, 0x50}},
	})
	require.Len(t, out, 1)
	photo, ok := out[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Contains(t, photo.Caption, "кот")
}

func TestRenderProfile(t *testing.T) {
	snap := &model.TierSnapshot{
		Tier:   model.TierFree,
		Limits: model.DefaultLimits()[model.TierFree],
		Used:   map[model.Feature]int{model.FeatureChat: 2},
		Stats:  model.LifetimeStats{Totals: map[model.Feature]int{model.FeatureChat: 40}},
	}
	msg := renderOne(t, model.Response{Kind: model.ResponseProfile, Tier: model.TierFree, Snapshot: snap, Channels: renderChannels})
	assert.Contains(t, msg.Text, "💬 Диалоги: 2/3")
	assert.Contains(t, msg.Text, "• Диалоги: 40")
	assert.Contains(t, msg.Text, "Получите VIP")
}

func TestRenderSubscriptionCheck(t *testing.T) {
	msg := renderOne(t, model.Response{Kind: model.ResponseSubscriptionCheck, Tier: model.TierFree, Channels: renderChannels})
	assert.Contains(t, msg.Text, "✅ Канал A")
	assert.Contains(t, msg.Text, "❌ Канал B")

	all := []model.ChannelStatus{{Channel: model.Channel{ID: "@a", Name: "A"}, Subscribed: true}}
	msg = renderOne(t, model.Response{Kind: model.ResponseSubscriptionCheck, Tier: model.TierFree, Channels: all})
	assert.Contains(t, msg.Text, "Проверяем подписки")

	msg = renderOne(t, model.Response{Kind: model.ResponseSubscriptionCheck, Tier: model.TierVIP})
	assert.Contains(t, msg.Text, "VIP статус активирован")
	_, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, ok)
}

func TestRenderSeparatorIsSilent(t *testing.T) {
	out := NewRenderer(model.DefaultLimits()).Render(10, model.Response{Kind: model.ResponseAcknowledged})
	assert.Empty(t, out)
}

func TestRenderLongResultIsSplit(t *testing.T) {
	text := strings.Repeat("строка ответа 😀\n", 600)
	out := NewRenderer(model.DefaultLimits()).Render(10, model.Response{
		Kind:      model.ResponseResult,
		Feature:   model.FeatureChat,
		Remaining: 4,
		Result:    &model.GenerationResult{Text: text},
	})
	require.Greater(t, len(out), 1)

	var joined strings.Builder
	for i, c := range out {
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.LessOrEqual(t, utf16Len(msg.Text), maxMessageUnits)
		if i < len(out)-1 {
			assert.True(t, strings.HasSuffix(msg.Text, "\n"), "part %d should end on a line break", i)
		}
		joined.WriteString(msg.Text)
	}
	last := out[len(out)-1].(tgbotapi.MessageConfig)
	assert.Contains(t, last.Text, "Осталось сегодня: 4")
	assert.True(t, strings.HasPrefix(joined.String(), text))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{""}, splitMessage("", 10))
	assert.Equal(t, []string{"abc"}, splitMessage("abc", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, splitMessage("abcdefghij", 4))
	assert.Equal(t, []string{"ab\n", "cdef"}, splitMessage("ab\ncdef", 4))
	// A surrogate pair counts as two units.
	assert.Equal(t, []string{"😀", "😀"}, splitMessage("😀😀", 3))
}

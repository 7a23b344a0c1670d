package telegram

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"artemius/internal/model"
)

// Telegram rejects messages longer than 4096 UTF-16 code units.
const maxMessageUnits = 4096

type featureText struct {
	emoji  string
	label  string // profile and limit lines
	plural string // "N ... в день"
	prompt string
}

var featureTexts = map[model.Feature]featureText{
	model.FeatureChat:     {"💬", "Диалоги", "диалогов", "Напишите ваш вопрос, и Artemius ответит."},
	model.FeatureImage:    {"🎨", "Изображения", "картинок", "Опишите изображение, которое нужно создать."},
	model.FeatureMusic:    {"🎵", "Музыка", "композиций", "Опишите песню: жанр, настроение, тему."},
	model.FeatureVideo:    {"🎬", "Видео", "видео", "Опишите сцену для видеоролика."},
	model.FeatureDocument: {"📄", "Документы", "документов", "Пришлите фото документа."},
}

// Renderer turns conversation responses into Telegram messages.
type Renderer struct {
	limits model.LimitsTable
}

func NewRenderer(limits model.LimitsTable) *Renderer {
	return &Renderer{limits: limits}
}

// Render builds the outgoing messages for a response. Separator presses
// produce nothing.
func (r *Renderer) Render(chatID int64, resp model.Response) []tgbotapi.Chattable {
	switch resp.Kind {
	case model.ResponseWelcome:
		if resp.Tier == model.TierVIP {
			return r.msg(chatID, "🏛️ *Добро пожаловать, VIP-пользователь!*\n\n⭐ *VIP статус активен.*\n\n"+r.limitLines(model.TierVIP), mainMenu(resp.Tier))
		}
		text := "🏛️ *Добро пожаловать в Artemius AI!*\n\n🔒 *Ваши лимиты (базовый доступ):*\n" + r.limitLines(model.TierFree) +
			"\n⭐ *Подпишитесь на каналы и получите VIP:*\n" + r.upgradeLines()
		return r.msg(chatID, text, subscriptionMenu(resp.Channels))

	case model.ResponseMenu:
		return r.msg(chatID, "🏠 *Главное меню*\n\nСтатус: "+tierLabel(resp.Tier), mainMenu(resp.Tier))

	case model.ResponsePermitted:
		ft := featureTexts[resp.Feature]
		text := fmt.Sprintf("%s %s\n\n📊 Осталось сегодня: *%d*", ft.emoji, ft.prompt, resp.Remaining)
		return r.msg(chatID, text, backMenu())

	case model.ResponseDenied:
		return r.denied(chatID, resp)

	case model.ResponseResult:
		return r.result(chatID, resp)

	case model.ResponseFailure:
		text := "❌ Artemius временно недоступен, попробуйте позже."
		if resp.Feature != "" {
			text += fmt.Sprintf("\n\n📊 Осталось сегодня: *%d*", resp.Remaining)
		}
		return r.msg(chatID, text, nil)

	case model.ResponseProfile:
		return r.profile(chatID, resp)

	case model.ResponseVIPInfo:
		if resp.Tier == model.TierVIP {
			return r.msg(chatID, "⭐ *VIP статус уже активен!*\n\n"+r.limitLines(model.TierVIP), mainMenu(resp.Tier))
		}
		text := "⭐ *Как получить VIP статус?*\n\nПодпишитесь на все каналы и нажмите «Проверить подписки».\n\n" + r.upgradeLines()
		return r.msg(chatID, text, subscriptionMenu(resp.Channels))

	case model.ResponseSubscriptionCheck:
		return r.subscriptionCheck(chatID, resp)

	case model.ResponseSkipped:
		text := "🔒 *Базовый доступ активен*\n\n" + r.limitLines(model.TierFree) + "\n⭐ VIP можно получить в любой момент, подписавшись на каналы."
		return r.msg(chatID, text, mainMenu(resp.Tier))

	case model.ResponseAcknowledged:
		return nil
	}

	return r.msg(chatID, "🤔 *Artemius не понял команду*\n\n💡 Используйте кнопки меню для навигации.", mainMenu(resp.Tier))
}

func (r *Renderer) denied(chatID int64, resp model.Response) []tgbotapi.Chattable {
	ft := featureTexts[resp.Feature]
	current := r.limits.Cap(resp.Tier, resp.Feature)
	if resp.Tier == model.TierVIP {
		text := fmt.Sprintf("🚫 *Лимит исчерпан: %s*\n\n⭐ VIP лимит: %d в день\n⏰ Лимиты обновятся завтра в 00:00.", strings.ToLower(ft.label), current)
		return r.msg(chatID, text, nil)
	}
	vip := r.limits.Cap(model.TierVIP, resp.Feature)
	text := fmt.Sprintf("🚫 *Лимит исчерпан: %s*\n\n%s Текущий лимит: %d в день\n🎯 VIP лимит: %d в день (+%d)\n\n⭐ *Все VIP бонусы:*\n%s\n📢 Подпишитесь на каналы, чтобы получить VIP!",
		strings.ToLower(ft.label), ft.emoji, current, vip, vip-current, r.upgradeLines())
	return r.msg(chatID, text, subscriptionMenu(resp.Channels))
}

func (r *Renderer) result(chatID int64, resp model.Response) []tgbotapi.Chattable {
	footer := fmt.Sprintf("\n\n📊 Осталось сегодня: %d", resp.Remaining)
	if resp.Result == nil {
		return r.msg(chatID, "✅ Готово."+footer, nil)
	}
	if len(resp.Result.Image) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: resp.Result.JobID + ".png", Bytes: resp.Result.Image})
		photo.Caption = truncateRunes(resp.Result.Text, 900) + footer
		return []tgbotapi.Chattable{photo}
	}
	parts := splitMessage(resp.Result.Text, maxMessageUnits-utf16Len(footer))
	parts[len(parts)-1] += footer
	out := make([]tgbotapi.Chattable, 0, len(parts))
	for _, part := range parts {
		out = append(out, r.msg(chatID, part, nil)...)
	}
	return out
}

func (r *Renderer) profile(chatID int64, resp model.Response) []tgbotapi.Chattable {
	snap := resp.Snapshot
	var b strings.Builder
	b.WriteString("👤 *Профиль Artemius AI*\n\n")
	if resp.Tier == model.TierVIP {
		b.WriteString("⭐ *VIP статус активен*\n")
	} else {
		b.WriteString("🔒 *Базовый доступ*\n")
	}
	if snap != nil {
		b.WriteString("\n📊 *Использовано сегодня:*\n")
		for _, f := range model.Features {
			ft := featureTexts[f]
			fmt.Fprintf(&b, "%s %s: %d/%d\n", ft.emoji, ft.label, snap.Used[f], snap.Limits[f])
		}
		b.WriteString("\n📈 *Всего создано:*\n")
		for _, f := range model.Features {
			fmt.Fprintf(&b, "• %s: %d\n", featureTexts[f].label, snap.Stats.Totals[f])
		}
		if !snap.Stats.FirstSeen.IsZero() {
			fmt.Fprintf(&b, "\n🗓 С нами с %s\n", snap.Stats.FirstSeen.Format("02.01.2006"))
		}
	}
	b.WriteString("\n⏰ Лимиты обновляются каждый день в 00:00.")

	if resp.Tier == model.TierVIP {
		return r.msg(chatID, b.String(), nil)
	}
	b.WriteString("\n\n⭐ *Получите VIP:*\n")
	b.WriteString(r.upgradeLines())
	return r.msg(chatID, b.String(), subscriptionMenu(resp.Channels))
}

func (r *Renderer) subscriptionCheck(chatID int64, resp model.Response) []tgbotapi.Chattable {
	if resp.Tier == model.TierVIP {
		return r.msg(chatID, "✅ *VIP статус активирован!*\n\n"+r.limitLines(model.TierVIP), mainMenu(resp.Tier))
	}

	var subscribed, missing []string
	for _, st := range resp.Channels {
		if st.Subscribed {
			subscribed = append(subscribed, "✅ "+st.Channel.Name)
		} else {
			missing = append(missing, "❌ "+st.Channel.Name)
		}
	}
	if len(missing) == 0 {
		// Telegram can report a fresh subscription with a short delay.
		return r.msg(chatID, "⏳ *Проверяем подписки...*\n\nСтатус может обновляться до минуты. Попробуйте ещё раз через 30-60 секунд.", subscriptionMenu(resp.Channels))
	}
	text := "❌ *VIP статус пока недоступен*\n\n📊 *Статус подписок:*\n" + strings.Join(append(subscribed, missing...), "\n") +
		"\n\n📢 Для VIP нужна подписка на *все* каналы."
	return r.msg(chatID, text, subscriptionMenu(resp.Channels))
}

func (r *Renderer) limitLines(tier model.Tier) string {
	var b strings.Builder
	for _, f := range model.Features {
		ft := featureTexts[f]
		fmt.Fprintf(&b, "%s %d %s в день\n", ft.emoji, r.limits.Cap(tier, f), ft.plural)
	}
	return b.String()
}

func (r *Renderer) upgradeLines() string {
	var b strings.Builder
	for _, f := range model.Features {
		ft := featureTexts[f]
		vip, free := r.limits.Cap(model.TierVIP, f), r.limits.Cap(model.TierFree, f)
		fmt.Fprintf(&b, "%s %d %s (+%d)\n", ft.emoji, vip, ft.plural, vip-free)
	}
	return b.String()
}

func (r *Renderer) msg(chatID int64, text string, markup interface{}) []tgbotapi.Chattable {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		m.ReplyMarkup = markup
	}
	return []tgbotapi.Chattable{m}
}

func tierLabel(t model.Tier) string {
	if t == model.TierVIP {
		return btnTierVIP
	}
	return btnTierFree
}

func mainMenu(t model.Tier) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnChat), tgbotapi.NewKeyboardButton(btnImage)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMusic), tgbotapi.NewKeyboardButton(btnVideo)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnDocument), tgbotapi.NewKeyboardButton(btnProfile)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(tierLabel(t)), tgbotapi.NewKeyboardButton(btnGetVIP)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMainMenu)))
	kb.ResizeKeyboard = true
	return kb
}

// subscriptionMenu lists one URL button per channel with its status,
// followed by the separator, check and skip buttons.
func subscriptionMenu(channels []model.ChannelStatus) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+3)
	for _, st := range channels {
		label := fmt.Sprintf("📢 %s • Подписаться", st.Channel.Name)
		if st.Subscribed {
			label = fmt.Sprintf("✅ %s • Подписан", st.Channel.Name)
		}
		if st.Channel.URL != "" {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, st.Channel.URL)))
		}
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➖ ➖ ➖ ➖ ➖", cbSeparator)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Проверить подписки и получить VIP", cbCheckSubscriptions)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⏭️ Продолжить с базовым доступом", cbSkipSubscriptions)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// splitMessage cuts s into pieces of at most limit UTF-16 units, preferring
// line breaks in the second half of a piece. It always returns at least one
// piece.
func splitMessage(s string, limit int) []string {
	var parts []string
	for {
		cut, size, lastNL := -1, 0, -1
		for i, r := range s {
			size += utf16.RuneLen(r)
			if size > limit {
				cut = i
				break
			}
			if r == '\n' {
				lastNL = i
			}
		}
		if cut < 0 {
			return append(parts, s)
		}
		if lastNL >= cut/2 {
			cut = lastNL + 1
		}
		if cut == 0 {
			_, w := utf8.DecodeRuneInString(s)
			cut = w
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

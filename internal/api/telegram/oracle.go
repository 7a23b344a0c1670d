package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"artemius/internal/model"
)

type chatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// MembershipOracle asks Telegram for a user's status in a channel. Calls
// are rate limited across all users and bounded by timeout.
type MembershipOracle struct {
	api     chatMemberGetter
	limiter *rate.Limiter
	timeout time.Duration
}

func NewMembershipOracle(api chatMemberGetter, ratePerSec float64, burst int, timeout time.Duration) *MembershipOracle {
	return &MembershipOracle{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		timeout: timeout,
	}
}

type memberResult struct {
	member tgbotapi.ChatMember
	err    error
}

func (o *MembershipOracle) GetMembership(ctx context.Context, channelID string, userID model.UserID) (model.MembershipStatus, error) {
	chat, err := chatConfig(channelID, userID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	// The client has no context support; the buffered channel lets the call
	// finish in the background after a timeout.
	done := make(chan memberResult, 1)
	go func() {
		m, err := o.api.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
		done <- memberResult{member: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("get chat member %s: %w", channelID, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("get chat member %s: %w", channelID, res.err)
		}
		return model.MembershipStatus(res.member.Status), nil
	}
}

// chatConfig accepts either a public @username or a numeric chat ID.
func chatConfig(channelID string, userID model.UserID) (tgbotapi.ChatConfigWithUser, error) {
	cfg := tgbotapi.ChatConfigWithUser{UserID: int64(userID)}
	if strings.HasPrefix(channelID, "@") {
		cfg.SuperGroupUsername = channelID
		return cfg, nil
	}
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	cfg.ChatID = id
	return cfg, nil
}

package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artemius/internal/model"
)

func TestMembershipOracleStatus(t *testing.T) {
	api := newFakeAPI()
	api.members["@kanal"] = "administrator"
	api.members["-100123"] = "left"
	o := NewMembershipOracle(api, 100, 10, time.Second)

	st, err := o.GetMembership(context.Background(), "@kanal", 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAdministrator, st)
	assert.True(t, st.Subscribed())

	st, err = o.GetMembership(context.Background(), "-100123", 42)
	require.NoError(t, err)
	assert.False(t, st.Subscribed())

	require.Len(t, api.memberCfg, 2)
	assert.Equal(t, "@kanal", api.memberCfg[0].SuperGroupUsername)
	assert.Equal(t, int64(-100123), api.memberCfg[1].ChatID)
	assert.Equal(t, int64(42), api.memberCfg[1].UserID)
}

func TestMembershipOracleErrors(t *testing.T) {
	api := newFakeAPI()
	o := NewMembershipOracle(api, 100, 10, time.Second)

	_, err := o.GetMembership(context.Background(), "not-a-channel", 1)
	assert.Error(t, err)

	api.memberErr = &tgbotapi.Error{Code: 400, Message: "Bad Request: user not found"}
	_, err = o.GetMembership(context.Background(), "@kanal", 1)
	var tgErr *tgbotapi.Error
	assert.True(t, errors.As(err, &tgErr))
}

type slowMembers struct{}

func (slowMembers) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	time.Sleep(200 * time.Millisecond)
	return tgbotapi.ChatMember{Status: "member"}, nil
}

func TestMembershipOracleTimeout(t *testing.T) {
	o := NewMembershipOracle(slowMembers{}, 100, 10, 20*time.Millisecond)
	_, err := o.GetMembership(context.Background(), "@kanal", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
